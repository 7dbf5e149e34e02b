package taint

// State is one location's place in the spec's three-state taint lattice
// (spec.md §4.G: "tainted, sanitized, untainted"). Untainted < Sanitized
// < Tainted is not a real ordering requirement of the analysis (a
// sanitized value is not "more tainted" than an untainted one) — the
// three are simply the fact's reporting classification, carried as plain
// enum comparison rather than a join/meet lattice, since taint facts are
// generated/killed rather than combined at merges (IFDS itself provides
// the set-union merge over facts).
type State int

// Recognized taint states.
const (
	Untainted State = iota
	Sanitized
	Tainted
)

func (s State) String() string {
	switch s {
	case Untainted:
		return "untainted"
	case Sanitized:
		return "sanitized"
	case Tainted:
		return "tainted"
	default:
		return "unknown"
	}
}

// Level is the generalized security lattice (SPEC_FULL.md §3, supplemented
// from original_source/infrastructure/security_lattice): a small totally
// ordered set of named confidentiality levels, with Join and AtLeast as its
// operators. Problem's flow functions do not use it: they track the flat
// tri-state State whether or not Config.FieldSensitive is set, so distinct
// fields of one struct do not carry distinct levels.
type Level int

// Recognized levels, increasing in sensitivity.
const (
	LevelPublic Level = iota
	LevelInternal
	LevelConfidential
	LevelSecret
)

func (l Level) String() string {
	switch l {
	case LevelPublic:
		return "public"
	case LevelInternal:
		return "internal"
	case LevelConfidential:
		return "confidential"
	case LevelSecret:
		return "secret"
	default:
		return "unknown"
	}
}

// Join returns the more sensitive of a and b, the security lattice's join
// operator: combining two values (e.g. concatenating a public and a
// secret string) must be at least as sensitive as its most sensitive
// input.
func Join(a, b Level) Level {
	if a > b {
		return a
	}

	return b
}

// AtLeast reports whether l is at least as sensitive as floor.
func (l Level) AtLeast(floor Level) bool {
	return l >= floor
}
