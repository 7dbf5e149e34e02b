// Package taint instantiates the IFDS/IDE framework (internal/ifds) as a
// taint analysis: sources, sinks, and sanitizers supplied by configuration
// drive a small tainted/sanitized/untainted lattice keyed by abstract
// locations (spec.md §4.G "Taint instantiation").
package taint

import (
	"fmt"
	"regexp"
)

// Mode selects the precision/cost tradeoff spec.md §4.G names.
type Mode int

// Recognized modes.
const (
	// ModeFast runs intraprocedural flow plus the call-to-return
	// approximation only: calls are transparent, nothing is bound into
	// or back out of a callee.
	ModeFast Mode = iota
	// ModeBalanced runs the full IFDS call/return tabulation with a
	// limited sanitizer pattern set.
	ModeBalanced
	// ModeThorough additionally enables IDE confidence scoring, the
	// sparse-IFDS relevance filter, may-alias consultation from
	// internal/pointsto, and SMT-lite path conditions from
	// internal/ifds/pathcond.
	ModeThorough
)

func (m Mode) String() string {
	switch m {
	case ModeFast:
		return "fast"
	case ModeBalanced:
		return "balanced"
	case ModeThorough:
		return "thorough"
	default:
		return fmt.Sprintf("taint.Mode(%d)", int(m))
	}
}

// Rule matches a callee's fully-qualified name against a syntactic
// pattern, with an optional confidence weight used by Thorough mode's IDE
// edge functions (spec.md §4.G: "IDE with quantitative edge functions
// (confidence)"). Name and CWE are carried through to the finding a sink
// rule produces (e.g. Name "sql-injection", CWE "CWE-89") and are left
// blank for source/sanitizer rules, which never themselves become a
// finding's kind.
type Rule struct {
	Pattern *regexp.Regexp
	Weight  float64
	Name    string
	CWE     string
}

// NewRule compiles pattern (a Go regexp matched against a callee's FQN)
// into a Rule with the given confidence weight.
func NewRule(pattern string, weight float64) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("taint: invalid rule pattern %q: %w", pattern, err)
	}

	return Rule{Pattern: re, Weight: weight}, nil
}

// Matches reports whether fqn matches this rule's pattern.
func (r Rule) Matches(fqn string) bool {
	return r.Pattern != nil && r.Pattern.MatchString(fqn)
}

// Config supplies one taint instantiation's sources, sinks, sanitizers,
// and mode (spec.md §4.G: "Configuration supplies sets of sources, sinks,
// and sanitizers").
type Config struct {
	Mode           Mode
	Sources        []Rule
	Sinks          []Rule
	Sanitizers     []Rule
	FieldSensitive bool
	// Sparse enables the sparse-IFDS relevance filter (normally only set
	// alongside ModeThorough, but left independent so tests can exercise
	// it without paying for full IDE confidence scoring too).
	Sparse bool
}

func (c *Config) match(rules []Rule, fqn string) (Rule, bool) {
	for _, r := range rules {
		if r.Matches(fqn) {
			return r, true
		}
	}

	return Rule{}, false
}

// IsSource reports whether fqn names a taint source, and its rule.
func (c *Config) IsSource(fqn string) (Rule, bool) { return c.match(c.Sources, fqn) }

// IsSink reports whether fqn names a taint sink, and its rule.
func (c *Config) IsSink(fqn string) (Rule, bool) { return c.match(c.Sinks, fqn) }

// IsSanitizer reports whether fqn names a sanitizer, and its rule.
func (c *Config) IsSanitizer(fqn string) (Rule, bool) { return c.match(c.Sanitizers, fqn) }
