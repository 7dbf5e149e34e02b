package findings

import (
	"fmt"

	"github.com/codeintel-engine/engine/internal/analyses/concurrency"
	"github.com/codeintel-engine/engine/internal/analyses/cost"
	"github.com/codeintel-engine/engine/internal/analyses/typestate"
	"github.com/codeintel-engine/engine/internal/ifds/taint"
	"github.com/codeintel-engine/engine/internal/ir"
)

// FromTaint adapts a taint.Finding into the shared Finding shape. loc
// resolves each step of the witness path to a source location.
func FromTaint(loc Locator, f taint.Finding) Finding {
	path := make([]PathNode, 0, len(f.Path))
	for _, step := range f.Path {
		path = append(path, locate(loc, step.Node, step.Kind))
	}

	kind := f.Rule.Name
	if kind == "" {
		kind = "taint"
	}

	confidence := 1.0
	if f.Confidence > 0 {
		confidence = float64(f.Confidence) / 100.0
	}

	return Finding{
		Stage:      "taint",
		Kind:       kind,
		Severity:   Error,
		CWE:        f.Rule.CWE,
		Path:       Canonicalize(path),
		Message:    fmt.Sprintf("tainted value reaches sink %s", f.Sink),
		Confidence: confidence,
	}
}

// FromDeadlock adapts a concurrency.Deadlock (a lock-order cycle) into a
// Finding. Since Deadlock carries lock names rather than IR node ids, the
// path records the cycle members as Fact labels with no resolvable
// location.
func FromDeadlock(d concurrency.Deadlock) Finding {
	path := make([]PathNode, 0, len(d.Cycle))
	for _, lock := range d.Cycle {
		path = append(path, PathNode{Fact: lock})
	}

	return Finding{
		Stage:      "concurrency",
		Kind:       "deadlock",
		Severity:   Critical,
		Path:       Canonicalize(path),
		Message:    fmt.Sprintf("lock order cycle: %v", d.Cycle),
		Confidence: 1.0,
	}
}

// FromRace adapts a concurrency.Race into a Finding: the two-step path is
// the racing pair of accesses.
func FromRace(loc Locator, r concurrency.Race) Finding {
	path := []PathNode{
		locate(loc, r.A.Var, accessFact(r.A)),
		locate(loc, r.B.Var, accessFact(r.B)),
	}

	return Finding{
		Stage:      "concurrency",
		Kind:       "data-race",
		Severity:   Error,
		CWE:        "CWE-362",
		Path:       Canonicalize(path),
		Message:    "concurrent access without a common held lock, at least one a write",
		Confidence: 1.0,
	}
}

func accessFact(a concurrency.Access) string {
	if a.Write {
		return "write"
	}

	return "read"
}

// FromTypestateViolation adapts a typestate.Violation into a Finding. The
// path is a single step: the statement where the violation was detected.
func FromTypestateViolation(loc Locator, v typestate.Violation) Finding {
	kind := "invalid-transition"

	severity := Error

	switch v.Kind {
	case typestate.UseAfterClose:
		kind = "use-after-close"
		severity = Critical
	case typestate.ResourceLeak:
		kind = "resource-leak"
		severity = Warning
	}

	path := []PathNode{locate(loc, v.Stmt, v.Event)}

	return Finding{
		Stage:      "typestate",
		Kind:       kind,
		Severity:   severity,
		Path:       Canonicalize(path),
		Message:    fmt.Sprintf("variable in state %v does not accept event %q", v.State, v.Event),
		Confidence: 1.0,
	}
}

// FromComplexity reports a Finding when fn's estimated cost class exceeds
// threshold, using only cost.Max (cost.Class's internal rank is
// unexported) to decide "exceeds": class strictly exceeds threshold iff
// combining them picks class and the two differ. Returns ok=false when
// class does not exceed threshold, since most functions in a codebase are
// not complexity findings.
func FromComplexity(fn ir.ID, file string, line, col uint32, class, threshold cost.Class) (Finding, bool) {
	if class == threshold || cost.Max(class, threshold) != class {
		return Finding{}, false
	}

	return Finding{
		Stage:    "complexity",
		Kind:     "excessive-complexity",
		Severity: Warning,
		Path: []PathNode{{
			Node: fn,
			Fact: class.String(),
			File: file,
			Line: line,
			Col:  col,
		}},
		Message:    fmt.Sprintf("estimated cost %s exceeds threshold %s", class, threshold),
		Confidence: 1.0,
	}, true
}
