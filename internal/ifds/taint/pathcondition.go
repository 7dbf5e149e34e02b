package taint

import (
	"github.com/codeintel-engine/engine/internal/ifds"
	"github.com/codeintel-engine/engine/internal/ifds/pathcond"
)

// CollectPathCondition walks a witness path (ordinarily ifds.Result.Path's
// output for a confirmed Finding) and conjoins the Condition atom of every
// StmtBranch node it passes through. ModeThorough uses this to discard a
// finding whose path condition pathcond.Satisfiable reports infeasible: the
// branch that would have to be taken for the taint to reach the sink never
// actually can be.
//
// This collects every branch atom the path visits regardless of which edge
// out of the branch it actually took, a coarse approximation: the
// supergraph doesn't record which of a branch's successors corresponds to
// the condition being true versus false, so a branch with both true/false
// edges present on the path would need separate negated atoms to be exact.
func CollectPathCondition(p *Problem, path []ifds.Step[Fact]) pathcond.Condition {
	var cond pathcond.Condition

	for _, step := range path {
		st, ok := p.stmts[step.Node]
		if !ok || st.Kind != StmtBranch {
			continue
		}

		cond = append(cond, st.Condition)
	}

	return cond
}
