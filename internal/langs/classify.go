package langs

import (
	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// Classify maps a UAST node's (Type, Roles) pair onto the node Kind the IR
// builder should emit for it. Every language plugin produces UAST through
// the same declarative tree-sitter-to-UAST mapping tables
// (Grammars in grammar.go), so a single classification table here covers
// Python, TypeScript/JavaScript, Java, Kotlin, Rust and Go instead of one
// bespoke classifier per language.
func Classify(n *node.Node) (ir.Kind, bool) {
	switch n.Type {
	case node.UASTFile, node.UASTModule, node.UASTNamespace, node.UASTPackage:
		return ir.KindModule, true
	case node.UASTClass, node.UASTInterface, node.UASTStruct, node.UASTEnum:
		return ir.KindClass, true
	case node.UASTFunction, node.UASTFunctionDecl, node.UASTLambda, node.UASTGenerator:
		if n.HasAnyRole(node.RoleMember) {
			return ir.KindMethod, true
		}

		return ir.KindFunction, true
	case node.UASTMethod, node.UASTGetter, node.UASTSetter:
		return ir.KindMethod, true
	case node.UASTVariable:
		if n.HasAnyRole(node.RoleParameter) {
			return ir.KindParameter, true
		}

		return ir.KindVariable, true
	case node.UASTParameter:
		return ir.KindParameter, true
	case node.UASTField, node.UASTProperty, node.UASTEnumMember:
		return ir.KindField, true
	case node.UASTImport:
		return ir.KindImport, true
	case node.UASTCall, node.UASTBinaryOp, node.UASTUnaryOp, node.UASTIdentifier,
		node.UASTLiteral, node.UASTAssignment, node.UASTKeyValue, node.UASTIndex,
		node.UASTSlice, node.UASTCast, node.UASTAwait, node.UASTYield, node.UASTSpread:
		return ir.KindExpression, true
	case node.UASTBlock, node.UASTIf, node.UASTLoop, node.UASTSwitch, node.UASTCase,
		node.UASTTry, node.UASTCatch, node.UASTFinally, node.UASTMatch:
		return ir.KindBlock, true
	case node.UASTReturn, node.UASTBreak, node.UASTContinue, node.UASTThrow:
		return ir.KindOther, true
	default:
		return ir.KindOther, false
	}
}

// IsDefinition reports whether n introduces a named symbol the IR builder
// should mint a Node (and therefore a stable ID) for, as opposed to a bare
// expression or control-flow node that only matters to later stages.
func IsDefinition(n *node.Node) bool {
	switch n.Type {
	case node.UASTFile, node.UASTModule, node.UASTNamespace, node.UASTPackage,
		node.UASTClass, node.UASTInterface, node.UASTStruct, node.UASTEnum, node.UASTEnumMember,
		node.UASTFunction, node.UASTFunctionDecl, node.UASTMethod, node.UASTLambda, node.UASTGenerator,
		node.UASTGetter, node.UASTSetter, node.UASTVariable, node.UASTParameter,
		node.UASTField, node.UASTProperty, node.UASTImport:
		return true
	default:
		return n.HasAnyRole(node.RoleDeclaration)
	}
}

// IsCallSite reports whether n is a call expression the IR builder should
// emit a "calls" edge from the enclosing definition for.
func IsCallSite(n *node.Node) bool {
	return n.Type == node.UASTCall || n.HasAnyRole(node.RoleCall)
}

// IsImport reports whether n is an import/use declaration.
func IsImport(n *node.Node) bool {
	return n.Type == node.UASTImport || n.HasAnyRole(node.RoleImport)
}

// IsReference reports whether n reads or writes an already-defined symbol
// (an identifier occurrence, as opposed to its declaration).
func IsReference(n *node.Node) bool {
	return n.Type == node.UASTIdentifier && n.HasAnyRole(node.RoleReference)
}

// IsAssignmentTarget reports whether n is the left-hand side of an
// assignment, used to distinguish "writes" from "reads" edges.
func IsAssignmentTarget(n *node.Node) bool {
	return n.HasAnyRole(node.RoleAssignment)
}

// Visibility derives a Sidecar.Visibility from a definition node's roles.
// It only reads roles already attached to n itself; no grammar table in
// grammar.go derives RolePublic/RolePrivate from a naming convention such
// as Python's leading underscore.
func Visibility(n *node.Node) ir.Visibility {
	switch {
	case n.HasAnyRole(node.RolePrivate):
		return ir.VisibilityPrivate
	case n.HasAnyRole(node.RolePublic), n.HasAnyRole(node.RoleExported):
		return ir.VisibilityPublic
	default:
		return ir.VisibilityUnspecified
	}
}

// IsAsync reports whether n itself carries an "async" prop set to "true"
// or the Await role. buildUAST sets neither on a definition node, so for
// trees it builds this reports false.
func IsAsync(n *node.Node) bool {
	return n.Props["async"] == "true" || n.HasAnyRole(node.RoleAwait)
}

// IsGenerator reports whether a function/method definition yields.
func IsGenerator(n *node.Node) bool {
	return n.Type == node.UASTGenerator || n.HasAnyRole(node.RoleGenerator) || n.HasAnyRole(node.RoleYield)
}

// Docstring returns the token of the first direct child of a definition
// node that carries the Doc role, or "" if there is none.
func Docstring(n *node.Node) string {
	for _, c := range n.Children {
		if c.HasAnyRole(node.RoleDoc) {
			return c.Token
		}
	}

	return ""
}

// Decorators extracts attribute/annotation/decorator tokens attached to a
// definition node.
func Decorators(n *node.Node) []string {
	var out []string

	for _, c := range n.Children {
		if c.Type == node.UASTDecorator || c.HasAnyRole(node.RoleAnnotation) || c.HasAnyRole(node.RoleAttribute) {
			out = append(out, c.Token)
		}
	}

	return out
}
