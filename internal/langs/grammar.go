package langs

import "github.com/codeintel-engine/engine/pkg/uast/pkg/node"

// Rule is a single entry in a language's Grammar: how one tree-sitter node
// type lowers into a UAST node. NameField names the tree-sitter field that
// holds the node's identifier (via ChildByFieldName), when one applies.
type Rule struct {
	UASTType  node.Type
	Roles     []node.Role
	NameField string
}

// Grammar is the declarative tree-sitter-node-type -> UAST mapping table
// for one language, in the spirit of the teacher's DSL-driven
// pkg/uast/pkg/mapping rules but expressed as a plain Go map instead of a
// parsed external DSL, since this module carries its own grammar tables
// rather than the teacher's generated *.uastmap assets.
type Grammar map[string]Rule

// commonControlFlow holds node-type rules shared by most curly-brace and
// indentation-based grammars; language tables start from a copy of it and
// add their own definition/call/import rules.
func commonControlFlow() Grammar {
	return Grammar{
		"if_statement":        {UASTType: node.UASTIf, Roles: []node.Role{node.RoleCondition}},
		"for_statement":       {UASTType: node.UASTLoop, Roles: []node.Role{node.RoleLoop}},
		"for_in_statement":    {UASTType: node.UASTLoop, Roles: []node.Role{node.RoleLoop}},
		"while_statement":     {UASTType: node.UASTLoop, Roles: []node.Role{node.RoleLoop}},
		"do_statement":        {UASTType: node.UASTLoop, Roles: []node.Role{node.RoleLoop}},
		"switch_statement":    {UASTType: node.UASTSwitch},
		"case_statement":      {UASTType: node.UASTCase},
		"try_statement":       {UASTType: node.UASTTry, Roles: []node.Role{node.RoleTry}},
		"catch_clause":        {UASTType: node.UASTCatch, Roles: []node.Role{node.RoleCatch}},
		"finally_clause":      {UASTType: node.UASTFinally, Roles: []node.Role{node.RoleFinally}},
		"return_statement":    {UASTType: node.UASTReturn, Roles: []node.Role{node.RoleReturn}},
		"break_statement":     {UASTType: node.UASTBreak, Roles: []node.Role{node.RoleBreak}},
		"continue_statement":  {UASTType: node.UASTContinue, Roles: []node.Role{node.RoleContinue}},
		"throw_statement":     {UASTType: node.UASTThrow, Roles: []node.Role{node.RoleThrow}},
		"block":               {UASTType: node.UASTBlock, Roles: []node.Role{node.RoleBody}},
		"statement_block":     {UASTType: node.UASTBlock, Roles: []node.Role{node.RoleBody}},
		"binary_expression":   {UASTType: node.UASTBinaryOp, Roles: []node.Role{node.RoleOperator}},
		"unary_expression":    {UASTType: node.UASTUnaryOp, Roles: []node.Role{node.RoleOperator}},
		"assignment_expression": {UASTType: node.UASTAssignment, Roles: []node.Role{node.RoleAssignment}},
		"identifier":          {UASTType: node.UASTIdentifier, Roles: []node.Role{node.RoleReference}},
		"comment":             {UASTType: node.UASTComment, Roles: []node.Role{node.RoleComment}},
	}
}

func merge(base Grammar, extra Grammar) Grammar {
	out := make(Grammar, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}

	for k, v := range extra {
		out[k] = v
	}

	return out
}

// Grammars is the registry of per-language node-type mapping tables backing
// the plugins in Builtins. Each table is grounded in the corresponding
// go-sitter-forest grammar's published node type names.
//
//nolint:gochecknoglobals // static per-language configuration, built once.
var Grammars = map[string]Grammar{
	"go": merge(commonControlFlow(), Grammar{
		"source_file":          {UASTType: node.UASTFile},
		"package_clause":       {UASTType: node.UASTPackage, Roles: []node.Role{node.RoleModule}},
		"import_declaration":   {UASTType: node.UASTImport, Roles: []node.Role{node.RoleImport}},
		"import_spec":          {UASTType: node.UASTImport, Roles: []node.Role{node.RoleImport}},
		"function_declaration": {UASTType: node.UASTFunctionDecl, Roles: []node.Role{node.RoleFunction, node.RoleDeclaration}, NameField: "name"},
		"method_declaration":   {UASTType: node.UASTMethod, Roles: []node.Role{node.RoleFunction, node.RoleMember, node.RoleDeclaration}, NameField: "name"},
		"type_declaration":     {UASTType: node.UASTClass, Roles: []node.Role{node.RoleDeclaration}},
		"type_spec":            {UASTType: node.UASTClass, Roles: []node.Role{node.RoleDeclaration}, NameField: "name"},
		"struct_type":          {UASTType: node.UASTStruct, Roles: []node.Role{node.RoleStruct}},
		"interface_type":       {UASTType: node.UASTInterface, Roles: []node.Role{node.RoleInterface}},
		"field_declaration":    {UASTType: node.UASTField, Roles: []node.Role{node.RoleMember}},
		"parameter_declaration": {UASTType: node.UASTParameter, Roles: []node.Role{node.RoleParameter}, NameField: "name"},
		"var_declaration":      {UASTType: node.UASTVariable, Roles: []node.Role{node.RoleVariable}},
		"const_declaration":    {UASTType: node.UASTVariable, Roles: []node.Role{node.RoleVariable, node.RoleConstant}},
		"short_var_declaration": {UASTType: node.UASTAssignment, Roles: []node.Role{node.RoleAssignment}},
		"call_expression":      {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}, NameField: "function"},
		"go_statement":         {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}},
		"defer_statement":      {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}},
	}),
	"python": merge(commonControlFlow(), Grammar{
		"module":              {UASTType: node.UASTModule},
		"import_statement":    {UASTType: node.UASTImport, Roles: []node.Role{node.RoleImport}},
		"import_from_statement": {UASTType: node.UASTImport, Roles: []node.Role{node.RoleImport}},
		"function_definition": {UASTType: node.UASTFunction, Roles: []node.Role{node.RoleFunction, node.RoleDeclaration}, NameField: "name"},
		"class_definition":    {UASTType: node.UASTClass, Roles: []node.Role{node.RoleClass, node.RoleDeclaration}, NameField: "name"},
		"decorator":           {UASTType: node.UASTDecorator, Roles: []node.Role{node.RoleAnnotation}},
		"parameters":          {UASTType: node.UASTBlock},
		"default_parameter":   {UASTType: node.UASTParameter, Roles: []node.Role{node.RoleParameter}, NameField: "name"},
		"typed_parameter":     {UASTType: node.UASTParameter, Roles: []node.Role{node.RoleParameter}},
		"assignment":          {UASTType: node.UASTAssignment, Roles: []node.Role{node.RoleAssignment}},
		"call":                {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}, NameField: "function"},
		"string":              {UASTType: node.UASTDocString, Roles: []node.Role{node.RoleDoc}},
		"with_statement":      {UASTType: node.UASTTry},
		"except_clause":       {UASTType: node.UASTCatch, Roles: []node.Role{node.RoleCatch}},
		"raise_statement":     {UASTType: node.UASTThrow, Roles: []node.Role{node.RoleThrow}},
		"lambda":              {UASTType: node.UASTLambda, Roles: []node.Role{node.RoleLambda}},
		"yield":               {UASTType: node.UASTYield, Roles: []node.Role{node.RoleYield}},
	}),
	"javascript": merge(commonControlFlow(), Grammar{
		"program":             {UASTType: node.UASTModule},
		"import_statement":    {UASTType: node.UASTImport, Roles: []node.Role{node.RoleImport}},
		"export_statement":    {UASTType: node.UASTImport, Roles: []node.Role{node.RoleExported}},
		"function_declaration": {UASTType: node.UASTFunctionDecl, Roles: []node.Role{node.RoleFunction, node.RoleDeclaration}, NameField: "name"},
		"function":            {UASTType: node.UASTFunction, Roles: []node.Role{node.RoleFunction}},
		"arrow_function":      {UASTType: node.UASTLambda, Roles: []node.Role{node.RoleLambda}},
		"generator_function_declaration": {UASTType: node.UASTGenerator, Roles: []node.Role{node.RoleFunction, node.RoleGenerator}, NameField: "name"},
		"method_definition":   {UASTType: node.UASTMethod, Roles: []node.Role{node.RoleFunction, node.RoleMember}, NameField: "name"},
		"class_declaration":   {UASTType: node.UASTClass, Roles: []node.Role{node.RoleClass, node.RoleDeclaration}, NameField: "name"},
		"class":               {UASTType: node.UASTClass, Roles: []node.Role{node.RoleClass}},
		"variable_declarator": {UASTType: node.UASTVariable, Roles: []node.Role{node.RoleVariable}, NameField: "name"},
		"formal_parameters":   {UASTType: node.UASTBlock},
		"required_parameter":  {UASTType: node.UASTParameter, Roles: []node.Role{node.RoleParameter}},
		"call_expression":     {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}, NameField: "function"},
		"new_expression":      {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}, NameField: "constructor"},
		"try_statement":       {UASTType: node.UASTTry, Roles: []node.Role{node.RoleTry}},
		"await_expression":    {UASTType: node.UASTAwait, Roles: []node.Role{node.RoleAwait}},
		"yield_expression":    {UASTType: node.UASTYield, Roles: []node.Role{node.RoleYield}},
		"spread_element":      {UASTType: node.UASTSpread, Roles: []node.Role{node.RoleSpread}},
	}),
	"java": merge(commonControlFlow(), Grammar{
		"program":             {UASTType: node.UASTFile},
		"package_declaration": {UASTType: node.UASTPackage, Roles: []node.Role{node.RoleModule}},
		"import_declaration":  {UASTType: node.UASTImport, Roles: []node.Role{node.RoleImport}},
		"class_declaration":   {UASTType: node.UASTClass, Roles: []node.Role{node.RoleClass, node.RoleDeclaration}, NameField: "name"},
		"interface_declaration": {UASTType: node.UASTInterface, Roles: []node.Role{node.RoleInterface, node.RoleDeclaration}, NameField: "name"},
		"enum_declaration":    {UASTType: node.UASTEnum, Roles: []node.Role{node.RoleEnum, node.RoleDeclaration}, NameField: "name"},
		"method_declaration":  {UASTType: node.UASTMethod, Roles: []node.Role{node.RoleFunction, node.RoleMember, node.RoleDeclaration}, NameField: "name"},
		"constructor_declaration": {UASTType: node.UASTMethod, Roles: []node.Role{node.RoleFunction, node.RoleMember, node.RoleDeclaration}, NameField: "name"},
		"field_declaration":   {UASTType: node.UASTField, Roles: []node.Role{node.RoleMember}},
		"formal_parameter":    {UASTType: node.UASTParameter, Roles: []node.Role{node.RoleParameter}, NameField: "name"},
		"local_variable_declaration": {UASTType: node.UASTVariable, Roles: []node.Role{node.RoleVariable}},
		"method_invocation":   {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}, NameField: "name"},
		"object_creation_expression": {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}},
		"annotation":          {UASTType: node.UASTDecorator, Roles: []node.Role{node.RoleAnnotation}},
		"modifiers":           {UASTType: node.UASTBlock},
		"public":              {UASTType: node.UASTIdentifier, Roles: []node.Role{node.RolePublic}},
		"private":             {UASTType: node.UASTIdentifier, Roles: []node.Role{node.RolePrivate}},
		"static":               {UASTType: node.UASTIdentifier, Roles: []node.Role{node.RoleStatic}},
	}),
	"kotlin": merge(commonControlFlow(), Grammar{
		"source_file":         {UASTType: node.UASTFile},
		"package_header":      {UASTType: node.UASTPackage, Roles: []node.Role{node.RoleModule}},
		"import_header":       {UASTType: node.UASTImport, Roles: []node.Role{node.RoleImport}},
		"class_declaration":   {UASTType: node.UASTClass, Roles: []node.Role{node.RoleClass, node.RoleDeclaration}, NameField: "name"},
		"object_declaration":  {UASTType: node.UASTClass, Roles: []node.Role{node.RoleClass, node.RoleDeclaration}, NameField: "name"},
		"function_declaration": {UASTType: node.UASTFunctionDecl, Roles: []node.Role{node.RoleFunction, node.RoleDeclaration}, NameField: "name"},
		"property_declaration": {UASTType: node.UASTVariable, Roles: []node.Role{node.RoleVariable}},
		"parameter":            {UASTType: node.UASTParameter, Roles: []node.Role{node.RoleParameter}},
		"call_expression":      {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}},
		"annotation":            {UASTType: node.UASTDecorator, Roles: []node.Role{node.RoleAnnotation}},
		"lambda_literal":        {UASTType: node.UASTLambda, Roles: []node.Role{node.RoleLambda}},
	}),
	"rust": merge(commonControlFlow(), Grammar{
		"source_file":         {UASTType: node.UASTFile},
		"use_declaration":     {UASTType: node.UASTImport, Roles: []node.Role{node.RoleImport}},
		"mod_item":            {UASTType: node.UASTModule, Roles: []node.Role{node.RoleModule}, NameField: "name"},
		"function_item":       {UASTType: node.UASTFunctionDecl, Roles: []node.Role{node.RoleFunction, node.RoleDeclaration}, NameField: "name"},
		"struct_item":         {UASTType: node.UASTStruct, Roles: []node.Role{node.RoleStruct, node.RoleDeclaration}, NameField: "name"},
		"enum_item":           {UASTType: node.UASTEnum, Roles: []node.Role{node.RoleEnum, node.RoleDeclaration}, NameField: "name"},
		"trait_item":          {UASTType: node.UASTInterface, Roles: []node.Role{node.RoleInterface, node.RoleDeclaration}, NameField: "name"},
		"impl_item":           {UASTType: node.UASTClass, Roles: []node.Role{node.RoleClass}},
		"field_declaration":   {UASTType: node.UASTField, Roles: []node.Role{node.RoleMember}},
		"parameter":           {UASTType: node.UASTParameter, Roles: []node.Role{node.RoleParameter}, NameField: "pattern"},
		"let_declaration":     {UASTType: node.UASTVariable, Roles: []node.Role{node.RoleVariable}},
		"call_expression":     {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}, NameField: "function"},
		"macro_invocation":    {UASTType: node.UASTCall, Roles: []node.Role{node.RoleCall}, NameField: "macro"},
		"match_expression":    {UASTType: node.UASTMatch, Roles: []node.Role{node.RoleMatch}},
		"match_arm":           {UASTType: node.UASTCase},
		"closure_expression":  {UASTType: node.UASTLambda, Roles: []node.Role{node.RoleLambda}},
		"attribute_item":      {UASTType: node.UASTDecorator, Roles: []node.Role{node.RoleAnnotation}},
	}),
}

func init() {
	// TypeScript/TSX share the JavaScript grammar's statement and
	// expression node names (both ship from the same upstream grammar
	// family), plus their own type-level constructs.
	ts := merge(Grammars["javascript"], Grammar{
		"interface_declaration": {UASTType: node.UASTInterface, Roles: []node.Role{node.RoleInterface, node.RoleDeclaration}, NameField: "name"},
		"type_alias_declaration": {UASTType: node.UASTTypeAnnotation, Roles: []node.Role{node.RoleType}, NameField: "name"},
		"enum_declaration":       {UASTType: node.UASTEnum, Roles: []node.Role{node.RoleEnum, node.RoleDeclaration}, NameField: "name"},
		"decorator":              {UASTType: node.UASTDecorator, Roles: []node.Role{node.RoleAnnotation}},
	})
	Grammars["typescript"] = ts
	Grammars["tsx"] = ts
}

// Extensions maps a lowercase file extension (without the leading dot) to
// the Grammars key that parses it.
//
//nolint:gochecknoglobals // static configuration.
var Extensions = map[string]string{
	"go":   "go",
	"py":   "python",
	"pyi":  "python",
	"js":   "javascript",
	"jsx":  "javascript",
	"mjs":  "javascript",
	"cjs":  "javascript",
	"ts":   "typescript",
	"tsx":  "tsx",
	"java": "java",
	"kt":   "kotlin",
	"kts":  "kotlin",
	"rs":   "rust",
}
