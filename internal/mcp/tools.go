package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolNameParseIR is the name of the tool that lowers inline source into
// this engine's IR (spec.md §4.B/§4.C), the MCP adapter's one external
// language binding (spec.md §1 names the MCP surface as out-of-scope
// beyond a narrow interface, so this is intentionally the only tool).
const ToolNameParseIR = "codeintel_parse_ir"

// MaxCodeInputBytes bounds inline code input (1 MiB) so a pathological
// input is rejected before parsing.
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	ErrEmptyCode           = errors.New("code parameter is required and must not be empty")
	ErrEmptyLanguage       = errors.New("language parameter is required and must not be empty")
	ErrCodeTooLarge        = errors.New("code input exceeds maximum size")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// ParseIRInput is the input schema for ToolNameParseIR.
type ParseIRInput struct {
	Code     string `json:"code"     jsonschema:"source code to lower into IR"`
	Language string `json:"language" jsonschema:"programming language (e.g. go, python, javascript)"`
	FilePath string `json:"file_path,omitempty" jsonschema:"synthetic file path to attribute nodes to (default: derived from language)"`
}

// ParseIROutput is the structured output for ToolNameParseIR: the node and
// edge counts plus the full node/edge list, the same shape
// internal/wireformat streams for a whole repo, reduced here to one
// document.
type ParseIROutput struct {
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
	Nodes     []any  `json:"nodes"`
	Edges     []any  `json:"edges"`
	Language  string `json:"language"`
}

// errorResult builds a CallToolResult with IsError set, the MCP SDK's
// convention for reporting a tool failure without an RPC-level error.
func errorResult(err error) (*mcpsdk.CallToolResult, ParseIROutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}, ParseIROutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content alongside
// the structured output the generic AddTool registration also returns.
func jsonResult(out ParseIROutput) (*mcpsdk.CallToolResult, ParseIROutput, error) {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, out, nil
}

func validateParseInput(code, language string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if language == "" {
		return ErrEmptyLanguage
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}

func syntheticFilename(language, override string) string {
	if override != "" {
		return override
	}

	return "input." + language
}
