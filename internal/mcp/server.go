// Package mcp exposes this engine's IR lowering as a Model Context
// Protocol tool over stdio, the narrow external language-binding adapter
// spec.md §1 scopes the MCP surface down to (out-of-scope as a full
// analysis API; in-scope only as a thin parse-to-IR boundary other tools
// can bind against).
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/internal/irbuild"
	"github.com/codeintel-engine/engine/internal/langs"
	"github.com/codeintel-engine/engine/internal/telemetry"
)

const (
	serverName    = "codeintel-engine"
	serverVersion = "1.0.0"
)

// ServerDeps holds injectable dependencies for the MCP server. Zero-value
// fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog's default.
	Logger *slog.Logger
	// Tracer is an optional OTel tracer for per-tool-call spans. Nil
	// disables tracing.
	Tracer trace.Tracer
	// Metrics is an optional RED metrics recorder for per-tool-call rate,
	// error, and duration. Nil disables metrics.
	Metrics *telemetry.REDMetrics
}

// Server wraps the MCP SDK server with this engine's tool registrations.
type Server struct {
	inner   *mcpsdk.Server
	mu      sync.RWMutex
	tools   []string
	tracer  trace.Tracer
	metrics *telemetry.REDMetrics
}

// NewServer creates an MCP server with every tool this engine exposes
// registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: serverName, Version: serverVersion},
		opts,
	)

	srv := &Server{inner: inner, tracer: deps.Tracer, metrics: deps.Metrics}
	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of every registered tool.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	if err := s.inner.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameParseIR,
		Description: parseIRToolDescription,
	}, withTracing(s.tracer, s.metrics, ToolNameParseIR, handleParseIR))

	s.trackTool(ToolNameParseIR)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const parseIRToolDescription = "Lower inline source code into this engine's " +
	"intermediate representation (nodes and edges per spec.md §4.B/§4.C). " +
	"Accepts inline code and a language identifier."

// mcpSpanPrefix namespaces per-tool-call spans under the MCP surface.
const mcpSpanPrefix = "mcp."

// withTracing wraps a tool handler to create an OTel span and record RED
// metrics per invocation, mirroring how internal/orchestrator.DAG.tracer
// wraps stage execution. Either dependency may be nil, independently.
func withTracing[Input any](
	tracer trace.Tracer,
	metrics *telemetry.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ParseIROutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ParseIROutput, error) {
	if tracer == nil && metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ParseIROutput, error) {
		if tracer != nil {
			var span trace.Span

			ctx, span = tracer.Start(ctx, mcpSpanPrefix+toolName,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", toolName)),
			)
			defer span.End()
		}

		start := time.Now()

		result, out, err := handler(ctx, req, input)

		if metrics != nil {
			metrics.RecordRequest(ctx, toolName, err != nil, time.Since(start))
		}

		return result, out, err
	}
}

// handleParseIR processes codeintel_parse_ir tool calls: it resolves the
// requested language to a langs.Plugin by name (not by the registry's
// extension lookup, since inline tool input has no real file path to
// infer an extension from), lowers the code through internal/irbuild, and
// returns the resulting document's nodes and edges.
func handleParseIR(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ParseIRInput,
) (*mcpsdk.CallToolResult, ParseIROutput, error) {
	if err := validateParseInput(input.Code, input.Language); err != nil {
		return errorResult(err)
	}

	plugin, ok := pluginByName(input.Language)
	if !ok {
		return errorResult(fmt.Errorf("%w: %s", ErrUnsupportedLanguage, input.Language))
	}

	reg := langs.NewRegistry(plugin)
	builder := irbuild.NewBuilder(reg, ir.NewInterner())

	filename := syntheticFilename(plugin.Extensions()[0], input.FilePath)

	doc, err := builder.Build(ctx, "mcp", filename, []byte(input.Code))
	if err != nil {
		return errorResult(fmt.Errorf("lower code to IR: %w", err))
	}

	out := ParseIROutput{
		NodeCount: len(doc.Nodes),
		EdgeCount: len(doc.Edges),
		Nodes:     make([]any, len(doc.Nodes)),
		Edges:     make([]any, len(doc.Edges)),
		Language:  plugin.Name(),
	}

	for i, n := range doc.Nodes {
		out.Nodes[i] = n
	}

	for i, e := range doc.Edges {
		out.Edges[i] = e
	}

	return jsonResult(out)
}

func pluginByName(language string) (langs.Plugin, bool) {
	for _, p := range langs.Builtins() {
		if p.Name() == language {
			return p, true
		}
	}

	return nil, false
}
