package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codeintel-engine/engine/internal/mcp"
	"github.com/codeintel-engine/engine/internal/telemetry"
	"github.com/codeintel-engine/engine/pkg/version"
)

func newMCPCommand() *cobra.Command {
	var (
		debug        bool
		otlpEndpoint string
		otlpInsecure bool
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the Model Context Protocol server",
		Long: `Start an MCP server on stdio transport exposing codeintel_parse_ir,
the tool that lowers inline source into this engine's IR for AI agents
that bind against it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg := telemetry.DefaultConfig(telemetry.ModeMCP)
			cfg.ServiceVersion = version.Version
			cfg.OTLPEndpoint = otlpEndpoint
			cfg.OTLPInsecure = otlpInsecure

			if debug {
				cfg.LogLevel = slog.LevelDebug
			}

			providers, err := telemetry.Init(cfg)
			if err != nil {
				return fmt.Errorf("init telemetry: %w", err)
			}
			defer providers.Shutdown(cobraCmd.Context()) //nolint:errcheck // best-effort flush on exit

			metrics, err := telemetry.NewREDMetrics(providers.Meter)
			if err != nil {
				return fmt.Errorf("init metrics: %w", err)
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:  providers.Logger,
				Tracer:  providers.Tracer,
				Metrics: metrics,
			})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging to stderr")
	cmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC collector endpoint (empty disables tracing/metrics export)")
	cmd.Flags().BoolVar(&otlpInsecure, "otlp-insecure", false, "disable TLS for the OTLP gRPC connection")

	return cmd
}
