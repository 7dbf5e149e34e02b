// Package telemetry wires OpenTelemetry tracing and metrics, plus a
// trace-aware structured logger, for every codeintel entrypoint (CLI, MCP
// server). When no OTLP endpoint is configured, every provider is a no-op
// and the engine carries zero export overhead.
package telemetry

import (
	"io"
	"log/slog"
)

// Mode identifies how the binary was launched, recorded as the "mode"
// attribute on every log line; the trace resource does not carry it.
type Mode string

// Recognized launch modes.
const (
	ModeCLI Mode = "cli"
	ModeMCP Mode = "mcp"
)

const (
	defaultServiceName        = "codeintel-engine"
	defaultShutdownTimeoutSec = 5
)

// Config holds every telemetry provider's configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string
	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string
	// Mode identifies how the binary was launched.
	Mode Mode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export; providers become no-op.
	OTLPEndpoint string
	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// SampleRatio is the trace sampling ratio (0.0 to 1.0). Zero uses the
	// OTel SDK default (parent-based with always-on root).
	SampleRatio float64

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level
	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// ShutdownTimeoutSec bounds how long Shutdown waits to flush telemetry.
	ShutdownTimeoutSec int

	// LogOutput is where log lines are written. Nil defaults to os.Stderr.
	LogOutput io.Writer
}

// DefaultConfig returns a Config with sensible defaults for zero-config
// startup: no OTLP export, info-level JSON logs.
func DefaultConfig(mode Mode) Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               mode,
		LogLevel:           slog.LevelInfo,
		LogJSON:            true,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
