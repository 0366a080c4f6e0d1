// Package observability wires OpenTelemetry tracing and metrics and structured
// slog logging for crackfang's run modes (CLI searches and the MCP server).
package observability

import "log/slog"

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot crack or digest command.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName        = "crackfang"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// OTLPHeaders are extra gRPC metadata headers for the OTLP exporters.
	OTLPHeaders map[string]string

	ServiceName    string
	ServiceVersion string
	// Environment is the deployment environment, e.g. "dev" or "ci".
	Environment string
	Mode        AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export.
	OTLPEndpoint string

	// SampleRatio is the trace sampling ratio when DebugTrace is off.
	// Zero samples every root span.
	SampleRatio float64

	LogLevel           slog.Level
	ShutdownTimeoutSec int

	OTLPInsecure bool
	// DebugTrace forces 100% trace sampling.
	DebugTrace bool
	LogJSON    bool
	// Prometheus adds a pull reader whose scrape handler is returned in
	// Providers.MetricsHandler.
	Prometheus bool
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
