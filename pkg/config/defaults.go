// Package config loads crackfang settings from .crackfang.yaml and
// CRACKFANG_* environment variables.
package config

// Search defaults.
const (
	DefaultCharset     = "aA1"
	DefaultEncoding    = "utf-8"
	DefaultPartition   = "bijective"
	DefaultStartAt     = ""
	DefaultMaxLength   = 4
	DefaultWorkers     = 1
	DefaultBatchSize   = 4096
	DefaultGPU         = false
	DefaultStopOnError = false
)

// Output defaults.
const (
	DefaultFormat      = "text"
	DefaultNoColor     = false
	DefaultMetricsAddr = ""
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint = ""
	DefaultOTLPHeaders  = ""
	DefaultEnvironment  = ""
	DefaultSampleRatio  = 0.0
	DefaultOTLPInsecure = false
	DefaultDebugTrace   = false
)

// MCP server defaults. Tool searches run inside an interactive session, so
// their length cap is lower than what the CLI accepts.
const (
	DefaultMCPMaxLength        = 5
	DefaultMCPMaxDomain uint64 = 10_000_000_000
	DefaultMCPWorkers          = 0
)
