package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
	"github.com/Sumatoshi-tech/crackfang/pkg/engine"
	"github.com/Sumatoshi-tech/crackfang/pkg/report"
)

// Sentinel validation errors.
var (
	ErrInvalidMaxLength   = errors.New("max length must not be negative")
	ErrInvalidWorkers     = errors.New("workers must be positive")
	ErrInvalidBatchSize   = errors.New("batch size must be positive")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
	ErrInvalidToolLimit   = errors.New("mcp max length must be positive")
	ErrInvalidToolDomain  = errors.New("mcp max domain must be positive")
)

const (
	configName = ".crackfang"
	configType = "yaml"
	envPrefix  = "CRACKFANG"
)

// Config holds all crackfang settings.
type Config struct {
	Search    SearchConfig    `mapstructure:"search"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	MCP       MCPConfig       `mapstructure:"mcp"`
}

// SearchConfig selects the engine and the candidate domain.
type SearchConfig struct {
	// Charset is a combination of the flags a, A, 1 and s.
	Charset     string `mapstructure:"charset"`
	Encoding    string `mapstructure:"encoding"`
	Partition   string `mapstructure:"partition"`
	StartAt     string `mapstructure:"start_at"`
	MaxLength   int    `mapstructure:"max_length"`
	Workers     int    `mapstructure:"workers"`
	BatchSize   int    `mapstructure:"batch_size"`
	GPU         bool   `mapstructure:"gpu"`
	StopOnError bool   `mapstructure:"stop_on_error"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format      string `mapstructure:"format"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	NoColor     bool   `mapstructure:"no_color"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	// OTLPHeaders is a comma-separated list of key=value pairs.
	OTLPHeaders string  `mapstructure:"otlp_headers"`
	Environment string  `mapstructure:"environment"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Insecure    bool    `mapstructure:"otlp_insecure"`
	DebugTrace  bool    `mapstructure:"debug_trace"`
}

// MCPConfig holds limits for the MCP server tools.
type MCPConfig struct {
	MaxLength int `mapstructure:"max_length"`
	// MaxDomain caps the candidates one md5_crack search may enumerate.
	MaxDomain uint64 `mapstructure:"max_domain"`
	// Workers is the default worker count of md5_crack. Zero uses GOMAXPROCS.
	Workers int `mapstructure:"workers"`
}

// LoadConfig loads configuration from configPath, or from .crackfang.yaml
// in the working directory or $HOME when configPath is empty. A missing
// default file is not an error. Environment variables override file values.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType(configType)
		viperCfg.AddConfigPath(".")

		home, homeErr := os.UserHomeDir()
		if homeErr == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &cfg, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("search.charset", DefaultCharset)
	viperCfg.SetDefault("search.encoding", DefaultEncoding)
	viperCfg.SetDefault("search.partition", DefaultPartition)
	viperCfg.SetDefault("search.start_at", DefaultStartAt)
	viperCfg.SetDefault("search.max_length", DefaultMaxLength)
	viperCfg.SetDefault("search.workers", DefaultWorkers)
	viperCfg.SetDefault("search.batch_size", DefaultBatchSize)
	viperCfg.SetDefault("search.gpu", DefaultGPU)
	viperCfg.SetDefault("search.stop_on_error", DefaultStopOnError)

	viperCfg.SetDefault("output.format", DefaultFormat)
	viperCfg.SetDefault("output.no_color", DefaultNoColor)
	viperCfg.SetDefault("output.metrics_addr", DefaultMetricsAddr)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_headers", DefaultOTLPHeaders)
	viperCfg.SetDefault("telemetry.environment", DefaultEnvironment)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("telemetry.debug_trace", DefaultDebugTrace)

	viperCfg.SetDefault("mcp.max_length", DefaultMCPMaxLength)
	viperCfg.SetDefault("mcp.max_domain", DefaultMCPMaxDomain)
	viperCfg.SetDefault("mcp.workers", DefaultMCPWorkers)
}

// Validate checks every setting, returning the first problem found.
func (c *Config) Validate() error {
	checks := []func() error{
		c.Search.validate,
		c.Output.validate,
		c.Logging.validate,
		c.Telemetry.validate,
		c.MCP.validate,
	}

	for _, check := range checks {
		err := check()
		if err != nil {
			return err
		}
	}

	return nil
}

func (s SearchConfig) validate() error {
	if s.MaxLength < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxLength, s.MaxLength)
	}

	if s.Workers < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, s.Workers)
	}

	if s.BatchSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, s.BatchSize)
	}

	_, err := candidate.FromFlags(s.Charset)
	if err != nil {
		return fmt.Errorf("search.charset: %w", err)
	}

	_, err = digest.LookupEncoding(s.Encoding)
	if err != nil {
		return fmt.Errorf("search.encoding: %w", err)
	}

	_, err = engine.ParsePartitionMode(s.Partition)
	if err != nil {
		return fmt.Errorf("search.partition: %w", err)
	}

	return nil
}

func (o OutputConfig) validate() error {
	_, err := report.ParseFormat(o.Format)
	if err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	return nil
}

func (l LoggingConfig) validate() error {
	_, err := l.SlogLevel()

	return err
}

// SlogLevel parses Level ("debug", "info", "warn", "error", or an offset
// such as "info+2").
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

func (t TelemetryConfig) validate() error {
	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, t.SampleRatio)
	}

	return nil
}

func (m MCPConfig) validate() error {
	if m.MaxLength < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidToolLimit, m.MaxLength)
	}

	if m.MaxDomain == 0 {
		return ErrInvalidToolDomain
	}

	if m.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, m.Workers)
	}

	return nil
}
