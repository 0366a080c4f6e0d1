package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
	"github.com/Sumatoshi-tech/crackfang/pkg/config"
	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
	"github.com/Sumatoshi-tech/crackfang/pkg/engine"
	"github.com/Sumatoshi-tech/crackfang/pkg/report"
)

func validConfig() config.Config {
	return config.Config{
		Search: config.SearchConfig{
			Charset:   config.DefaultCharset,
			Encoding:  config.DefaultEncoding,
			Partition: config.DefaultPartition,
			MaxLength: config.DefaultMaxLength,
			Workers:   config.DefaultWorkers,
			BatchSize: config.DefaultBatchSize,
		},
		Output:  config.OutputConfig{Format: config.DefaultFormat},
		Logging: config.LoggingConfig{Level: config.DefaultLogLevel},
		MCP:     config.MCPConfig{MaxLength: config.DefaultMCPMaxLength, MaxDomain: config.DefaultMCPMaxDomain},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{"negative max length", func(c *config.Config) { c.Search.MaxLength = -1 }, config.ErrInvalidMaxLength},
		{"zero workers", func(c *config.Config) { c.Search.Workers = 0 }, config.ErrInvalidWorkers},
		{"zero batch size", func(c *config.Config) { c.Search.BatchSize = 0 }, config.ErrInvalidBatchSize},
		{"unknown charset flag", func(c *config.Config) { c.Search.Charset = "ax" }, candidate.ErrUnknownFlag},
		{"empty charset", func(c *config.Config) { c.Search.Charset = "" }, candidate.ErrEmptyCharset},
		{"unknown encoding", func(c *config.Config) { c.Search.Encoding = "klingon" }, digest.ErrUnknownEncoding},
		{"unknown partition", func(c *config.Config) { c.Search.Partition = "striped" }, engine.ErrUnknownPartitionMode},
		{"unknown format", func(c *config.Config) { c.Output.Format = "xml" }, report.ErrUnknownFormat},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, config.ErrInvalidLogLevel},
		{"sample ratio above one", func(c *config.Config) { c.Telemetry.SampleRatio = 1.5 }, config.ErrInvalidSampleRatio},
		{"zero tool limit", func(c *config.Config) { c.MCP.MaxLength = 0 }, config.ErrInvalidToolLimit},
		{"zero tool domain", func(c *config.Config) { c.MCP.MaxDomain = 0 }, config.ErrInvalidToolDomain},
		{"negative tool workers", func(c *config.Config) { c.MCP.Workers = -1 }, config.ErrInvalidWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			require.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestLoggingConfig_SlogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := config.LoggingConfig{Level: tt.in}.SlogLevel()
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
