package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/crackfang/pkg/config"
)

const (
	testMaxLength = 6
	testWorkers   = 8
	testBatchSize = 1024
	testToolLimit = 3
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".crackfang.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, config.DefaultCharset, cfg.Search.Charset)
	assert.Equal(t, config.DefaultEncoding, cfg.Search.Encoding)
	assert.Equal(t, config.DefaultPartition, cfg.Search.Partition)
	assert.Equal(t, config.DefaultMaxLength, cfg.Search.MaxLength)
	assert.Equal(t, config.DefaultWorkers, cfg.Search.Workers)
	assert.Equal(t, config.DefaultBatchSize, cfg.Search.BatchSize)
	assert.False(t, cfg.Search.GPU)
	assert.False(t, cfg.Search.StopOnError)
	assert.Equal(t, config.DefaultFormat, cfg.Output.Format)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, config.DefaultMCPMaxLength, cfg.MCP.MaxLength)
	assert.Equal(t, config.DefaultMCPMaxDomain, cfg.MCP.MaxDomain)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	content := `search:
  charset: a1s
  encoding: latin1
  partition: fixed
  start_at: zz
  max_length: 6
  workers: 8
  batch_size: 1024
  gpu: true
  stop_on_error: true
output:
  format: json
  no_color: true
  metrics_addr: ":9464"
logging:
  level: debug
  json: true
telemetry:
  otlp_endpoint: "localhost:4317"
  otlp_headers: "x-token=abc"
  environment: ci
  sample_ratio: 0.25
  otlp_insecure: true
mcp:
  max_length: 3
  max_domain: 1000
  workers: 2
`

	cfg, err := config.LoadConfig(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, config.SearchConfig{
		Charset:     "a1s",
		Encoding:    "latin1",
		Partition:   "fixed",
		StartAt:     "zz",
		MaxLength:   testMaxLength,
		Workers:     testWorkers,
		BatchSize:   testBatchSize,
		GPU:         true,
		StopOnError: true,
	}, cfg.Search)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.NoColor)
	assert.Equal(t, ":9464", cfg.Output.MetricsAddr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, "x-token=abc", cfg.Telemetry.OTLPHeaders)
	assert.Equal(t, "ci", cfg.Telemetry.Environment)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRatio, 1e-9)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.Equal(t, testToolLimit, cfg.MCP.MaxLength)
	assert.Equal(t, uint64(1000), cfg.MCP.MaxDomain)
	assert.Equal(t, 2, cfg.MCP.Workers)
}

func TestLoadConfig_MissingExplicitFile_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_MalformedYAML_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, "search:\n  workers: [invalid yaml\n"))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_UnknownKeys_NoError(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, "unknown_section:\n  key: value\nsearch:\n  workers: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Search.Workers)
}

func TestLoadConfig_InvalidValue_FailsValidation(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, "search:\n  workers: 0\n"))
	require.ErrorIs(t, err, config.ErrInvalidWorkers)
	assert.Nil(t, cfg)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "search:\n  max_length: 3\n  charset: a\n")

	t.Setenv("CRACKFANG_SEARCH_MAX_LENGTH", "5")
	t.Setenv("CRACKFANG_OUTPUT_FORMAT", "yaml")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Search.MaxLength)
	assert.Equal(t, "a", cfg.Search.Charset)
	assert.Equal(t, "yaml", cfg.Output.Format)
}

func TestLoadConfig_NoPath_SearchesDefaultLocations(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	require.NoError(t, os.WriteFile(filepath.Join(home, ".crackfang.yaml"), []byte("search:\n  max_length: 2\n"), 0o600))

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Search.MaxLength)
}
