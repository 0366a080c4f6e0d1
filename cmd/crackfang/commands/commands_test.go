package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/crackfang/cmd/crackfang/commands"
	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
	"github.com/Sumatoshi-tech/crackfang/pkg/config"
	"github.com/Sumatoshi-tech/crackfang/pkg/engine"
	"github.com/Sumatoshi-tech/crackfang/pkg/report"
)

const (
	md5A     = "0cc175b9c0f1b6a831c399e269772661"
	md5Empty = "d41d8cd98f00b204e9800998ecf8427e"
	md5ABC   = "900150983cd24fb0d6963f7d28e17f72"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// execute runs the root command with an empty config file so that no
// user configuration leaks into the test.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := commands.NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--config", writeFile(t, ".crackfang.yaml", ""), "--quiet"))

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func hashFile(t *testing.T, hashes ...string) string {
	t.Helper()

	return writeFile(t, "hashes.txt", strings.Join(hashes, "\n")+"\n")
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"crack", "digest", "mcp", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "log-level", "log-json", "verbose", "quiet"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestCrackCommand_FlagDefaults(t *testing.T) {
	t.Parallel()

	cmd := commands.NewCrackCommand()

	tests := []struct {
		shorthand string
		want      string
	}{
		{"m", "4"},
		{"c", "aA1"},
		{"s", ""},
		{"n", "1"},
		{"g", "false"},
		{"e", "utf-8"},
	}

	for _, tt := range tests {
		flag := cmd.Flags().ShorthandLookup(tt.shorthand)
		require.NotNil(t, flag, tt.shorthand)
		assert.Equal(t, tt.want, flag.DefValue, tt.shorthand)
	}

	assert.Equal(t, "bijective", cmd.Flags().Lookup("partition").DefValue)
	assert.Equal(t, "4096", cmd.Flags().Lookup("batch-size").DefValue)
	assert.Equal(t, "text", cmd.Flags().Lookup("format").DefValue)
}

func TestCrack_JSONSummary(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "crack", hashFile(t, md5A, md5Empty, "not-a-hash"), "-c", "a", "-m", "2", "--format", "json")
	require.NoError(t, err)

	var summary report.Summary

	require.NoError(t, json.Unmarshal([]byte(out), &summary))

	assert.Equal(t, engine.NameSequential, summary.Engine)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Cracked)
	assert.Equal(t, candidate.Lowercase, summary.Charset)
	assert.Equal(t, uint64(1+26+26*26), summary.DomainSize)
	require.Len(t, summary.Attempts, 3)

	require.NotNil(t, summary.Attempts[0].Password)
	assert.Equal(t, "a", *summary.Attempts[0].Password)
	require.NotNil(t, summary.Attempts[1].Password)
	assert.Empty(t, *summary.Attempts[1].Password)
	assert.Nil(t, summary.Attempts[2].Password)
}

func TestCrack_TextOutput_Partitioned(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "crack", hashFile(t, md5A, md5ABC), "-c", "a", "-m", "2", "-n", "3", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Running "+engine.NamePartitioned)
	assert.Contains(t, out, "Cracking: "+md5A)
	assert.Contains(t, out, md5A+"\ta\t")
	assert.Contains(t, out, md5ABC+"\t<Unknown password>")
	assert.Contains(t, out, strings.Repeat("=", 80))
}

func TestCrack_Accelerator(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "crack", hashFile(t, md5ABC), "-c", "a", "-m", "3", "-g", "--batch-size", "64", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Running "+engine.NameAccelerator)
	assert.Contains(t, out, md5ABC+"\tabc\t")
}

func TestCrack_ConfigFileWithFlagOverride(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, "custom.yaml", "search:\n  charset: \"1\"\n  max_length: 1\noutput:\n  format: yaml\n")

	var out bytes.Buffer

	root := commands.NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"crack", hashFile(t, md5A), "--config", cfgPath, "-c", "a", "--format", "json", "-q"})

	require.NoError(t, root.ExecuteContext(context.Background()))

	var summary report.Summary

	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, candidate.Lowercase, summary.Charset)
	assert.Equal(t, 1, summary.MaxLength)
	assert.Equal(t, 1, summary.Cracked)
}

func TestCrack_InvalidCharsetFlag(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "crack", hashFile(t, md5A), "-c", "x")
	require.ErrorIs(t, err, candidate.ErrUnknownFlag)
}

func TestCrack_InvalidCores(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "crack", hashFile(t, md5A), "-n", "0")
	require.ErrorIs(t, err, config.ErrInvalidWorkers)
}

func TestCrack_MissingHashFile(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "crack", filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCrack_MetricsServer(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "crack", hashFile(t, md5A), "-c", "a", "-m", "1",
		"--metrics-addr", "127.0.0.1:0", "--format", "json")
	require.NoError(t, err)

	var summary report.Summary

	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.Cracked)
}

func TestDigestCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "digest", "abc", "a")
	require.NoError(t, err)

	assert.Equal(t, md5ABC+"\tabc\n"+md5A+"\ta\n", out)
}

func TestDigestCommand_UnencodableText(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "digest", "-e", "ascii", "é")
	require.Error(t, err)
}

func TestMCPCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := commands.NewMCPCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mcp", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	flag := cmd.Flags().Lookup("debug")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "crackfang "))
}
