// Package commands implements the crackfang cobra commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/crackfang/pkg/config"
	"github.com/Sumatoshi-tech/crackfang/pkg/observability"
	"github.com/Sumatoshi-tech/crackfang/pkg/version"
)

// Persistent flag names.
const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagLogJSON  = "log-json"
	flagVerbose  = "verbose"
	flagQuiet    = "quiet"
)

const (
	levelDebug = "debug"
	levelError = "error"

	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
)

// NewRootCommand creates the crackfang root command with all subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crackfang",
		Short: "Crackfang - MD5 brute-force password recovery",
		Long: `Crackfang recovers short passwords from MD5 hex digests by exhaustive search.

Commands:
  crack     Invert every hash of a hash file
  digest    Print the MD5 digest of texts
  mcp       Serve crack and digest tools over MCP stdio
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, "", "config file (default: .crackfang.yaml in the working directory or $HOME)")
	flags.String(flagLogLevel, config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.Bool(flagLogJSON, config.DefaultLogJSON, "log JSON to stderr")
	flags.BoolP(flagVerbose, "v", false, "verbose output (debug logging)")
	flags.BoolP(flagQuiet, "q", false, "suppress logging below errors")

	rootCmd.AddCommand(NewCrackCommand())
	rootCmd.AddCommand(NewDigestCommand())
	rootCmd.AddCommand(NewMCPCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// loadSettings loads the config file named by --config and applies the
// persistent logging flags that were set explicitly.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, err := flags.GetString(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("read --%s: %w", flagConfig, err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed(flagLogLevel) {
		cfg.Logging.Level, _ = flags.GetString(flagLogLevel)
	}

	if flags.Changed(flagLogJSON) {
		cfg.Logging.JSON, _ = flags.GetBool(flagLogJSON)
	}

	if verbose, _ := flags.GetBool(flagVerbose); verbose {
		cfg.Logging.Level = levelDebug
	}

	if quiet, _ := flags.GetBool(flagQuiet); quiet {
		cfg.Logging.Level = levelError
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return cfg, nil
}

// observabilityConfig maps settings onto observability.Config. The standard
// OTEL_EXPORTER_OTLP_* variables fill in an unset endpoint and headers.
func observabilityConfig(cfg *config.Config, mode observability.AppMode) (observability.Config, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	obs := observability.DefaultConfig()
	obs.ServiceVersion = version.Version
	obs.Mode = mode
	obs.Environment = cfg.Telemetry.Environment
	obs.LogLevel = level
	obs.LogJSON = cfg.Logging.JSON
	obs.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obs.OTLPInsecure = cfg.Telemetry.Insecure
	obs.SampleRatio = cfg.Telemetry.SampleRatio
	obs.DebugTrace = cfg.Telemetry.DebugTrace

	if obs.OTLPEndpoint == "" {
		obs.OTLPEndpoint = os.Getenv(envOTLPEndpoint)
	}

	headers := cfg.Telemetry.OTLPHeaders
	if headers == "" {
		headers = os.Getenv(envOTLPHeaders)
	}

	obs.OTLPHeaders = observability.ParseOTLPHeaders(headers)

	return obs, nil
}
