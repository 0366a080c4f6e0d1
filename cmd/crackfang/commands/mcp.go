package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/crackfang/pkg/mcp"
	"github.com/Sumatoshi-tech/crackfang/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes crackfang as tools that AI agents can discover and
invoke:
  - md5_crack: recover passwords from MD5 digests (bounded max_length)
  - md5_digest: compute the MD5 digest of a text in a given encoding`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadSettings(cobraCmd)
			if err != nil {
				return err
			}

			obsCfg, err := observabilityConfig(cfg, observability.ModeMCP)
			if err != nil {
				return err
			}

			// stdout carries the protocol; logs go to stderr as JSON.
			obsCfg.LogJSON = true

			if debug {
				obsCfg.LogLevel = slog.LevelDebug
				obsCfg.DebugTrace = true
			}

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			searchMetrics, err := observability.NewSearchMetrics(providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:        providers.Logger,
				Metrics:       red,
				SearchMetrics: searchMetrics,
				Tracer:        providers.Tracer,
				Limits:        mcp.Limits{
					MaxLength: cfg.MCP.MaxLength,
					MaxDomain: cfg.MCP.MaxDomain,
					Workers:   cfg.MCP.Workers,
				},
			})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging and full trace sampling")

	return cmd
}
