package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/logging"
	mcpAdapter "github.com/aretw0/colloquy/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <script.yaml>",
	Short: "Serve a script as MCP tools over stdio",
	Long:  `Starts a Model Context Protocol server with the send_message and get_session tools.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// Stdout carries JSON-RPC; keep logs on stderr and quiet by default.
		if !isDebug(cmd) {
			logger = logging.New(slog.LevelWarn)
		}

		script, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}

		c, err := cli.Build(cmd.Context(), cfg, logger, cli.BuildOptions{Debug: isDebug(cmd)})
		if err != nil {
			return err
		}
		if _, err := c.Engine.Validate(script); err != nil {
			return err
		}

		s := mcpAdapter.NewServer(c.Engine, c.Sessions, script, mcpAdapter.WithLogger(logger))
		return s.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
