package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/colloquy/internal/config"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "colloquy",
	Short: "Colloquy runs scripted, resumable LLM conversations",
	Long: `Colloquy executes YAML conversation scripts (phases, topics and AI actions)
one turn at a time, persisting the session between turns.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./colloquy.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and lifecycle event logs")
}

// loadConfig reads configuration and builds the logger for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	level := logging.ParseLevel(cfg.Log.Level)
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return cfg, logging.New(level), nil
}

func isDebug(cmd *cobra.Command) bool {
	debug, _ := cmd.Flags().GetBool("debug")
	return debug
}
