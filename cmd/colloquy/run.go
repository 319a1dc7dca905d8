package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Hold a conversation in the terminal",
	Long: `Runs a script interactively. Pass --session to resume a stored session
(use store.driver=redis to keep sessions across runs).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := cli.Build(ctx, cfg, logger, cli.BuildOptions{Debug: isDebug(cmd)})
		if err != nil {
			return err
		}

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		headless, _ := cmd.Flags().GetBool("headless")

		_, err = cli.RunSession(ctx, c, cli.RunOptions{
			ScriptPath: args[0],
			SessionID:  sessionID,
			Headless:   headless,
			Input:      cmd.InOrStdin(),
			Output:     cmd.OutOrStdout(),
		})
		if errors.Is(err, context.Canceled) {
			logger.Info("Session interrupted", "session_id", sessionID)
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("session", "", "Session ID to start or resume (default: a new UUID)")
	runCmd.Flags().Bool("headless", false, "Plain IO: no banner, prompts or markdown rendering")
}
