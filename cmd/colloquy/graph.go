package main

import (
	"fmt"
	"os"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <script.yaml>",
	Short: "Print a script as a Mermaid flowchart",
	Long: `Renders phases and topics as subgraphs and actions in execution order.
With --session, the session's progress is highlighted using the configured store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		script, err := colloquy.New().Validate(src)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, _, err := cli.OpenStore(cfg.Store)
			if err != nil {
				return err
			}
			state, err := store.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", sessionID, err)
			}
			overlay = graph.OverlayFromState(script, state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(script, overlay))
		return nil
	},
}

func init() {
	graphCmd.Flags().String("session", "", "Highlight the progress of this session")
	rootCmd.AddCommand(graphCmd)
}
