package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/compiler"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <script.yaml>...",
	Short: "Check scripts for structural problems",
	Long:  `Parses each script and reports missing ids, duplicates, unknown action types and bad variable declarations.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := colloquy.New()
		failed := 0
		for _, path := range args {
			if err := validateFile(eng, path); err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", path)
				var verr *compiler.ValidationError
				if errors.As(err, &verr) {
					for _, p := range verr.Problems {
						fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", p)
					}
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %v\n", err)
				}
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d script(s) invalid", failed, len(args))
		}
		return nil
	},
}

func validateFile(eng *colloquy.Engine, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = eng.Validate(src)
	return err
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
