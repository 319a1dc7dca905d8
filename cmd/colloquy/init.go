package main

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/colloquy/internal/prompt"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write the default prompt templates into a project",
	Long: `Creates <dir>/[<project>/]_system/config/default/*.md from the built-in templates.
Copy one into _system/config/custom/<scheme>/ to customize it for a template scheme.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		project, _ := cmd.Flags().GetString("project")
		force, _ := cmd.Flags().GetBool("force")

		written, err := prompt.WriteDefaults(filepath.Join(dir, project), force)
		for _, p := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
		}
		if err != nil {
			return err
		}
		if len(written) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "templates already present (use --force to overwrite)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("project", "", "Project ID subdirectory")
	initCmd.Flags().Bool("force", false, "Overwrite existing templates")
}
