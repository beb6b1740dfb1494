package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [flags] [path...]",
		Short: "Rewrite PHP files to fix import problems",
		Long: `Check the files like lint, then write every synthesized fix back:
unused imports are removed, imports are sorted and typos in annotations are
corrected. Findings that cannot be fixed are reported as usual.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readLintOptions(cmd)
			if err != nil {
				return err
			}
			dryRun, err := cmd.Flags().GetBool("dry-run")
			if err != nil {
				return fmt.Errorf("failed to get dry-run flag: %w", err)
			}
			opts.autofix = true
			opts.apply = !dryRun
			if dryRun {
				opts.showFixes = true
				opts.preview = true
			}
			return runLint(cmd, args, opts)
		},
	}
	addLintFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "show the fixes without modifying files")
	return cmd
}
