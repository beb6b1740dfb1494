package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bugfree/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write or update the bugfree config",
		Long: `Write bugfree.toml (or bugfree.yaml with --yaml) into dir, default the
current directory. An existing config is read and written back with every
missing key filled in. --config names the file directly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().Bool("yaml", false, "write bugfree.yaml instead of bugfree.toml")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	useYAML, err := cmd.Flags().GetBool("yaml")
	if err != nil {
		return fmt.Errorf("failed to get yaml flag: %w", err)
	}

	if path == "" {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		name := "bugfree.toml"
		if useYAML {
			name = "bugfree.yaml"
		}
		path = filepath.Join(dir, name)
	}

	cfg := config.Default()
	verb := "Created"
	if _, err := os.Stat(path); err == nil {
		if cfg, err = config.Load(path); err != nil {
			return err
		}
		verb = "Updated"
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, path)
	return nil
}
