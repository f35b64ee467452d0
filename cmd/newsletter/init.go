package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/newsletter/internal/config"
	"github.com/vango-dev/newsletter/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default newsletter.json",
		Long: `Write newsletter.json with every setting at its default value.

The file is written to dir, or to the working directory when dir is
omitted. An existing file is kept unless --force is given.

Examples:
  newsletter init
  newsletter init ./deploy --force`,
		Args: cobra.MaximumNArgs(1),
		// The file being written may not exist yet.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing newsletter.json")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.New("N104").
			WithDetailf("%s already exists", filepath.Join(dir, config.ConfigFileName)).
			WithSuggestion("Pass --force to overwrite it")
	}

	cfg := config.New()
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Wrote %s", cfg.Path())
	return nil
}
