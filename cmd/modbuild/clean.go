package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neuxs/modbuild/internal/clean"
)

func cleanCmd() *cobra.Command {
	var (
		cache   bool
		verbose bool
		dir     string
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove Gradle build output",
		Long: `Remove the Gradle build folders of the project without building.

With --cache the project's .gradle cache is removed as well.

Examples:
  modbuild clean
  modbuild clean --cache`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			cleaner := clean.New(root, clean.Options{
				Verbose: verbose,
				Logger:  newLogger(os.Stderr, verbose),
			})
			stats := cleaner.Clean(cache)

			if stats.Errors > 0 {
				errorMsg("Removed %d path(s), %d error(s)", stats.Removed, stats.Errors)
				return nil
			}
			success("Removed %d path(s)", stats.Removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cache, "cache", false, "Also remove the Gradle cache")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().StringVar(&dir, "dir", ".", "Project root directory")

	return cmd
}
