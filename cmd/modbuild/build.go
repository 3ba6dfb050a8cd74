package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/neuxs/modbuild/internal/config"
	"github.com/neuxs/modbuild/internal/pipeline"
)

type buildFlags struct {
	verbose    bool
	clean      bool
	cleanCache bool
	targets    []string
	dir        string
}

func rootCmd() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "modbuild",
		Short: "Build, collect and archive mod jars with Gradle",
		Long: `modbuild drives the Gradle build of a multi-flavor mod.

It runs Gradle for the configured targets (universal, puzzle, quilt),
renames the produced jars into dist/, copies them to any custom
destinations and keeps a versioned archive of every build.

Settings are read from build_config.json in the project root, which is
created with defaults on first run.

Examples:
  modbuild
  modbuild -v --targets puzzle,quilt
  modbuild --clean-cache
  modbuild --dir ../my-mod`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("targets") {
				flags.targets = nil
			}
			return runBuild(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVar(&flags.clean, "clean", false, "Run a standard clean before building")
	cmd.Flags().BoolVarP(&flags.cleanCache, "clean-cache", "c", false, "Also remove the Gradle cache before and after building")
	cmd.Flags().StringSliceVarP(&flags.targets, "targets", "t", nil, "Targets to build (universal, puzzle, quilt or all)")
	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Project root directory")

	return cmd
}

func runBuild(flags buildFlags) error {
	root, err := filepath.Abs(flags.dir)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, flags.verbose)

	cfg := config.Load(root, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	p := pipeline.New(cfg, pipeline.Options{
		Verbose:    flags.verbose,
		Clean:      flags.clean,
		CleanCache: flags.cleanCache,
		Targets:    flags.targets,
		Logger:     logger,
		OnProgress: func(step string) {
			info(step)
		},
	})

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if len(result.Targets) == 0 {
		warn("No valid build targets specified. Nothing to build.")
	} else {
		summarize(result)
	}
	success("Build process finished.")
	return nil
}

func summarize(result *pipeline.Result) {
	if result.Artifacts != nil {
		if n := len(result.Artifacts.Records); n > 0 {
			info("%d artifact(s) copied to dist/ (%s)", n, strings.Join(targetsOf(result), ", "))
		} else {
			warn("No artifacts were copied to dist/.")
		}
		if len(result.Artifacts.Missing) > 0 {
			warn("No jar found for: %s", strings.Join(result.Artifacts.Missing, ", "))
		}
	}
	if result.Archive != nil {
		if result.Archive.Info.DevOverflow() {
			warn("Dev number %d exceeds three digits; archived as %s", result.Archive.Info.DevNumber, result.Archive.Info.DevFolder())
		}
		info("Archived %s build %s (%d file(s))", result.Archive.Info.Kind(), result.Archive.Info.Full, result.Archive.Copied)
	}
	if result.Mirror != nil && result.Mirror.Failed > 0 {
		errorMsg("%d upload(s) to the S3 mirror failed", result.Mirror.Failed)
	}
	info("Finished in %s", result.Duration.Round(time.Millisecond))
}

func targetsOf(result *pipeline.Result) []string {
	var names []string
	for _, r := range result.Artifacts.Records {
		names = append(names, r.Target)
	}
	return names
}
