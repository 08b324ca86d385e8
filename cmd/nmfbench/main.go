// Command nmfbench runs the non-negative matrix factorization benchmark:
// extract the face datasets, sweep algorithms against noise models, and
// package the resulting artifacts.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vincent05r/test-asm1-5328/internal/archive"
	"github.com/vincent05r/test-asm1-5328/internal/config"
	"github.com/vincent05r/test-asm1-5328/internal/experiment"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "nmfbench",
		Short:         "Compare NMF algorithms on face-image datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (defaults built in)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	load := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		log, err := newLogger(verbose)
		if err != nil {
			return nil, nil, err
		}
		return cfg, log, nil
	}

	root.AddCommand(
		newRunCmd(load),
		newExtractCmd(load),
		newPackageCmd(load),
		newCleanCmd(load),
		newVersionCmd(),
	)
	return root
}

type loadFunc func() (*config.Config, *zap.Logger, error)

func newRunCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full benchmark sweep and write results and figures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			results, err := experiment.New(cfg, log).Run(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("sweep complete", zap.Int("experiments", len(results)))
			return nil
		},
	}
}

func newExtractCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract the dataset archive into the data directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if err := archive.Extract(cfg.Archive.DataZip, cfg.DataDir); err != nil {
				return err
			}
			log.Info("extracted dataset archive",
				zap.String("archive", cfg.Archive.DataZip),
				zap.String("dest", cfg.DataDir))
			return nil
		},
	}
}

func newPackageCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "package",
		Short: "Assemble the submission zip from the generated artifacts",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			skipped, err := archive.Build(cfg.Archive.Submission, cfg.Archive.Include)
			if err != nil {
				return err
			}
			for _, s := range skipped {
				log.Warn("missing artifact skipped", zap.String("path", s))
			}
			log.Info("wrote submission archive", zap.String("path", cfg.Archive.Submission))
			return nil
		},
	}
}

func newCleanCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove generated artifacts (results, figures, submission zip)",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			targets := []string{
				filepath.Join(cfg.OutputDir, "results.csv"),
				filepath.Join(cfg.OutputDir, "figures"),
				cfg.Archive.Submission,
			}
			for _, t := range targets {
				if err := os.RemoveAll(t); err != nil {
					return fmt.Errorf("failed to remove %s: %w", t, err)
				}
				log.Info("removed", zap.String("path", t))
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nmfbench %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Build time: %s\n", BuildTime)
			fmt.Fprintf(cmd.OutOrStdout(), "  Git commit: %s\n", GitCommit)
		},
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}
