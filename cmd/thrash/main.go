// Package main provides the CLI entry point for thrash, a
// multi-threaded storage throughput benchmark.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spinloop/thrash/pkg/bench"
	"github.com/spinloop/thrash/pkg/config"
	"github.com/spinloop/thrash/pkg/dataset"
	"github.com/spinloop/thrash/pkg/flist"
	"github.com/spinloop/thrash/pkg/report"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "thrash",
		Short: "Multi-threaded storage throughput benchmark",
		Long: `Thrash drives concurrent file read/write workloads against a supplied
file set, measures aggregate and per-worker data rates, and cross-checks
them against host disk and CPU activity to flag unreliable results
(cached data, CPU-bound measurement).`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newMkfilesCmd(logger))

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		configFile  string
		writeConfig string
		flagCfg     = config.Default()
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &flagCfg
			if configFile != "" {
				// A config file replaces the other flags entirely.
				loaded, err := config.Load(configFile)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if writeConfig != "" {
				if err := cfg.Save(writeConfig); err != nil {
					logger.Warn("could not write config", "err", err)
				} else {
					logger.Info("configuration written", "path", writeConfig)
				}
			}
			return runBenchmark(logger, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "",
		"Path to a YAML configuration file (disables the other flags)")
	flags.StringVar(&writeConfig, "write-config", "",
		"Save the effective configuration to this YAML file")
	flags.StringVarP(&flagCfg.Infiles, "infiles", "i", "",
		"List of input filenames, one per line")
	flags.StringVarP(&flagCfg.Outfiles, "outfiles", "o", "",
		"List of output filenames, one per line")
	flags.IntVarP(&flagCfg.Jobs, "jobs", "j", flagCfg.Jobs,
		"Number of parallel workers to start")
	flags.StringVarP(&flagCfg.Split, "workload-split", "s", flagCfg.Split,
		"How files are split between workers: separate, overlap or same")
	flags.StringVarP(&flagCfg.Mode, "mode", "m", flagCfg.Mode,
		"Benchmark mode: read, write or readwrite")
	flags.BoolVarP(&flagCfg.Randomize, "randomize-files", "r", false,
		"Access listed files in random instead of listed order")
	flags.Int64Var(&flagCfg.WriteSize, "write-size", flagCfg.WriteSize,
		"Bytes written per output file in write mode")
	flags.Float64Var(&flagCfg.ReportHz, "report-hz", flagCfg.ReportHz,
		"Report rows per second (0 disables, negative unthrottles)")
	flags.Float64Var(&flagCfg.MaxOps, "max-ops", 0,
		"Per-worker file operations per second (0 = unthrottled)")
	flags.Int64Var(&flagCfg.Seed, "seed", 0,
		"Shuffle seed (0 = derive from clock)")
	flags.BoolVar(&flagCfg.NoColor, "no-color", false,
		"Disable terminal colors")

	return cmd
}

func runBenchmark(logger *slog.Logger, cfg *config.Config) error {
	if cfg.NoColor {
		color.NoColor = true
	}

	mode, err := bench.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	split, err := bench.ParseSplit(cfg.Split)
	if err != nil {
		return err
	}

	files := &bench.FileSet{}
	if cfg.Infiles != "" {
		if !mode.Reads() {
			logger.Warn("ignoring input list because mode never reads", "mode", cfg.Mode)
		} else if files.In, err = flist.Load(cfg.Infiles); err != nil {
			return fmt.Errorf("input list %s: %w", cfg.Infiles, err)
		}
	}
	if cfg.Outfiles != "" {
		if !mode.Writes() {
			logger.Warn("ignoring output list because mode never writes", "mode", cfg.Mode)
		} else if files.Out, err = flist.Load(cfg.Outfiles); err != nil {
			return fmt.Errorf("output list %s: %w", cfg.Outfiles, err)
		}
	}
	if files.Len() == 0 {
		return fmt.Errorf("file lists are empty, nothing to benchmark")
	}

	logger.Info("starting benchmark",
		"files", files.Len(),
		"workers", cfg.Jobs,
		"mode", cfg.Mode,
		"split", cfg.Split,
		"randomize", cfg.Randomize,
	)

	opts := bench.Options{
		Workers:         cfg.Jobs,
		Mode:            mode,
		Split:           split,
		Randomize:       cfg.Randomize,
		WriteSize:       cfg.WriteSize,
		ReportHz:        cfg.ReportHz,
		MaxOpsPerWorker: cfg.MaxOps,
		Seed:            cfg.Seed,
	}
	ctrl, err := bench.NewController(files, opts, report.NewPrinter(os.Stdout), logger)
	if err != nil {
		return err
	}

	ctrl.Run()
	return nil
}

func newMkfilesCmd(logger *slog.Logger) *cobra.Command {
	var (
		dir      string
		count    int
		size     int64
		listPath string
		jobs     int
		limitMB  float64
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "mkfiles",
		Short: "Generate a synthetic dataset to benchmark against",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return dataset.Generate(cmd.Context(), dataset.Config{
				Dir:      dir,
				Count:    count,
				FileSize: size,
				ListPath: listPath,
				Jobs:     jobs,
				LimitBps: limitMB * 1024 * 1024,
				Seed:     seed,
				Progress: true,
			}, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&dir, "dir", "d", "thrash-data",
		"Directory to create the files in")
	flags.IntVarP(&count, "count", "n", 100,
		"Number of files to create")
	flags.Int64Var(&size, "size", 1<<20,
		"Bytes per file")
	flags.StringVar(&listPath, "list", "",
		"Where to write the file list (default <dir>/files.txt)")
	flags.IntVarP(&jobs, "jobs", "j", 4,
		"Parallel writers")
	flags.Float64Var(&limitMB, "limit", 0,
		"Aggregate write limit in MB/s (0 = unlimited)")
	flags.Int64Var(&seed, "seed", 0,
		"Content seed")

	return cmd
}
