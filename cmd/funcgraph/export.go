package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeusData/funcgraph/internal/config"
	"github.com/DeusData/funcgraph/internal/discover"
	"github.com/DeusData/funcgraph/internal/pipeline"
	"github.com/DeusData/funcgraph/internal/store"
	"github.com/DeusData/funcgraph/internal/watcher"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <repo>",
		Short: "Export a repository",
		Long: `Discovers C, C++ and Go sources under <repo>, parses them in parallel and writes
every function into the graph database. Settings come from <repo>/.funcgraph.yaml;
flags override them. A previous export of the same repository is replaced.
With --watch the command keeps polling and re-exports after every change.`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
	cmd.Flags().String("db", "", "database file (default <repo>/.funcgraph/graph.db)")
	cmd.Flags().StringSlice("lang", nil, "languages to export (c, cpp, go)")
	cmd.Flags().StringSlice("exclude", nil, "extra globs to skip")
	cmd.Flags().Int("workers", 0, "parallel parse workers (default: number of CPUs)")
	cmd.Flags().String("log-level", "", "debug, info, warn or error")
	cmd.Flags().String("log-format", "", "text or json")
	cmd.Flags().Bool("strict", false, "exit with an error when any function fails to export")
	cmd.Flags().Bool("watch", false, "keep running and re-export when sources change")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	repo, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if info, err := os.Stat(repo); err != nil {
		return fmt.Errorf("stat repo: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", repo)
	}

	cfg := config.LoadConfig(repo)
	applyFlags(cmd, cfg)
	setupLogging(cmd.ErrOrStderr(), cfg.EffectiveLogLevel(), cfg.EffectiveLogFormat())

	langs, err := cfg.EffectiveLanguages()
	if err != nil {
		return err
	}

	dbPath := cfg.EffectiveDBPath(repo)
	st, err := store.OpenPath(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		Languages:   langs,
		Exclude:     cfg.Exclude,
		Workers:     cfg.EffectiveParseWorkers(),
		IndexFields: cfg.EffectiveIndexFields(),
	}
	strict, _ := cmd.Flags().GetBool("strict")
	out := cmd.OutOrStdout()

	exportOnce := func(ctx context.Context) error {
		sum, err := pipeline.New(ctx, st, repo, opts).Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "exported %d functions (%d failed) from %d files: %d nodes, %d edges in %s\n",
			sum.Functions, sum.FunctionsFailed, sum.Files, sum.Nodes, sum.Edges, sum.Elapsed.Round(time.Millisecond))
		fmt.Fprintf(out, "database: %s\n", dbPath)
		for _, f := range sum.Failures {
			slog.Debug("export.failure", "function", f.Function, "state", f.FailedIn.String(), "err", f.Err)
		}
		if strict && (sum.FunctionsFailed > 0 || sum.FilesFailed > 0) {
			return fmt.Errorf("%d functions and %d files failed to export", sum.FunctionsFailed, sum.FilesFailed)
		}
		return nil
	}

	if err := exportOnce(ctx); err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		slog.Info("watcher.start", "path", repo)
		w := watcher.New(repo, &discover.Options{Exclude: opts.Exclude, Languages: opts.Languages}, exportOnce)
		w.Run(ctx)
	}
	return nil
}

// applyFlags overrides config values with the flags the user set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
		if abs, err := filepath.Abs(cfg.DBPath); err == nil {
			cfg.DBPath = abs
		}
	}
	if flags.Changed("lang") {
		cfg.Languages, _ = flags.GetStringSlice("lang")
	}
	if flags.Changed("exclude") {
		extra, _ := flags.GetStringSlice("exclude")
		cfg.Exclude = append(cfg.Exclude, extra...)
	}
	if flags.Changed("workers") {
		n, _ := flags.GetInt("workers")
		cfg.ParseWorkers = &n
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		cfg.Log.Level = &v
	}
	if flags.Changed("log-format") {
		v, _ := flags.GetString("log-format")
		cfg.Log.Format = &v
	}
}
