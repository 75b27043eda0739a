package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"welltrend/internal/config"
	"welltrend/internal/tasks"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

func Run(args []string) ExitCode {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trendctl",
		Short: "Query trend items, series and downtime of production assets.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().StringP("config", "c", "./welltrend.yaml", "path to YAML config (optional)")
	rootCmd.PersistentFlags().String("db", "", "override database.path")
	rootCmd.PersistentFlags().Bool("external", false, "force the external time-series store on or off (--external=false)")

	rootCmd.AddCommand(
		NewSeedCmd().Command(),
		NewItemsCmd().Command(),
		NewSeriesCmd().Command(),
		NewDowntimeCmd().Command(),
	)
	return rootCmd
}

// bootstrap wires the engine from the persistent flags.
func bootstrap(ctx context.Context, cmd *cobra.Command) (*tasks.Services, *slog.Logger, error) {
	flags := cmd.Root().PersistentFlags()
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	cfgPath, err := flags.GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	dbPath, err := flags.GetString("db")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get db flag: %w", err)
	}

	// Log settings live in the config file; read them before building the engine.
	_, pre, err := config.Load(cfgPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cmd.ErrOrStderr(), verbose, pre.Log)

	opts := tasks.Options{ConfigPath: cfgPath, DatabasePath: dbPath, Logger: log}
	if flags.Changed("external") {
		external, err := flags.GetBool("external")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get external flag: %w", err)
		}
		opts.ExternalStore = &external
	}
	svc, err := tasks.Bootstrap(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return svc, log, nil
}

func newLogger(w io.Writer, verbose bool, cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
