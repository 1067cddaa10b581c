package main

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/refportfolio/internal/config"
	"github.com/aristath/refportfolio/internal/di"
	"github.com/aristath/refportfolio/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	db     string
	format string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "refportfolio",
		Short: "Research output portfolio optimizer",
		Long: "refportfolio scores research outputs for submission risk, evaluates candidate\n" +
			"submissions and recommends which outputs to include.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			_, err := parseFormat(flags.format)
			return err
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.db, "db", "", "SQLite record store (default $REF_DATA_DIR/$REF_DB_NAME)")
	pf.StringVar(&flags.format, "format", string(formatJSON), "Output format: json, yaml or msgpack")

	cmd.AddCommand(
		newLoadCmd(flags),
		newOptimizeCmd(flags),
		newCompareCmd(flags),
		newScenariosCmd(flags),
		newRecalcCmd(flags),
		newReadinessCmd(flags),
		newRiskCmd(flags),
		newScheduleCmd(flags),
	)
	return cmd
}

// app is the per-invocation environment shared by the subcommands.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	container *di.Container
	format    format
}

func openApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.db != "" {
		path, err := filepath.Abs(flags.db)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		cfg.DataDir = filepath.Dir(path)
		cfg.DBName = filepath.Base(path)
	}

	f, err := parseFormat(flags.format)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Out:    cmd.ErrOrStderr(),
	})
	logger.SetGlobalLogger(log)

	container, err := di.Wire(cfg, log)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, container: container, format: f}, nil
}

func (a *app) Close() {
	if err := a.container.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close database")
	}
}

func (a *app) write(cmd *cobra.Command, v interface{}) error {
	return encode(cmd.OutOrStdout(), a.format, v)
}
