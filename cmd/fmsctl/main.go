package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/config"
	"github.com/mamadbah2/fms/internal/repository/sqlstore"
	farmsvc "github.com/mamadbah2/fms/internal/service/farm"
	reportingsvc "github.com/mamadbah2/fms/internal/service/reporting"
	"github.com/mamadbah2/fms/internal/service/simulation"
	"github.com/mamadbah2/fms/pkg/logger"
)

var (
	envFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:           "fmsctl",
	Short:         "fmsctl operates the farm database",
	Long:          "Advance the simulated clock, reset the farm snapshot and export paddock data without running the HTTP service.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Path to a .env file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DB_PATH)")

	rootCmd.AddCommand(advanceCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(paddocksCmd)
	rootCmd.AddCommand(exportCmd)
}

// app holds the services a command works with.
type app struct {
	store   *sqlstore.Store
	farm    *farmsvc.Service
	sim     *simulation.Service
	reports *reportingsvc.Service
	logger  *zap.Logger
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	store, err := sqlstore.Open(cfg.Database.Path, log.Named("repo.sqlstore"))
	if err != nil {
		return nil, err
	}
	if err := store.Bootstrap(ctx, cfg.Simulation.StartDate, cfg.Database.Seed); err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		store:   store,
		farm:    farmsvc.NewService(store, log.Named("svc.farm")),
		sim:     simulation.NewService(store, log.Named("svc.simulation")),
		reports: reportingsvc.NewService(store, clockwork.NewRealClock(), log.Named("svc.reporting")),
		logger:  log,
	}, nil
}

func (a *app) Close() error {
	_ = a.logger.Sync()
	return a.store.Close()
}

// withApp opens the database for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return fn(ctx, a)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
