package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/config"
	"github.com/mamadbah2/fms/internal/repository/mongodb"
	"github.com/mamadbah2/fms/internal/repository/sheets"
	"github.com/mamadbah2/fms/internal/repository/sqlstore"
	"github.com/mamadbah2/fms/internal/scheduler"
	"github.com/mamadbah2/fms/internal/server/handlers"
	"github.com/mamadbah2/fms/internal/server/router"
	farmsvc "github.com/mamadbah2/fms/internal/service/farm"
	reportingsvc "github.com/mamadbah2/fms/internal/service/reporting"
	"github.com/mamadbah2/fms/internal/service/simulation"
	whatsappsvc "github.com/mamadbah2/fms/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/fms/pkg/clients/whatsapp"
	"github.com/mamadbah2/fms/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := sqlstore.Open(cfg.Database.Path, baseLogger.Named("repo.sqlstore"))
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close database", zap.Error(err))
		}
	}()

	if err := store.Bootstrap(context.Background(), cfg.Simulation.StartDate, cfg.Database.Seed); err != nil {
		baseLogger.Fatal("failed to bootstrap database", zap.Error(err))
	}

	reportingSvc := reportingsvc.NewService(store, clockwork.NewRealClock(), baseLogger.Named("svc.reporting"))
	farmSvc := farmsvc.NewService(store, baseLogger.Named("svc.farm"))
	simSvc := simulation.NewService(store, baseLogger.Named("svc.simulation"))

	var observers []simulation.Observer
	var archive handlers.ReportArchive
	var history handlers.PastureHistory

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		observers = append(observers, mongoRepo)
		archive = mongoRepo
		baseLogger.Info("pasture report archive enabled")
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		ledger := sheets.NewLedger(sheetsRepo, baseLogger.Named("repo.ledger"))
		observers = append(observers, ledger)
		history = ledger
		baseLogger.Info("pasture ledger enabled")
	}

	var whatsClient whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp notifications enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, notifications disabled")
	}
	messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, reportingSvc, baseLogger.Named("svc.whatsapp"))
	if whatsClient != nil {
		observers = append(observers, messagingSvc)
	}

	simSvc.Observe(reportingSvc, observers...)

	engine := router.New(router.Handlers{
		Farm:    handlers.NewFarmHandler(farmSvc, simSvc, reportingSvc, baseLogger.Named("handlers.farm")),
		Archive: handlers.NewArchiveHandler(archive, history, baseLogger.Named("handlers.archive")),
		Notify:  handlers.NewNotifyHandler(messagingSvc, baseLogger.Named("handlers.notify")),
	}, baseLogger.Named("router"))

	var summary scheduler.SummarySender
	if whatsClient != nil {
		summary = messagingSvc
	}
	sched := scheduler.NewScheduler(*cfg, simSvc, summary, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
