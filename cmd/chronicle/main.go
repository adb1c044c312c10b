// Package main is the chronicle server entrypoint: it wires configuration,
// the database pool, migrations, services, and the HTTP API together.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chroniclehq/chronicle/internal/api"
	"github.com/chroniclehq/chronicle/internal/config"
	"github.com/chroniclehq/chronicle/internal/db"
	"github.com/chroniclehq/chronicle/internal/db/migrations"
	"github.com/chroniclehq/chronicle/internal/dbpool"
	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/service"
	"github.com/chroniclehq/chronicle/internal/store"
	"github.com/chroniclehq/chronicle/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	level, err := logrus.ParseLevel(cfg.ParseLogLevel())
	if err == nil {
		log.SetLevel(level)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	base := store.Base{Pool: pool, Log: log}
	transactions := store.NewTransactionStore(base)
	snapshots := store.NewSnapshotStore(base)
	audit := store.NewAuditStore(base)

	registry := models.DefaultRegistry()
	ledger := service.NewLedgerService(transactions, hub, log)
	engine := service.NewEngineService(ledger, snapshots, audit, registry, hub, log)
	auditQuery := service.NewAuditService(audit, ledger, log)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Hub:         hub,
		Ledger:      ledger,
		Engine:      engine,
		Audit:       auditQuery,
		Entities:    snapshots,
		Registry:    registry,
		CORSOrigins: cfg.CORSOrigins,
		AdminToken:  cfg.AdminToken.Value(),
		Version:     config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"version": config.Version,
		}).Info("chronicle listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}

	hub.Shutdown()

	return nil
}
