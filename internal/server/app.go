// Package server initializes and runs the Shelfmark server: it opens the
// database, applies migrations, wires services to the HTTP API, starts the
// metrics sidecar, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dkravtsov/shelfmark/internal/logging"
	"github.com/dkravtsov/shelfmark/internal/server/config"
	"github.com/dkravtsov/shelfmark/internal/server/httpapi"
	"github.com/dkravtsov/shelfmark/internal/server/obs"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/repomanager"
	"github.com/dkravtsov/shelfmark/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	api     *httpapi.Server
	metrics *obs.Metrics
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	metrics := obs.NewMetrics(prometheus.DefaultRegisterer)
	signer := services.NewS3Presigner(cfg)
	userService := services.NewUserService(db, rm, cfg)
	linkService := services.NewSharedLinkService(db, rm, cfg, signer)

	api := httpapi.NewServer(userService, linkService, cfg, logger, metrics)

	return &App{config: cfg, logger: logger, db: db, api: api, metrics: metrics}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:    app.config.HTTPAddr,
		Handler: app.api.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http listening", "addr", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	metricsServer := obs.BootstrapMetricsServer(app.config.MetricsAddr, app.db.PingContext, app.logger)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "metrics shutdown error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err)
	}

	app.logger.Info(shutdownCtx, "app stopped")
}
