// Package server initializes and runs the feed server: storage, migrations,
// the redis-backed fan-out hub, and the HTTP/websocket endpoint, with
// graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/groupfeed/internal/logging"
	"github.com/dmitrijs2005/groupfeed/internal/server/config"
	"github.com/dmitrijs2005/groupfeed/internal/server/httpapi"
	"github.com/dmitrijs2005/groupfeed/internal/server/hub"
	"github.com/dmitrijs2005/groupfeed/internal/server/repositories/messages"
)

type App struct {
	config *config.Config
	logger logging.Logger

	db  *sql.DB
	rdb *redis.Client
	hub *hub.Hub
	api *httpapi.API
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := messages.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}

	repo := messages.NewPostgresRepository(db)

	// The hub loads snapshot frames through the API's encoder, and the API
	// notifies through the hub; wire the cycle up front.
	var api *httpapi.API
	h := hub.New(rdb, func(ctx context.Context, room string) ([]byte, error) {
		return api.SnapshotFrame(ctx, room)
	}, logger)
	api = httpapi.New(repo, h, logger, httpapi.NewMetrics(prometheus.DefaultRegisterer))

	return &App{config: c, logger: logger, db: db, rdb: rdb, hub: h, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	go func() {
		if err := app.hub.Run(ctx); err != nil && ctx.Err() == nil {
			app.logger.Error(ctx, "hub stopped", "error", err)
			cancelFunc()
		}
	}()

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.api.Routes(),
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
	}

	_ = app.rdb.Close()
	_ = app.db.Close()
}
