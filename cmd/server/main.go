package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/twhispers/twhispers/internal/config"
	"github.com/twhispers/twhispers/internal/db"
	routes "github.com/twhispers/twhispers/internal/http"
	"github.com/twhispers/twhispers/internal/logging"
	"github.com/twhispers/twhispers/internal/metrics"
	"github.com/twhispers/twhispers/internal/ws"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// run returns only after the database and logger have been released.
func run() error {
	// Variables already present in the environment win over the file.
	foundDotEnv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.IsDevEnvironment())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if !foundDotEnv {
		logger.Info("no .env file found, reading from environment")
	}

	database, err := db.Open(cfg.DB, logger)
	if err != nil {
		logger.Errorw("failed to initialize database", "error", err)
		return err
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Errorw("failed to close database", "error", err)
		}
	}()

	if err := db.EnsureSchema(database); err != nil {
		logger.Errorw("failed to ensure schema", "error", err)
		return err
	}
	logger.Info("schema ready")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if !cfg.App.IsDevEnvironment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	env := routes.NewEnv(database, hub, metrics.New(registry), logger)
	routes.SetupRoutes(router, env, registry)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Infow("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err := <-listenErr:
		logger.Errorw("listen failed", "error", err)
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("server forced to shutdown", "error", err)
	}

	logger.Info("server exiting")
	return nil
}
