package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/config"
	"github.com/buildhub-th/procure-backend/internal/bootstrap"
	"github.com/buildhub-th/procure-backend/internal/logging"
	"github.com/buildhub-th/procure-backend/internal/outbox"
	"github.com/buildhub-th/procure-backend/internal/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Environment, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	app, err := bootstrap.NewApp(logging.WithContext(ctx, logger), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close clients", zap.Error(err))
		}
	}()

	bootstrap.SetGinMode(cfg.App.Environment)
	router, err := bootstrap.BuildRouter(app)
	if err != nil {
		return err
	}

	if cfg.Outbox.Enabled {
		sched := outbox.NewScheduler(app.Dispatcher, logger)
		if err := sched.Start(cfg.Outbox.Schedule); err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		// open event streams outlive the grace period
		logger.Warn("graceful shutdown timed out, closing connections", zap.Error(err))
		return srv.Close()
	}
	logger.Info("server stopped")
	return nil
}
