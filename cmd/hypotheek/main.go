package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"hypotheek/internal/backend"
	"hypotheek/internal/cli"
	apphttp "hypotheek/internal/http"
	"hypotheek/internal/log"
	"hypotheek/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, logger := cli.LoadAndValidateConfig()
	logger.Info("Starting hypotheek server", log.FieldOperation, log.OpStartup)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid cache backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize cache backend", log.FieldError, err, "backend", cfg.CacheBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Cache backend cleanup failed", log.FieldError, err)
		}
	}()

	svc := services.NewMortgageService(res.Cache, services.WithLogger(logger))

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger: logger,
		Defaults: apphttp.DefaultParams{
			Amount: cfg.DefaultAmount,
			Rate:   cfg.DefaultRate,
			Months: cfg.DefaultMonths,
		},
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              res.Ready,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "port", cfg.Port, "backend", cfg.CacheBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
