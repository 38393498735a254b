package main

import (
	"context"
	"errors"
	"os"
	"time"

	"hypotheek/internal/amqp"
	"hypotheek/internal/backend"
	"hypotheek/internal/cli"
	"hypotheek/internal/log"
	"hypotheek/internal/services"
	"hypotheek/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting hypotheek-worker", log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid cache backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize cache backend", log.FieldError, err)
		os.Exit(1)
	}
	defer res.Cleanup()

	client, err := amqp.NewClient(amqp.Config{
		URL:          cfg.AMQPURL,
		Exchange:     cfg.AMQPExchange,
		RequestQueue: cfg.AMQPRequestQueue,
		ResultQueue:  cfg.AMQPResultQueue,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	go watchConnection(ctx, client, logger)

	svc := services.NewMortgageService(res.Cache, services.WithLogger(logger))
	calcWorker := worker.NewCalculationWorker(svc, client)

	err = client.ConsumeRequests(ctx, calcWorker.HandleRequest)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}

// watchConnection reports broker outages while the consumer reconnects.
func watchConnection(ctx context.Context, client *amqp.Client, logger *log.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := client.Healthy()
			if now != healthy {
				if now {
					logger.Info("AMQP connection restored")
				} else {
					logger.Warn("AMQP connection lost, consumer is reconnecting")
				}
			}
			healthy = now
		}
	}
}
