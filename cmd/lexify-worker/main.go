package main

import (
	"context"
	"os"
	"time"

	"lexify/internal/amqp"
	"lexify/internal/backend"
	"lexify/internal/cli"
	"lexify/internal/log"
	"lexify/internal/middleware/trace"
	"lexify/internal/worker"
)

func main() {
	// Load .env file for local development
	if err := cli.LoadEnvFile(); err != nil {
		log.Default().Error("Failed to load env file", log.FieldError, err)
		os.Exit(1)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.Default().Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger, err := cli.SetupLogger(cfg.LogLevel, nil)
	if err != nil {
		log.Default().Error("Invalid log level", log.FieldError, err)
		os.Exit(1)
	}
	logger = logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting lexify-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := cli.InitSQLite(logger, cfg)
	if err != nil {
		os.Exit(1)
	}
	defer repo.Close()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	mirror, err := backend.NewFactory(logger).CreateMirror(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize mirror", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, mirror, bcfg.SheetNames, logger)

	parent, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx, done := cli.GracefulShutdown(parent, logger, 30*time.Second, nil)

	// On startup, mirror everything that might have been missed while down.
	logger.Info("Performing startup resync...")
	if _, err := syncWorker.Resync(ctx); err != nil {
		logger.Error("Startup resync failed", log.FieldError, err)
	}

	go func() {
		ticker := time.NewTicker(cfg.ResyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := syncWorker.Resync(ctx); err != nil && !cli.IsCancelled(err) {
					logger.Error("Periodic resync failed", log.FieldError, err)
				}
			}
		}
	}()

	tracer := trace.NewMiddleware(logger)
	if err := amqpClient.ConsumeChanges(ctx, tracer.Wrap(syncWorker.HandleChange)); err != nil && !cli.IsCancelled(err) {
		logger.Error("Message consumption failed", log.FieldError, err)
	}
	cancel()

	m := tracer.GetMetrics()
	logger.Info("Change consumption finished",
		"messages", m.TotalMessages,
		"failed", m.FailedMessages)

	<-done
	logger.Info("Worker stopped")
}
