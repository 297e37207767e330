package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"moneta/internal/amqp"
	"moneta/internal/backend"
	"moneta/internal/cli"
	"moneta/internal/config"
	"moneta/internal/log"
	"moneta/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if err := run(logger); err != nil {
		logger.Error("Worker failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	logger.Info("Starting moneta-worker")

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return err
	}
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend is private to each process, the worker will only see its own empty storage")
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// the worker consumes notifications, it never publishes them
	bcfg.AMQPURL = ""
	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	writer, err := factory.CreateReportWriter(ctx, bcfg)
	if err != nil {
		return err
	}
	exportWorker := worker.NewExportWorker(res.KV, cfg.StorageKey, writer, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return exportWorker.Run(gctx, cfg.ExportInterval)
	})

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		g.Go(func() error {
			return client.ConsumeSnapshots(gctx, exportWorker.HandleSnapshotMessage)
		})
	} else {
		logger.Info("AMQP disabled, exporting on the interval only", "interval", cfg.ExportInterval.String())
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("Worker shutdown complete")
		return nil
	}
	return err
}
