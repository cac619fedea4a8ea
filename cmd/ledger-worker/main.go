package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/export/sheets"
	"ledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting ledger-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	exporter, err := sheets.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Sheets exporter", "error", err)
		os.Exit(1)
	}

	exportWorker := worker.NewExportWorker(repo, exporter, cfg.ExportBatchSize)

	// Catch up on anything persisted while the worker was down.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), time.Minute)
	if n, err := exportWorker.SweepPending(startupCtx); err != nil {
		logger.Error("Startup sweep failed", "error", err)
	} else if n > 0 {
		logger.Info("Startup sweep exported records", "count", n)
	}
	startupCancel()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)

	// AMQP consumption is optional: without a broker the periodic sweep
	// still drains the pending queue.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeRecordEvents(gctx, func(ev *amqp.RecordEvent) error {
				return exportWorker.HandleEvent(gctx, ev)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic sweep only")
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n, err := exportWorker.SweepPending(gctx); err != nil {
					logger.Error("Periodic sweep failed", "error", err)
				} else if n > 0 {
					logger.Info("Periodic sweep exported records", "count", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
