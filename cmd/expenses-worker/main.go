package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expenses/internal/amqp"
	"expenses/internal/cli"
	"expenses/internal/config"
	"expenses/internal/log"
	gsheet "expenses/internal/sheets/google"
	"expenses/internal/storage"
	"expenses/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, logger := cli.LoadAndValidateConfig(os.Stdout, (*config.Config).ValidateWorker)
	logger.Info("Starting expenses-worker", log.FieldOperation, log.OpStartup)

	ledger, err := storage.OpenLedger(cfg.LedgerDBPath, logger.WithComponent(log.ComponentLedger))
	if err != nil {
		logger.Error("Failed to open mirror ledger", log.FieldError, err, log.FieldPath, cfg.LedgerDBPath)
		os.Exit(1)
	}
	defer ledger.Close()

	ctx, cancel := cli.GracefulShutdown(logger, 30*time.Second, nil)
	defer cancel()

	if n, err := ledger.Count(ctx); err == nil {
		logger.Info("Mirror ledger ready", log.FieldPath, cfg.LedgerDBPath, "mirrored_total", n)
	}

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	}, logger.WithComponent(log.ComponentSheets))
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(sheetsClient, ledger, logger.WithComponent(log.ComponentWorker))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeExpenseRecorded(gctx, cfg.MirrorRetryDelay, mirror.HandleExpenseRecorded)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker...", log.FieldOperation, log.OpShutdown)
		return nil
	})

	err = g.Wait()
	mirrored, skipped := mirror.Stats()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err,
			"mirrored", mirrored, "skipped", skipped)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", "mirrored", mirrored, "skipped", skipped)
}
