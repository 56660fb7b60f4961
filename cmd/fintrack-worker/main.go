package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().With(applog.FieldComponent, applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting fintrack-worker")

	if cfg.AMQPURL == "" {
		logger.Info("No AMQP_URL provided - nothing to consume, exiting")
		return
	}

	amqpClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	auditLog, err := os.OpenFile(cfg.AuditLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("Failed to open audit log", "error", err, "path", cfg.AuditLogPath)
		os.Exit(1)
	}
	defer auditLog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := func(ev *events.RecordEvent) error {
		line := fmt.Sprintf("%s %s %s\n", ev.Timestamp.UTC().Format(time.RFC3339), ev.Op, ev.RecordID)
		if _, err := auditLog.WriteString(line); err != nil {
			return fmt.Errorf("append audit line: %w", err)
		}
		logger.Info("Record event recorded", applog.FieldOp, ev.Op, applog.FieldRecordID, ev.RecordID)
		return nil
	}

	logger.Info("Consuming record events", "queue", cfg.AMQPQueue, "audit_log", cfg.AuditLogPath)
	if err := amqpClient.ConsumeRecordEvents(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
