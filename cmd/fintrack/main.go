package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cli"
	"fintrack/internal/events"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/settings"
	"fintrack/internal/storage"
	"fintrack/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().With(applog.FieldComponent, applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	kv := cli.OpenKV(logger, cfg.SQLiteDBPath)
	defer kv.Close()

	recordStore, err := store.Open(context.Background(), storage.NewRecordStore(kv))
	if err != nil {
		logger.Error("Failed to open record store", "error", err)
		os.Exit(1)
	}

	// The event feed is optional. Without AMQP_URL mutations are still
	// durable, they just produce no change events.
	var eventsClient *events.Client
	if cfg.AMQPURL != "" {
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		logger.Info("Record event publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("Record event publishing disabled - no AMQP_URL provided")
	}

	recordService := services.NewRecordService(recordStore, eventsClient)
	defer recordService.Close()

	settingsService := settings.NewService(kv)

	srv := apphttp.NewServer(":"+cfg.Port, recordService, settingsService, cfg.SummaryWindowDays, cfg.SummaryCacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting fintrack server", "port", cfg.Port, "records", recordStore.Count())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return srv.Janitor(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
