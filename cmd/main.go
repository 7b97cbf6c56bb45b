package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"wa-bridge/api"
	"wa-bridge/internal"
	"wa-bridge/observability"
	"wa-bridge/repositories"
	"wa-bridge/runtime"
	"wa-bridge/runtime/workers"
	"wa-bridge/services"
	"wa-bridge/session"
	"wa-bridge/sink"
	"wa-bridge/storage"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wa-bridge terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run keeps every defer (badger, session store) executed before the exit code is returned.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Journal (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, log, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("journal opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	journal := repositories.NewJournalRepository(db, log, config.JournalLimit)

	// 3. Dispatch
	stats := observability.NewStats(log)
	registry := runtime.NewRegistry(log)
	webhookSink := sink.NewWebhookSink(resty.New())
	dispatcher := runtime.NewDispatcher(log, registry, webhookSink, journal, stats,
		config.BufferSize, config.MaxConcurrentDeliveries, config.DeliveryTimeout)

	// 4. Session
	var qrOut io.Writer
	if config.QRStdout {
		qrOut = os.Stdout
	}
	waSession := session.NewWhatsAppSession(log, config.SessionDB, qrOut)
	blobs := storage.NewDiskBlobStore(config.MediaDir, log)
	adapter := session.NewAdapter(log, waSession, blobs, dispatcher, stats,
		config.SessionTimeout, config.GroupNameTTL)
	adapter.Listen()

	// 5. Supervision
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(log, supervisor, dispatcher, config.NumberOfWorkers, config.DrainTimeout)
	orchestrator.Add(
		workers.NewSessionWorker(waSession, log),
		workers.NewStatsReporterWorker(log, stats, registry.Len, dispatcher.QueueDepth,
			config.StatsInterval, config.LowCapacityThreshold),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		orchestrator.Start(ctx)
	}()

	// 6. Control surface
	service := services.NewWebhookService(log, registry, adapter, journal, stats)
	if !log.Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	server := api.NewServer(log, service)
	server.Start(config.Address())

	if log.Enabled(ctx, slog.LevelDebug) {
		log.Info("Journal inspector available", "url", fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort))
		internal.StartDebugServer(log, db, config.DebugPort, "/inspect", repositories.JournalPrefix,
			internal.JournalMapper, func() map[string]any { return statsMap(service.Stats()) })
	}

	// 7. Wait for a signal
	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Warn("Control surface shutdown", "error", err)
	}
	adapter.Wait()
	orchestrator.Stop()
	<-done
	log.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, log *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.JournalPath)
	if log.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

func statsMap(s observability.Snapshot) map[string]any {
	return map[string]any{
		"events":      s.EventsReceived,
		"delivered":   s.DeliveriesOK,
		"failed":      s.DeliveriesFailed,
		"overflows":   s.QueueOverflows,
		"dropped":     s.EventsDropped,
		"subscribers": s.Subscribers,
		"goroutines":  s.Goroutines,
		"rss_mb":      s.RssMb,
	}
}
