package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"searchsync/internal/catalog"
	"searchsync/internal/events"
	"searchsync/internal/metrics"
	"searchsync/internal/search"
	"searchsync/internal/syncing"
)

type Config struct {
	Env          string
	Port         string
	DatabaseURL  string
	NatsURL      string
	TypesenseURL string
	TypesenseKey string
	EventsConfig *events.EventConfig
}

func main() {
	handler := slog.NewJSONHandler(os.Stdout, nil)
	logger := slog.New(handler)
	slog.SetDefault(logger) // Set global logger

	if err := run(logger); err != nil {
		slog.Error("Application terminated with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connection settings are required up front: a missing block is a
	// configuration error raised before any indexing call is attempted.
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("Starting search sync worker", "env", cfg.Env)

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping db: %w", err)
	}

	bus, err := events.NewNATSBus(cfg.NatsURL, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to nats: %w", err)
	}

	engine := search.NewTypesense(cfg.TypesenseKey, cfg.TypesenseURL)
	store := catalog.NewProductStore(dbPool)
	svc := syncing.NewService(catalog.Binding, engine, store, logger)

	metrics.Register()

	reader := events.NewEventReader(bus, cfg.EventsConfig, logger)

	// Post-commit hooks: the publishing side has already committed the
	// row by the time these fire.
	err = reader.SubscribeToRecordSaved(func(evt events.RecordSavedEvent) error {
		return svc.SyncByKey(context.Background(), evt.Key)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to saved events: %w", err)
	}

	err = reader.SubscribeToRecordDeleted(func(evt events.RecordDeletedEvent) error {
		return svc.RemoveByKey(context.Background(), evt.Key)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to deleted events: %w", err)
	}

	logger.Info("Worker is running and listening for events...")

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler(dbPool, engine))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("Shutting down worker...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health server shutdown error", "error", err)
	}

	// Drain NATS first so in-flight messages finish indexing before
	// the database pool goes away.
	if err := bus.Close(); err != nil {
		logger.Error("NATS drain error", "error", err)
	}

	dbPool.Close()

	logger.Info("Shutdown complete.")
	return nil
}

func loadConfig() (Config, error) {
	// Helper to get env with fallback
	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Env:          get("SEARCHSYNC_ENV", "production"),
		Port:         get("SEARCHSYNC_PORT", "8081"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		NatsURL:      os.Getenv("NATS_URL"),
		TypesenseURL: os.Getenv("TYPESENSE_URL"),
		TypesenseKey: os.Getenv("TYPESENSE_API_KEY"),
		EventsConfig: events.NewEventConfig(),
	}

	for name, value := range map[string]string{
		"DATABASE_URL":      cfg.DatabaseURL,
		"NATS_URL":          cfg.NatsURL,
		"TYPESENSE_URL":     cfg.TypesenseURL,
		"TYPESENSE_API_KEY": cfg.TypesenseKey,
	} {
		if value == "" {
			return Config{}, fmt.Errorf("configuration: %s must be set", name)
		}
	}
	return cfg, nil
}

// healthHandler provides a simple /healthz endpoint checking DB and
// the search engine.
func healthHandler(db *pgxpool.Pool, engine search.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}

		if err := engine.HealthCheck(ctx); err != nil {
			http.Error(w, "Search engine unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
