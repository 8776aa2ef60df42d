// Command reindex runs one full alias-swap rebuild of the product
// index: create a fresh collection, repoint the write alias, stream
// every row through the document builder in batches, then cut the read
// alias over. The previously live collection is left in place for
// manual rollback or cleanup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"searchsync/internal/catalog"
	"searchsync/internal/metrics"
	"searchsync/internal/reindex"
	"searchsync/internal/search"
)

func main() {
	handler := slog.NewJSONHandler(os.Stdout, nil)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		slog.Error("Reindex failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	batchSize := flag.Int("batch", 500, "records per bulk-index request")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	tsURL := os.Getenv("TYPESENSE_URL")
	tsKey := os.Getenv("TYPESENSE_API_KEY")
	for name, value := range map[string]string{
		"DATABASE_URL":      dbURL,
		"TYPESENSE_URL":     tsURL,
		"TYPESENSE_API_KEY": tsKey,
	} {
		if value == "" {
			return fmt.Errorf("configuration: %s must be set", name)
		}
	}

	ctx := context.Background()

	dbPool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping db: %w", err)
	}

	engine := search.NewTypesense(tsKey, tsURL)
	if err := engine.HealthCheck(ctx); err != nil {
		return err
	}

	metrics.Register()

	store := catalog.NewProductStore(dbPool)
	orchestrator := reindex.NewOrchestrator(
		catalog.Binding, engine, store, catalog.SearchSchema, *batchSize, logger,
	)

	logger.Info("Rebuilding search index...", "base", catalog.Binding.BaseName, "batch", *batchSize)

	collection, err := orchestrator.Rebuild(ctx)
	if err != nil {
		return err
	}

	logger.Info("Reindex complete", "collection", collection)
	return nil
}
