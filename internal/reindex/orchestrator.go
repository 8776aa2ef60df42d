package reindex

import (
	"context"
	"errors"
	"log/slog"

	"searchsync/internal/binder"
	"searchsync/internal/metrics"
	"searchsync/internal/search"
	"searchsync/internal/syncing"
)

const defaultBatchSize = 500

// Source streams records out of the primary store in bounded batches.
// FetchBatch returns up to limit records with primary keys strictly
// greater than afterKey, in key order; an empty slice ends the stream.
type Source interface {
	FetchBatch(ctx context.Context, afterKey string, limit int) ([]binder.Record, error)
}

// Orchestrator performs the zero-downtime full rebuild:
//
//	create collection -> bind write alias -> populate -> bind read alias
//
// Writers observe the new collection as soon as the write alias moves;
// readers only after the final bind. A failure at any step leaves the
// aliases in their last successful state and surfaces the error — no
// rollback, and the previously live collection is never deleted here.
type Orchestrator struct {
	binding   binder.Binding
	engine    search.Engine
	aliases   *search.AliasManager
	source    Source
	schema    *search.Schema
	batchSize int
	logger    *slog.Logger
}

func NewOrchestrator(binding binder.Binding, engine search.Engine, source Source, schema *search.Schema, batchSize int, logger *slog.Logger) *Orchestrator {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Orchestrator{
		binding:   binding,
		engine:    engine,
		aliases:   search.NewAliasManager(engine),
		source:    source,
		schema:    schema,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Rebuild runs the full protocol and returns the new collection name.
func (o *Orchestrator) Rebuild(ctx context.Context) (string, error) {
	name, err := o.rebuild(ctx)
	if err != nil {
		metrics.RebuildsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.RebuildsTotal.WithLabelValues("ok").Inc()
	return name, nil
}

func (o *Orchestrator) rebuild(ctx context.Context) (string, error) {
	collection, err := o.aliases.CreateCollection(ctx, o.binding.BaseName, o.schema)
	if err != nil {
		return "", err
	}
	o.logger.Info("Created new collection", "collection", collection)

	// Writes cut over first. Reads keep hitting the old collection
	// through the untouched read alias while this one fills up.
	if err := o.aliases.Bind(ctx, collection, o.binding.WriteAlias()); err != nil {
		return "", err
	}
	o.logger.Info("Write alias bound", "alias", o.binding.WriteAlias(), "collection", collection)

	if err := o.populate(ctx); err != nil {
		return "", err
	}

	// Remember what the read alias pointed at: that collection is
	// orphaned by the swap and left in place for rollback.
	previous, err := o.aliases.Resolve(ctx, o.binding.ReadAlias())
	if err != nil && !errors.Is(err, search.ErrAliasNotFound) {
		return "", err
	}

	if err := o.aliases.Bind(ctx, collection, o.binding.ReadAlias()); err != nil {
		return "", err
	}

	if previous != "" {
		o.logger.Info("Read alias cut over", "alias", o.binding.ReadAlias(),
			"collection", collection, "orphaned", previous)
	} else {
		o.logger.Info("Read alias bound", "alias", o.binding.ReadAlias(), "collection", collection)
	}
	return collection, nil
}

// populate streams every record through the document builder into
// bulk-index calls against the write alias. The batch size bounds
// memory, not parallelism: batches run one at a time, and the first
// failure aborts the whole rebuild.
func (o *Orchestrator) populate(ctx context.Context) error {
	var (
		afterKey string
		total    int
	)

	for {
		batch, err := o.source.FetchBatch(ctx, afterKey, o.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		docs, err := o.binding.BuildDocuments(batch)
		if err != nil {
			return err
		}

		if err := o.engine.BulkUpsert(ctx, o.binding.WriteAlias(), docs); err != nil {
			return &syncing.BulkError{Op: "index", Err: err}
		}

		total += len(batch)
		afterKey = batch[len(batch)-1].PrimaryKey()
		metrics.ReindexBatchesTotal.Inc()
		metrics.ReindexDocumentsTotal.Add(float64(len(batch)))
		o.logger.Info("Indexed batch", "size", len(batch), "total", total)

		if len(batch) < o.batchSize {
			break
		}
	}

	o.logger.Info("Population complete", "total", total)
	return nil
}
