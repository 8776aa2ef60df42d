package syncing

import (
	"context"
	"errors"
	"log/slog"

	"searchsync/internal/binder"
	"searchsync/internal/metrics"
	"searchsync/internal/search"
)

// ErrNotFound is returned by Store.GetByKey when the record does not
// exist in the primary store.
var ErrNotFound = errors.New("sync: record not found")

// Store is the primary-datastore side of the sync. Implementations
// own their transaction boundary; the search-engine write happens
// strictly after the store call returns.
type Store interface {
	Save(ctx context.Context, rec binder.Record) error
	Delete(ctx context.Context, key string) error
	GetByKey(ctx context.Context, key string) (binder.Record, error)
}

// Service keeps one record type's documents in step with its rows.
//
// Ordering: the primary store is written first, the search engine
// second. On partial failure the primary store wins and the caller
// gets a typed sync error; nothing is rolled back.
type Service struct {
	binding binder.Binding
	engine  search.Engine
	store   Store
	logger  *slog.Logger
}

func NewService(binding binder.Binding, engine search.Engine, store Store, logger *slog.Logger) *Service {
	return &Service{
		binding: binding,
		engine:  engine,
		store:   store,
		logger:  logger,
	}
}

// Save persists the record, then indexes its document under the write
// alias. A store failure surfaces as-is and nothing is indexed; an
// engine failure surfaces as *SaveError with the row already committed.
func (s *Service) Save(ctx context.Context, rec binder.Record) error {
	if err := s.store.Save(ctx, rec); err != nil {
		return err
	}
	return s.indexRecord(ctx, rec)
}

// Delete captures the primary key, deletes the row, then removes the
// document. A removal failure surfaces as *DeleteError; the deleted
// row is not restored.
func (s *Service) Delete(ctx context.Context, rec binder.Record) error {
	key := rec.PrimaryKey()

	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	return s.removeDocument(ctx, key)
}

// SyncByKey loads a record from the primary store and indexes it.
// This is the event-driven path: a key whose row no longer exists is
// logged and skipped, not an error, so the event can be acknowledged.
func (s *Service) SyncByKey(ctx context.Context, key string) error {
	rec, err := s.store.GetByKey(ctx, key)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("Record not found in primary store (might be deleted), skipping index", "key", key)
		return nil
	}
	if err != nil {
		s.logger.Error("Failed to fetch record from primary store", "error", err, "key", key)
		return err
	}

	return s.indexRecord(ctx, rec)
}

// RemoveByKey removes a document by primary key without touching the
// primary store. This is the event-driven delete path.
func (s *Service) RemoveByKey(ctx context.Context, key string) error {
	return s.removeDocument(ctx, key)
}

// ReindexAll builds one document per record and submits them as a
// single bulk-index request against the write alias.
func (s *Service) ReindexAll(ctx context.Context, recs []binder.Record) error {
	docs, err := s.binding.BuildDocuments(recs)
	if err != nil {
		return err
	}

	if err := s.engine.BulkUpsert(ctx, s.binding.WriteAlias(), docs); err != nil {
		metrics.SyncOpsTotal.WithLabelValues("bulk_index", "error").Inc()
		return &BulkError{Op: "index", Err: err}
	}
	metrics.SyncOpsTotal.WithLabelValues("bulk_index", "ok").Inc()
	return nil
}

// DeleteAllFromIndex removes every record's document in a single
// bulk-delete request keyed by primary key.
func (s *Service) DeleteAllFromIndex(ctx context.Context, recs []binder.Record) error {
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.PrimaryKey())
	}

	if err := s.engine.BulkDelete(ctx, s.binding.WriteAlias(), ids); err != nil {
		metrics.SyncOpsTotal.WithLabelValues("bulk_delete", "error").Inc()
		return &BulkError{Op: "delete", Err: err}
	}
	metrics.SyncOpsTotal.WithLabelValues("bulk_delete", "ok").Inc()
	return nil
}

func (s *Service) indexRecord(ctx context.Context, rec binder.Record) error {
	// Builder errors (missing field, bad cast) fire before any
	// network call and pass through untyped by this layer.
	doc, err := s.binding.BuildDocument(rec)
	if err != nil {
		return err
	}

	if err := s.engine.Upsert(ctx, s.binding.WriteAlias(), doc); err != nil {
		metrics.SyncOpsTotal.WithLabelValues("save", "error").Inc()
		s.logger.Error("Failed to upsert document", "error", err, "key", rec.PrimaryKey())
		return &SaveError{Key: rec.PrimaryKey(), Err: err}
	}
	metrics.SyncOpsTotal.WithLabelValues("save", "ok").Inc()
	return nil
}

func (s *Service) removeDocument(ctx context.Context, key string) error {
	if err := s.engine.Delete(ctx, s.binding.WriteAlias(), key); err != nil {
		metrics.SyncOpsTotal.WithLabelValues("delete", "error").Inc()
		s.logger.Error("Failed to delete document", "error", err, "key", key)
		return &DeleteError{Key: key, Err: err}
	}
	metrics.SyncOpsTotal.WithLabelValues("delete", "ok").Inc()
	return nil
}
