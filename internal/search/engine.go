package search

import (
	"context"
	"errors"
)

// ErrAliasNotFound is returned when an alias resolves to nothing.
var ErrAliasNotFound = errors.New("search: alias not found")

// Field describes one attribute of a collection schema.
type Field struct {
	Name  string
	Type  string
	Facet bool
	Sort  bool
}

// Schema is the settings body supplied at collection creation. A zero
// Schema asks the engine to infer field types from documents.
type Schema struct {
	Fields              []Field
	DefaultSortingField string
}

// Engine defines the contract for the search engine we sync into.
// This keeps the sync and reindex layers testable against an in-memory
// fake, and leaves room to swap Typesense out later.
//
// Collection arguments accept alias names everywhere the engine does;
// the document operations are expected to be used through aliases.
type Engine interface {
	// Upsert adds or replaces one document. The document must carry
	// an "id" field.
	Upsert(ctx context.Context, collection string, document any) error

	// Delete removes a document by ID. Deleting an absent ID is not
	// an error.
	Delete(ctx context.Context, collection string, id string) error

	// BulkUpsert submits one request carrying many upserts. Any
	// rejected item fails the whole call.
	BulkUpsert(ctx context.Context, collection string, documents []any) error

	// BulkDelete removes many documents by ID in one request.
	BulkDelete(ctx context.Context, collection string, ids []string) error

	// CreateCollection creates a physical collection. nil schema
	// creates it with automatic field detection.
	CreateCollection(ctx context.Context, name string, schema *Schema) error

	// DropCollection removes a physical collection and its documents.
	DropCollection(ctx context.Context, name string) error

	// UpsertAlias atomically points alias at collection, detaching it
	// from whatever it pointed at before. There is no window where the
	// alias resolves to nothing.
	UpsertAlias(ctx context.Context, alias string, collection string) error

	// ResolveAlias returns the collection an alias points at, or
	// ErrAliasNotFound.
	ResolveAlias(ctx context.Context, alias string) (string, error)

	// AliasExists reports whether an alias is defined.
	AliasExists(ctx context.Context, alias string) (bool, error)

	// Get retrieves a document by ID, with a found flag.
	Get(ctx context.Context, collection string, id string) (any, bool, error)

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int64, error)

	// HealthCheck checks the health of the engine.
	HealthCheck(ctx context.Context) error

	// Close cleans up any resources held by the engine.
	Close() error
}
