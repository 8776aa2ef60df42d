package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// InMemoryEngine is a thread-safe fake for testing.
// It stores documents in a map: store[collection][documentID] = document,
// and keeps its own alias table so alias-based reads and writes behave
// like the real engine.
type InMemoryEngine struct {
	mu      sync.RWMutex
	store   map[string]map[string]any
	aliases map[string]string
}

func NewInMemoryEngine() *InMemoryEngine {
	return &InMemoryEngine{
		store:   make(map[string]map[string]any),
		aliases: make(map[string]string),
	}
}

// resolve follows an alias to its physical collection. Callers must
// hold at least a read lock.
func (e *InMemoryEngine) resolve(name string) string {
	if target, ok := e.aliases[name]; ok {
		return target
	}
	return name
}

func (e *InMemoryEngine) Upsert(ctx context.Context, collection string, document any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.upsertLocked(collection, document)
}

func (e *InMemoryEngine) upsertLocked(collection string, document any) error {
	name := e.resolve(collection)
	if e.store[name] == nil {
		return fmt.Errorf("in-memory upsert: collection %q does not exist", name)
	}

	id, err := extractID(document)
	if err != nil {
		return fmt.Errorf("in-memory upsert failed: %w", err)
	}

	e.store[name][id] = document
	return nil
}

func (e *InMemoryEngine) Delete(ctx context.Context, collection string, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if bucket, exists := e.store[e.resolve(collection)]; exists {
		delete(bucket, id)
	}
	// Real engines don't error deleting a non-existent ID.
	return nil
}

func (e *InMemoryEngine) BulkUpsert(ctx context.Context, collection string, documents []any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, doc := range documents {
		if err := e.upsertLocked(collection, doc); err != nil {
			return err
		}
	}
	return nil
}

func (e *InMemoryEngine) BulkDelete(ctx context.Context, collection string, ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	bucket, exists := e.store[e.resolve(collection)]
	if !exists {
		return nil
	}
	for _, id := range ids {
		delete(bucket, id)
	}
	return nil
}

func (e *InMemoryEngine) CreateCollection(ctx context.Context, name string, schema *Schema) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.store[name]; exists {
		return fmt.Errorf("in-memory create: collection %q already exists", name)
	}
	e.store[name] = make(map[string]any)
	return nil
}

func (e *InMemoryEngine) DropCollection(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.store, name)
	return nil
}

func (e *InMemoryEngine) UpsertAlias(ctx context.Context, alias string, collection string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aliases[alias] = collection
	return nil
}

func (e *InMemoryEngine) ResolveAlias(ctx context.Context, alias string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	target, ok := e.aliases[alias]
	if !ok {
		return "", ErrAliasNotFound
	}
	return target, nil
}

func (e *InMemoryEngine) AliasExists(ctx context.Context, alias string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.aliases[alias]
	return ok, nil
}

func (e *InMemoryEngine) Get(ctx context.Context, collection string, id string) (any, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if bucket, exists := e.store[e.resolve(collection)]; exists {
		doc, found := bucket[id]
		return doc, found, nil
	}
	return nil, false, nil
}

func (e *InMemoryEngine) Count(ctx context.Context, collection string) (int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if bucket, exists := e.store[e.resolve(collection)]; exists {
		return int64(len(bucket)), nil
	}
	return 0, nil
}

func (e *InMemoryEngine) HealthCheck(ctx context.Context) error {
	// Always healthy
	return nil
}

func (e *InMemoryEngine) Close() error {
	return nil
}

// --- Test helper methods (not part of the Engine interface) ---

// Collections lists the physical collection names, for test inspection.
func (e *InMemoryEngine) Collections() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	return names
}

// Clear resets the storage (useful for `defer cleanup()`)
func (e *InMemoryEngine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store = make(map[string]map[string]any)
	e.aliases = make(map[string]string)
}

// extractID pulls the document ID out of a map or, via a JSON
// round-trip, out of a struct. Inefficient but fine for tests.
func extractID(doc any) (string, error) {
	if m, ok := doc.(map[string]any); ok {
		if idVal, ok := m["id"]; ok {
			return fmt.Sprintf("%v", idVal), nil
		}
		return "", errors.New("document missing 'id' field")
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return "", errors.New("cannot marshal document")
	}

	var tempMap map[string]any
	if err := json.Unmarshal(b, &tempMap); err != nil {
		return "", errors.New("cannot unmarshal document to map")
	}

	if idVal, ok := tempMap["id"]; ok {
		return fmt.Sprintf("%v", idVal), nil
	}
	return "", errors.New("document missing 'id' field")
}
