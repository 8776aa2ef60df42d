package reindex_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchsync/internal/binder"
	"searchsync/internal/reindex"
	"searchsync/internal/search"
	"searchsync/internal/syncing"
)

// --- Fixtures ---

type record struct {
	id   string
	name string
}

func (r record) PrimaryKey() string { return r.id }

func (r record) Field(name string) (any, bool) {
	if name == "name" {
		return r.name, true
	}
	return nil, false
}

var testBinding = binder.Binding{BaseName: "products", Fields: []string{"name"}}

// sliceSource pages over an ordered record slice with keyset
// semantics, like the Postgres source does. onFetch, when set, runs
// before each page is returned — tests use it to observe mid-populate
// state.
type sliceSource struct {
	recs    []record
	fetches int
	onFetch func()
}

func (s *sliceSource) FetchBatch(ctx context.Context, afterKey string, limit int) ([]binder.Record, error) {
	s.fetches++
	if s.onFetch != nil {
		s.onFetch()
	}

	var batch []binder.Record
	for _, r := range s.recs {
		if r.id > afterKey {
			batch = append(batch, r)
			if len(batch) == limit {
				break
			}
		}
	}
	return batch, nil
}

func someRecords(n int) []record {
	recs := make([]record, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, record{id: fmt.Sprintf("p%02d", i), name: fmt.Sprintf("product %d", i)})
	}
	return recs
}

// liveEngine returns a fake engine with an old collection already
// serving both aliases, holding one stale document.
func liveEngine(t *testing.T) *search.InMemoryEngine {
	t.Helper()
	engine := search.NewInMemoryEngine()
	ctx := context.Background()
	require.NoError(t, engine.CreateCollection(ctx, "products-old", nil))
	require.NoError(t, engine.Upsert(ctx, "products-old", map[string]any{"id": "stale", "name": "old"}))
	require.NoError(t, engine.UpsertAlias(ctx, "products-write", "products-old"))
	require.NoError(t, engine.UpsertAlias(ctx, "products-read", "products-old"))
	return engine
}

// --- Tests ---

func TestRebuild_HappyPath(t *testing.T) {
	engine := liveEngine(t)
	source := &sliceSource{recs: someRecords(5)}
	orch := reindex.NewOrchestrator(testBinding, engine, source, nil, 2, slog.Default())
	ctx := context.Background()

	collection, err := orch.Rebuild(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "products-old", collection)

	// Both aliases resolve to exactly the new collection.
	readTarget, err := engine.ResolveAlias(ctx, "products-read")
	require.NoError(t, err)
	assert.Equal(t, collection, readTarget)
	writeTarget, err := engine.ResolveAlias(ctx, "products-write")
	require.NoError(t, err)
	assert.Equal(t, collection, writeTarget)

	// Every record made it, one document each.
	count, err := engine.Count(ctx, "products-read")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	_, found, err := engine.Get(ctx, "products-read", "p03")
	require.NoError(t, err)
	assert.True(t, found)

	// The stale document did not leak into the new collection.
	_, found, err = engine.Get(ctx, "products-read", "stale")
	require.NoError(t, err)
	assert.False(t, found)

	// The old collection is orphaned, not deleted.
	assert.Contains(t, engine.Collections(), "products-old")
	staleCount, err := engine.Count(ctx, "products-old")
	require.NoError(t, err)
	assert.Equal(t, int64(1), staleCount)
}

func TestRebuild_ReadInvisibleUntilCutover(t *testing.T) {
	// SCENARIO: readers keep hitting the old collection for the whole
	// population phase; the new documents appear only at the final
	// alias bind.
	engine := liveEngine(t)
	ctx := context.Background()

	source := &sliceSource{recs: someRecords(6)}
	var midRunTargets []string
	source.onFetch = func() {
		target, err := engine.ResolveAlias(ctx, "products-read")
		require.NoError(t, err)
		midRunTargets = append(midRunTargets, target)
	}

	orch := reindex.NewOrchestrator(testBinding, engine, source, nil, 2, slog.Default())

	collection, err := orch.Rebuild(ctx)
	require.NoError(t, err)

	require.NotEmpty(t, midRunTargets)
	for _, target := range midRunTargets {
		assert.Equal(t, "products-old", target,
			"read alias must stay on the old collection until population completes")
	}

	final, err := engine.ResolveAlias(ctx, "products-read")
	require.NoError(t, err)
	assert.Equal(t, collection, final)
}

func TestRebuild_BatchingBoundsEachFetch(t *testing.T) {
	engine := liveEngine(t)
	source := &sliceSource{recs: someRecords(5)}
	orch := reindex.NewOrchestrator(testBinding, engine, source, nil, 2, slog.Default())

	_, err := orch.Rebuild(context.Background())
	require.NoError(t, err)

	// 5 records at batch size 2: pages of 2, 2, 1.
	assert.Equal(t, 3, source.fetches)
}

type bulkFailEngine struct {
	*search.InMemoryEngine
}

func (bulkFailEngine) BulkUpsert(ctx context.Context, collection string, documents []any) error {
	return errors.New("mapping conflict")
}

func TestRebuild_PopulateFailure_LeavesLastGoodState(t *testing.T) {
	// SCENARIO: a bulk request fails mid-stream.
	// EXPECT: *BulkError; the read alias never moved; the write alias
	// stays on the new collection (its last successful state). No
	// rollback is attempted.
	engine := bulkFailEngine{liveEngine(t)}
	source := &sliceSource{recs: someRecords(4)}
	orch := reindex.NewOrchestrator(testBinding, engine, source, nil, 2, slog.Default())
	ctx := context.Background()

	_, err := orch.Rebuild(ctx)

	var bulkErr *syncing.BulkError
	require.ErrorAs(t, err, &bulkErr)

	readTarget, resolveErr := engine.ResolveAlias(ctx, "products-read")
	require.NoError(t, resolveErr)
	assert.Equal(t, "products-old", readTarget)

	writeTarget, resolveErr := engine.ResolveAlias(ctx, "products-write")
	require.NoError(t, resolveErr)
	assert.NotEqual(t, "products-old", writeTarget)
}

func TestRebuild_SourceFailure_Aborts(t *testing.T) {
	engine := liveEngine(t)
	orch := reindex.NewOrchestrator(testBinding, engine, failSource{}, nil, 2, slog.Default())

	_, err := orch.Rebuild(context.Background())
	require.Error(t, err)

	target, resolveErr := engine.ResolveAlias(context.Background(), "products-read")
	require.NoError(t, resolveErr)
	assert.Equal(t, "products-old", target)
}

type failSource struct{}

func (failSource) FetchBatch(ctx context.Context, afterKey string, limit int) ([]binder.Record, error) {
	return nil, errors.New("connection reset")
}

func TestRebuild_FirstRun_NoPreviousReadAlias(t *testing.T) {
	// A brand-new deployment has no aliases yet; the rebuild must
	// still complete and define both.
	engine := search.NewInMemoryEngine()
	source := &sliceSource{recs: someRecords(3)}
	orch := reindex.NewOrchestrator(testBinding, engine, source, nil, 10, slog.Default())
	ctx := context.Background()

	collection, err := orch.Rebuild(ctx)
	require.NoError(t, err)

	readTarget, err := engine.ResolveAlias(ctx, "products-read")
	require.NoError(t, err)
	assert.Equal(t, collection, readTarget)

	count, err := engine.Count(ctx, "products-read")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
