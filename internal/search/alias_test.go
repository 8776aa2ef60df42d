package search_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchsync/internal/search"
)

func TestAliasManager_CreateCollection_UniqueNames(t *testing.T) {
	engine := search.NewInMemoryEngine()
	manager := search.NewAliasManager(engine)
	ctx := context.Background()

	first, err := manager.CreateCollection(ctx, "products", nil)
	require.NoError(t, err)
	second, err := manager.CreateCollection(ctx, "products", nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "products-"))
	assert.True(t, strings.HasPrefix(second, "products-"))
	assert.NotEqual(t, first, second, "every rebuild gets a fresh collection")

	// Both physically exist.
	assert.ElementsMatch(t, []string{first, second}, engine.Collections())
}

func TestAliasManager_BindAndResolve(t *testing.T) {
	engine := search.NewInMemoryEngine()
	manager := search.NewAliasManager(engine)
	ctx := context.Background()

	name, err := manager.CreateCollection(ctx, "products", nil)
	require.NoError(t, err)

	require.NoError(t, manager.Bind(ctx, name, "products-read"))

	got, err := manager.Resolve(ctx, "products-read")
	require.NoError(t, err)
	assert.Equal(t, name, got)

	exists, err := manager.Exists(ctx, "products-read")
	require.NoError(t, err)
	assert.True(t, exists)
}
