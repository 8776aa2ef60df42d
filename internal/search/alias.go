package search

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AliasManager creates physical collections and repoints aliases at
// them. Collection names are never reused: each rebuild gets a fresh
// base-<random> name and the alias swap is what makes it live.
type AliasManager struct {
	engine Engine
}

func NewAliasManager(engine Engine) *AliasManager {
	return &AliasManager{engine: engine}
}

// CreateCollection creates a uniquely named collection for base and
// returns its name. The suffix is a 128-bit random token, so collisions
// are not a practical concern.
func (m *AliasManager) CreateCollection(ctx context.Context, base string, schema *Schema) (string, error) {
	name := fmt.Sprintf("%s-%s", base, uuid.NewString())
	if err := m.engine.CreateCollection(ctx, name, schema); err != nil {
		return "", err
	}
	return name, nil
}

// Bind points alias at collection in one atomic engine call. After it
// returns, the alias resolves to exactly this collection; whatever it
// pointed at before is detached in the same request.
func (m *AliasManager) Bind(ctx context.Context, collection string, alias string) error {
	if err := m.engine.UpsertAlias(ctx, alias, collection); err != nil {
		return fmt.Errorf("bind alias %q -> %q: %w", alias, collection, err)
	}
	return nil
}

// Resolve returns the collection currently behind alias, or
// ErrAliasNotFound.
func (m *AliasManager) Resolve(ctx context.Context, alias string) (string, error) {
	return m.engine.ResolveAlias(ctx, alias)
}

// Exists reports whether alias is defined at all.
func (m *AliasManager) Exists(ctx context.Context, alias string) (bool, error) {
	return m.engine.AliasExists(ctx, alias)
}
