package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"searchsync/internal/binder"
	"searchsync/internal/syncing"
)

// DB is the slice of pgxpool.Pool the store needs. pgxmock satisfies
// it too, which is what the tests run against.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const productColumns = `id, name, description, price, seller_id, seller_name, created_at`

// ProductStore persists products in Postgres and streams them back out
// for full rebuilds. It implements syncing.Store and reindex.Source.
type ProductStore struct {
	db DB
}

func NewProductStore(db DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) Save(ctx context.Context, rec binder.Record) error {
	p, ok := rec.(Product)
	if !ok {
		return fmt.Errorf("catalog: expected Product, got %T", rec)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO products (id, name, description, price, seller_id, seller_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			seller_id = EXCLUDED.seller_id,
			seller_name = EXCLUDED.seller_name`,
		p.ID, p.Name, p.Description, p.Price, p.Seller.ID, p.Seller.Name, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("catalog: save product %q: %w", p.ID, err)
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, key)
	if err != nil {
		return fmt.Errorf("catalog: delete product %q: %w", key, err)
	}
	return nil
}

func (s *ProductStore) GetByKey(ctx context.Context, key string) (binder.Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1`, key)

	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, syncing.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get product %q: %w", key, err)
	}
	return p, nil
}

// FetchBatch returns up to limit products with IDs strictly greater
// than afterKey, in ID order. Keyset pagination keeps memory bounded
// regardless of table size.
func (s *ProductStore) FetchBatch(ctx context.Context, afterKey string, limit int) ([]binder.Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id > $1
		ORDER BY id
		LIMIT $2`, afterKey, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch batch after %q: %w", afterKey, err)
	}
	defer rows.Close()

	var batch []binder.Record
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan product: %w", err)
		}
		batch = append(batch, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: fetch batch after %q: %w", afterKey, err)
	}
	return batch, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price,
		&p.Seller.ID, &p.Seller.Name, &p.CreatedAt,
	)
	return p, err
}
