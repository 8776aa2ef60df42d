package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchsync/internal/catalog"
	"searchsync/internal/syncing"
)

// productCols must match the SELECT column order in postgres.go.
var productCols = []string{
	"id", "name", "description", "price", "seller_id", "seller_name", "created_at",
}

func newMockStore(t *testing.T) (*catalog.ProductStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return catalog.NewProductStore(mock), mock
}

func TestProductStore_Save_Upserts(t *testing.T) {
	store, mock := newMockStore(t)
	p := sampleProduct()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(p.ID, p.Name, p.Description, p.Price, p.Seller.ID, p.Seller.Name, p.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_Save_RejectsForeignRecords(t *testing.T) {
	store, _ := newMockStore(t)

	err := store.Save(context.Background(), foreignRecord{})
	assert.Error(t, err)
}

type foreignRecord struct{}

func (foreignRecord) PrimaryKey() string       { return "x" }
func (foreignRecord) Field(string) (any, bool) { return nil, false }

func TestProductStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM products WHERE id =").
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, store.Delete(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_GetByKey_Found(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 5, 20, 8, 15, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT .+ FROM products.+WHERE id =`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow("p1", "Linear Rail 300mm", "Hardened steel, MGN12", int64(2499), "s7", "Precision Parts Co", created))

	rec, err := store.GetByKey(context.Background(), "p1")
	require.NoError(t, err)

	p, ok := rec.(catalog.Product)
	require.True(t, ok)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "s7", p.Seller.ID)
	assert.Equal(t, int64(2499), p.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_GetByKey_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM products.+WHERE id =`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetByKey(context.Background(), "ghost")
	assert.ErrorIs(t, err, syncing.ErrNotFound)
}

func TestProductStore_FetchBatch_KeysetPagination(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 5, 20, 8, 15, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT .+ FROM products.+WHERE id >.+ORDER BY id.+LIMIT`).
		WithArgs("p1", 2).
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow("p2", "Nut M3", "", int64(50), "s7", "Precision Parts Co", created).
			AddRow("p3", "Bolt M3", "", int64(80), "s8", "FastenerWorld", created))

	batch, err := store.FetchBatch(context.Background(), "p1", 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	assert.Equal(t, "p2", batch[0].PrimaryKey())
	assert.Equal(t, "p3", batch[1].PrimaryKey())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_FetchBatch_Empty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM products.+WHERE id >`).
		WithArgs("p9", 100).
		WillReturnRows(pgxmock.NewRows(productCols))

	batch, err := store.FetchBatch(context.Background(), "p9", 100)
	require.NoError(t, err)
	assert.Empty(t, batch)
}
