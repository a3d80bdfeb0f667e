package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/nft_layer/internal/storage"
	"github.com/R3E-Network/nft_layer/internal/storage/migrations"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, "postgres"), mock
}

func TestStore_Load(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT address, implementation, state, created_at, updated_at\s+FROM nft_proxies\s+WHERE address`).
		WithArgs("NAddr").
		WillReturnRows(sqlmock.NewRows([]string{"address", "implementation", "state", "created_at", "updated_at"}).
			AddRow("NAddr", "v1", []byte(`{"totalSupply":1}`), created, created))

	rec, err := store.Load(context.Background(), "NAddr")
	require.NoError(t, err)
	assert.Equal(t, "v1", rec.Implementation)
	assert.JSONEq(t, `{"totalSupply":1}`, string(rec.State))
	assert.True(t, rec.CreatedAt.Equal(created))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM nft_proxies`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"address", "implementation", "state", "created_at", "updated_at"}))

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SaveNewRecordsImplementation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT implementation FROM nft_proxies WHERE address`).
		WithArgs("NAddr").
		WillReturnRows(sqlmock.NewRows([]string{"implementation"}))
	mock.ExpectExec(`INSERT INTO nft_proxies`).
		WithArgs("NAddr", "v1", `{"a":1}`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO nft_proxy_upgrades`).
		WithArgs("NAddr", "v1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.Save(context.Background(), storage.Record{Address: "NAddr", Implementation: "v1", State: []byte(`{"a":1}`)})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveSameImplementationSkipsHistory(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT implementation FROM nft_proxies WHERE address`).
		WithArgs("NAddr").
		WillReturnRows(sqlmock.NewRows([]string{"implementation"}).AddRow("v1"))
	mock.ExpectExec(`INSERT INTO nft_proxies`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Save(context.Background(), storage.Record{Address: "NAddr", Implementation: "v1", State: []byte(`{}`)})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT implementation FROM nft_proxies WHERE address`).
		WillReturnRows(sqlmock.NewRows([]string{"implementation"}))
	mock.ExpectExec(`INSERT INTO nft_proxies`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Save(context.Background(), storage.Record{Address: "NAddr", Implementation: "v1", State: []byte(`{}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_List(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM nft_proxies\s+ORDER BY created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"address", "implementation", "state", "created_at", "updated_at"}).
			AddRow("A", "v1", []byte(`{}`), now, now).
			AddRow("B", "v2", []byte(`{}`), now, now))

	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[1].Address)
	assert.Equal(t, "v2", list[1].Implementation)
}

func TestStore_Implementations(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT implementation FROM nft_proxy_upgrades`).
		WithArgs("NAddr").
		WillReturnRows(sqlmock.NewRows([]string{"implementation"}).AddRow("v1").AddRow("v2"))

	history, err := store.Implementations(context.Background(), "NAddr")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, history)
}

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	ctx := context.Background()
	store, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, migrations.Apply(ctx, store.DB()))

	addr := "it-" + time.Now().UTC().Format("150405.000000000")
	require.NoError(t, store.Save(ctx, storage.Record{Address: addr, Implementation: "v1", State: []byte(`{"totalSupply":0}`)}))
	require.NoError(t, store.Save(ctx, storage.Record{Address: addr, Implementation: "v2", State: []byte(`{"totalSupply":0}`)}))

	rec, err := store.Load(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, "v2", rec.Implementation)

	history, err := store.Implementations(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, history)

	_, err = store.Load(ctx, addr+"-missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound) || errors.Is(err, sql.ErrNoRows))
}
