package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, headlines []models.MHeadline) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "headlines.db")

	cfg := &models.MStorageConfig{DBType: "sqlite", DBPath: path, CreateIfMissing: true, BusyTimeoutMS: 1000}
	store := NewSQLiteHeadlineStore(cfg, logger.NewLogger(nil, "StorageTest"))
	ctx := context.Background()

	require.NoError(t, store.Open(ctx))
	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.SaveHeadlinesBulk(ctx, headlines))
	require.NoError(t, store.Close())
	return path
}

func openReadOnly(t *testing.T, path string) *SQLiteHeadlineStore {
	t.Helper()
	cfg := &models.MStorageConfig{DBType: "sqlite", DBPath: path, ReadOnly: true, BusyTimeoutMS: 1000}
	store := NewSQLiteHeadlineStore(cfg, logger.NewLogger(nil, "StorageTest"))
	require.NoError(t, store.Open(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var fixture = []models.MHeadline{
	{Ticker: "AMZN", ID: 1, Timestamp: 100, Text: "first"},
	{Ticker: "AMZN", ID: 2, Timestamp: 150, Text: "second"},
	{Ticker: "AMZN", ID: 3, Timestamp: 200, Text: "boundary"},
	{Ticker: "AAPL", ID: 4, Timestamp: 120, Text: "other ticker"},
}

func TestSQLiteStore_HalfOpenRange(t *testing.T) {
	store := openReadOnly(t, seedStore(t, fixture))
	ctx := context.Background()

	n, err := store.Count(ctx, "AMZN", 100, 200)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	texts, err := store.FetchText(ctx, "AMZN", 100, 200)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, texts)

	n, err = store.Count(ctx, "AMZN", 200, 201)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_EmptyRange(t *testing.T) {
	store := openReadOnly(t, seedStore(t, fixture))

	n, err := store.Count(context.Background(), "MSFT", 0, 1000)
	require.NoError(t, err)
	assert.Zero(t, n)

	texts, err := store.FetchText(context.Background(), "MSFT", 0, 1000)
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestSQLiteStore_FetchOrderIsStable(t *testing.T) {
	rows := []models.MHeadline{
		{Ticker: "AMZN", Timestamp: 10, Text: "b"},
		{Ticker: "AMZN", Timestamp: 5, Text: "a"},
		{Ticker: "AMZN", Timestamp: 10, Text: "c"},
	}
	store := openReadOnly(t, seedStore(t, rows))

	texts, err := store.FetchText(context.Background(), "AMZN", 0, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestSQLiteStore_Snapshot(t *testing.T) {
	store := openReadOnly(t, seedStore(t, fixture))
	ctx := context.Background()

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)

	n, err := snap.Count(ctx, "AMZN", 0, 1000)
	require.NoError(t, err)
	texts, err := snap.FetchText(ctx, "AMZN", 0, 1000)
	require.NoError(t, err)
	assert.Len(t, texts, n)

	require.NoError(t, snap.Release())
	require.NoError(t, snap.Release())
}

func TestSQLiteStore_MissingFileIsUnavailable(t *testing.T) {
	cfg := &models.MStorageConfig{DBType: "sqlite", DBPath: filepath.Join(t.TempDir(), "missing.db"), ReadOnly: true}
	store := NewSQLiteHeadlineStore(cfg, logger.NewLogger(nil, "StorageTest"))

	err := store.Open(context.Background())
	var unavailable *helpers.StoreUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestSQLiteStore_MissingHeadlinesTableIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE other(x INT)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	store := NewSQLiteHeadlineStore(&models.MStorageConfig{DBType: "sqlite", DBPath: path, ReadOnly: true}, logger.NewLogger(nil, "StorageTest"))
	err = store.Open(context.Background())
	var unavailable *helpers.StoreUnavailableError
	require.True(t, errors.As(err, &unavailable), "got %v", err)
	assert.Nil(t, store.DB)

	// A writable store that may create the schema opens and initializes it.
	writable := NewSQLiteHeadlineStore(&models.MStorageConfig{DBType: "sqlite", DBPath: path, CreateIfMissing: true}, logger.NewLogger(nil, "StorageTest"))
	require.NoError(t, writable.Open(context.Background()))
	require.NoError(t, writable.Initialize(context.Background()))
	require.NoError(t, writable.Close())

	require.NoError(t, store.Open(context.Background()))
	require.NoError(t, store.Close())
}

func TestSQLiteStore_OpenWithoutLogger(t *testing.T) {
	path := seedStore(t, fixture)
	store := NewSQLiteHeadlineStore(&models.MStorageConfig{DBType: "sqlite", DBPath: path, ReadOnly: true}, nil)

	require.NotPanics(t, func() {
		require.NoError(t, store.Open(context.Background()))
	})
	n, err := store.Count(context.Background(), "AMZN", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, store.Close())
}

func TestSQLiteStore_QueriesBeforeOpen(t *testing.T) {
	store := NewSQLiteHeadlineStore(&models.MStorageConfig{DBPath: "x.db"}, logger.NewLogger(nil, "StorageTest"))

	_, err := store.Count(context.Background(), "AMZN", 0, 1)
	var unavailable *helpers.StoreUnavailableError
	assert.True(t, errors.As(err, &unavailable))

	_, err = store.Snapshot(context.Background())
	assert.True(t, errors.As(err, &unavailable))
}

func TestSQLiteStore_ReadOnlyRejectsWrites(t *testing.T) {
	store := openReadOnly(t, seedStore(t, fixture))

	err := store.SaveHeadlinesBulk(context.Background(), fixture[:1])
	var validation *helpers.ValidationError
	assert.True(t, errors.As(err, &validation))

	err = store.Initialize(context.Background())
	assert.True(t, errors.As(err, &validation))
}

func TestNewHeadlineDatabase_SelectsBackend(t *testing.T) {
	log := logger.NewLogger(nil, "StorageTest")

	db, err := NewHeadlineDatabase(&models.MStorageConfig{DBType: "sqlite"}, log)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteHeadlineStore{}, db)

	db, err = NewHeadlineDatabase(&models.MStorageConfig{DBType: "postgres"}, log)
	require.NoError(t, err)
	assert.IsType(t, &PostgresHeadlineStore{}, db)

	_, err = NewHeadlineDatabase(&models.MStorageConfig{DBType: "mysql"}, log)
	assert.Error(t, err)
}

func TestPostgresStore_EmptyDSNIsUnavailable(t *testing.T) {
	store := NewPostgresHeadlineStore(&models.MStorageConfig{DBType: "postgres"}, logger.NewLogger(nil, "StorageTest"))

	err := store.Open(context.Background())
	var unavailable *helpers.StoreUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}
