package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/interfaces"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"

	_ "modernc.org/sqlite"
)

var sqliteQueries = headlineQueries{
	schema: []string{
		`CREATE TABLE IF NOT EXISTS headlines (
			ticker TEXT NOT NULL,
			id INTEGER NOT NULL DEFAULT 0,
			datetime INTEGER NOT NULL,
			headline TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_headlines_ticker_datetime ON headlines (ticker, datetime)`,
	},
	count: `SELECT COUNT(*) FROM headlines WHERE ticker = ? AND datetime >= ? AND datetime < ?`,
	fetch: `SELECT headline FROM headlines WHERE ticker = ? AND datetime >= ? AND datetime < ? ORDER BY datetime, rowid`,
	insert: `INSERT INTO headlines (ticker, id, datetime, headline, category, source, summary, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
}

// -----------------------------------------------------------------------------

type SQLiteHeadlineStore struct {
	Config *models.MStorageConfig
	DB     *sql.DB
	Logger *logger.Logger
}

var _ interfaces.IHeadlineDatabase = (*SQLiteHeadlineStore)(nil)

// -----------------------------------------------------------------------------

func NewSQLiteHeadlineStore(cfg *models.MStorageConfig, log *logger.Logger) *SQLiteHeadlineStore {
	return &SQLiteHeadlineStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// sqliteDSN builds the modernc DSN. Pragmas passed this way apply to every
// pooled connection, not just the first.
func sqliteDSN(cfg *models.MStorageConfig) string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeoutMS))
	if cfg.ReadOnly {
		params.Add("_pragma", "query_only(1)")
	} else {
		params.Add("_pragma", "journal_mode(WAL)")
		params.Add("_pragma", "synchronous(NORMAL)")
	}
	return cfg.DBPath + "?" + params.Encode()
}

// -----------------------------------------------------------------------------

func (d *SQLiteHeadlineStore) Open(ctx context.Context) error {
	path := d.Config.DBPath
	if path == "" {
		return helpers.NewStoreUnavailableError("sqlite headline store has no db_path", nil)
	}

	if !d.Config.CreateIfMissing {
		if _, err := os.Stat(path); err != nil {
			return helpers.NewStoreUnavailableError(fmt.Sprintf("headline database %s does not exist", path), err)
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(d.Config))
	if err != nil {
		return helpers.NewStoreUnavailableError("open sqlite headline store", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return helpers.NewStoreUnavailableError(fmt.Sprintf("ping sqlite headline store %s", path), err)
	}

	if needsSchemaCheck(d.Config) {
		if err := checkSchema(ctx, db, fmt.Sprintf("sqlite headline store %s", path)); err != nil {
			db.Close()
			return err
		}
	}

	d.DB = db
	if d.Logger != nil {
		d.Logger.Info("SQLite headline store opened: %s (read_only=%t)", path, d.Config.ReadOnly)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteHeadlineStore) Initialize(ctx context.Context) error {
	if d.DB == nil {
		return helpers.NewStoreUnavailableError("sqlite headline store is not open", nil)
	}
	if d.Config.ReadOnly {
		return helpers.NewValidationError("cannot initialize schema on a read-only store")
	}
	return createSchema(ctx, d.DB, sqliteQueries.schema)
}

// -----------------------------------------------------------------------------

func (d *SQLiteHeadlineStore) SaveHeadlinesBulk(ctx context.Context, headlines []models.MHeadline) error {
	if d.DB == nil {
		return helpers.NewStoreUnavailableError("sqlite headline store is not open", nil)
	}
	if d.Config.ReadOnly {
		return helpers.NewValidationError("cannot write headlines to a read-only store")
	}
	return insertHeadlines(ctx, d.DB, sqliteQueries.insert, headlines)
}

// -----------------------------------------------------------------------------

func (d *SQLiteHeadlineStore) Count(ctx context.Context, ticker string, startEpoch, endEpoch int64) (int, error) {
	if d.DB == nil {
		return 0, helpers.NewStoreUnavailableError("sqlite headline store is not open", nil)
	}
	return countHeadlines(ctx, d.DB, sqliteQueries.count, ticker, startEpoch, endEpoch)
}

// -----------------------------------------------------------------------------

func (d *SQLiteHeadlineStore) FetchText(ctx context.Context, ticker string, startEpoch, endEpoch int64) ([]string, error) {
	if d.DB == nil {
		return nil, helpers.NewStoreUnavailableError("sqlite headline store is not open", nil)
	}
	return fetchHeadlineText(ctx, d.DB, sqliteQueries.fetch, ticker, startEpoch, endEpoch)
}

// -----------------------------------------------------------------------------

// Snapshot opens a deferred transaction; sqlite pins the read snapshot at the
// first SELECT and keeps it until Release.
func (d *SQLiteHeadlineStore) Snapshot(ctx context.Context) (interfaces.IHeadlineSnapshot, error) {
	snap, err := beginSnapshot(ctx, d.DB, nil, sqliteQueries)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteHeadlineStore) Close() error {
	if d.DB != nil {
		err := d.DB.Close()
		d.DB = nil
		return err
	}
	return nil
}
