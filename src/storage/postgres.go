package storage

import (
	"context"
	"database/sql"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/interfaces"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"

	_ "github.com/lib/pq"
)

var postgresQueries = headlineQueries{
	schema: []string{
		`CREATE TABLE IF NOT EXISTS headlines (
			ticker TEXT NOT NULL,
			id BIGINT NOT NULL DEFAULT 0,
			datetime BIGINT NOT NULL,
			headline TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_headlines_ticker_datetime ON headlines (ticker, datetime)`,
	},
	count: `SELECT COUNT(*) FROM headlines WHERE ticker = $1 AND datetime >= $2 AND datetime < $3`,
	fetch: `SELECT headline FROM headlines WHERE ticker = $1 AND datetime >= $2 AND datetime < $3 ORDER BY datetime, id, headline`,
	insert: `INSERT INTO headlines (ticker, id, datetime, headline, category, source, summary, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
}

// -----------------------------------------------------------------------------

type PostgresHeadlineStore struct {
	Config *models.MStorageConfig
	DB     *sql.DB
	Logger *logger.Logger
}

var _ interfaces.IHeadlineDatabase = (*PostgresHeadlineStore)(nil)

// -----------------------------------------------------------------------------

func NewPostgresHeadlineStore(cfg *models.MStorageConfig, log *logger.Logger) *PostgresHeadlineStore {
	return &PostgresHeadlineStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresHeadlineStore) Open(ctx context.Context) error {
	dsn := d.Config.DBConnectionString
	if dsn == "" {
		return helpers.NewStoreUnavailableError("postgres headline store has no db_connection_string", nil)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return helpers.NewStoreUnavailableError("open postgres headline store", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return helpers.NewStoreUnavailableError("ping postgres headline store", err)
	}

	if needsSchemaCheck(d.Config) {
		if err := checkSchema(ctx, db, "postgres headline store"); err != nil {
			db.Close()
			return err
		}
	}

	d.DB = db
	if d.Logger != nil {
		d.Logger.Info("Postgres headline store opened (read_only=%t)", d.Config.ReadOnly)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresHeadlineStore) Initialize(ctx context.Context) error {
	if d.DB == nil {
		return helpers.NewStoreUnavailableError("postgres headline store is not open", nil)
	}
	if d.Config.ReadOnly {
		return helpers.NewValidationError("cannot initialize schema on a read-only store")
	}
	return createSchema(ctx, d.DB, postgresQueries.schema)
}

// -----------------------------------------------------------------------------

func (d *PostgresHeadlineStore) SaveHeadlinesBulk(ctx context.Context, headlines []models.MHeadline) error {
	if d.DB == nil {
		return helpers.NewStoreUnavailableError("postgres headline store is not open", nil)
	}
	if d.Config.ReadOnly {
		return helpers.NewValidationError("cannot write headlines to a read-only store")
	}
	return insertHeadlines(ctx, d.DB, postgresQueries.insert, headlines)
}

// -----------------------------------------------------------------------------

func (d *PostgresHeadlineStore) Count(ctx context.Context, ticker string, startEpoch, endEpoch int64) (int, error) {
	if d.DB == nil {
		return 0, helpers.NewStoreUnavailableError("postgres headline store is not open", nil)
	}
	return countHeadlines(ctx, d.DB, postgresQueries.count, ticker, startEpoch, endEpoch)
}

// -----------------------------------------------------------------------------

func (d *PostgresHeadlineStore) FetchText(ctx context.Context, ticker string, startEpoch, endEpoch int64) ([]string, error) {
	if d.DB == nil {
		return nil, helpers.NewStoreUnavailableError("postgres headline store is not open", nil)
	}
	return fetchHeadlineText(ctx, d.DB, postgresQueries.fetch, ticker, startEpoch, endEpoch)
}

// -----------------------------------------------------------------------------

// Snapshot uses a read-only REPEATABLE READ transaction so concurrent writers
// cannot change the window between Count and FetchText.
func (d *PostgresHeadlineStore) Snapshot(ctx context.Context) (interfaces.IHeadlineSnapshot, error) {
	snap, err := beginSnapshot(ctx, d.DB, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, postgresQueries)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresHeadlineStore) Close() error {
	if d.DB != nil {
		err := d.DB.Close()
		d.DB = nil
		return err
	}
	return nil
}
