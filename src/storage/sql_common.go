package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/interfaces"
	"sentiment-aligner/src/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// headlineQueries holds the dialect specific statements. Every statement is
// parameterized; only the placeholder style differs between drivers.
type headlineQueries struct {
	schema []string
	count  string
	fetch  string
	insert string
}

// -----------------------------------------------------------------------------

func classifyQueryError(op string, err error) error {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return helpers.NewStoreUnavailableError(op, err)
	}
	return helpers.NewDatabaseError(op, err)
}

// -----------------------------------------------------------------------------

// Columns every read depends on. Valid in both dialects.
const schemaCheckQuery = `SELECT ticker, datetime, headline FROM headlines LIMIT 0`

// checkSchema fails with StoreUnavailableError when the headlines table or
// one of its read columns is missing, so a wrong database aborts the run
// instead of turning every window into a per-window query failure.
func checkSchema(ctx context.Context, db *sql.DB, store string) error {
	rows, err := db.QueryContext(ctx, schemaCheckQuery)
	if err != nil {
		return helpers.NewStoreUnavailableError(fmt.Sprintf("%s has no usable headlines table", store), err)
	}
	return rows.Close()
}

// needsSchemaCheck is false only when Initialize is expected to create the
// schema right after Open.
func needsSchemaCheck(cfg *models.MStorageConfig) bool {
	return cfg.ReadOnly || !cfg.CreateIfMissing
}

// -----------------------------------------------------------------------------

func countHeadlines(ctx context.Context, q querier, query, ticker string, startEpoch, endEpoch int64) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, ticker, startEpoch, endEpoch).Scan(&n); err != nil {
		return 0, classifyQueryError(fmt.Sprintf("count headlines for %s [%d, %d)", ticker, startEpoch, endEpoch), err)
	}
	return n, nil
}

// -----------------------------------------------------------------------------

func fetchHeadlineText(ctx context.Context, q querier, query, ticker string, startEpoch, endEpoch int64) ([]string, error) {
	op := fmt.Sprintf("fetch headlines for %s [%d, %d)", ticker, startEpoch, endEpoch)

	rows, err := q.QueryContext(ctx, query, ticker, startEpoch, endEpoch)
	if err != nil {
		return nil, classifyQueryError(op, err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, classifyQueryError(op, err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyQueryError(op, err)
	}

	return texts, nil
}

// -----------------------------------------------------------------------------

func insertHeadlines(ctx context.Context, db *sql.DB, query string, headlines []models.MHeadline) error {
	if len(headlines) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classifyQueryError("begin headline insert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return classifyQueryError("prepare headline insert", err)
	}
	defer stmt.Close()

	for _, h := range headlines {
		_, err := stmt.ExecContext(ctx, h.Ticker, h.ID, h.Timestamp, h.Text, h.Category, h.Source, h.Summary, h.URL)
		if err != nil {
			return classifyQueryError("insert headline", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classifyQueryError("commit headline insert", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func createSchema(ctx context.Context, db *sql.DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return classifyQueryError("init headline schema", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// sqlSnapshot
// -----------------------------------------------------------------------------

type sqlSnapshot struct {
	tx      *sql.Tx
	queries headlineQueries
}

var _ interfaces.IHeadlineSnapshot = (*sqlSnapshot)(nil)

func beginSnapshot(ctx context.Context, db *sql.DB, opts *sql.TxOptions, queries headlineQueries) (*sqlSnapshot, error) {
	if db == nil {
		return nil, helpers.NewStoreUnavailableError("headline store is not open", nil)
	}
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return nil, classifyQueryError("begin headline snapshot", err)
	}
	return &sqlSnapshot{tx: tx, queries: queries}, nil
}

func (s *sqlSnapshot) Count(ctx context.Context, ticker string, startEpoch, endEpoch int64) (int, error) {
	return countHeadlines(ctx, s.tx, s.queries.count, ticker, startEpoch, endEpoch)
}

func (s *sqlSnapshot) FetchText(ctx context.Context, ticker string, startEpoch, endEpoch int64) ([]string, error) {
	return fetchHeadlineText(ctx, s.tx, s.queries.fetch, ticker, startEpoch, endEpoch)
}

// Release rolls back; snapshots never write.
func (s *sqlSnapshot) Release() error {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
