package interfaces

import (
	"context"

	"sentiment-aligner/src/models"
)

// -----------------------------------------------------------------------------
// IHeadlineStore is the read-only query surface the aggregator needs.
// Ranges are half-open: startEpoch <= datetime < endEpoch.
// -----------------------------------------------------------------------------

type IHeadlineStore interface {

	// Count returns the number of headlines for ticker in the range.
	Count(ctx context.Context, ticker string, startEpoch, endEpoch int64) (int, error)

	// FetchText returns the headline texts for ticker in the range.
	FetchText(ctx context.Context, ticker string, startEpoch, endEpoch int64) ([]string, error)
}

// -----------------------------------------------------------------------------
// IHeadlineSnapshot is a store view pinned to a single read transaction, so
// Count and FetchText observe the same rows.
// -----------------------------------------------------------------------------

type IHeadlineSnapshot interface {
	IHeadlineStore

	// Release ends the read transaction.
	Release() error
}

// ISnapshotStore is implemented by stores that can hand out snapshots.
type ISnapshotStore interface {
	Snapshot(ctx context.Context) (IHeadlineSnapshot, error)
}

// -----------------------------------------------------------------------------
// IHeadlineDatabase defines the full lifecycle of a SQL backed headline store.
// -----------------------------------------------------------------------------

type IHeadlineDatabase interface {
	IHeadlineStore
	ISnapshotStore

	// Open acquires the underlying resource. Failures are StoreUnavailableError.
	Open(ctx context.Context) error

	// Initialize creates the headline schema if it does not exist.
	Initialize(ctx context.Context) error

	// SaveHeadlinesBulk inserts a batch of headlines.
	SaveHeadlinesBulk(ctx context.Context, headlines []models.MHeadline) error

	// Close releases the underlying resource.
	Close() error
}
