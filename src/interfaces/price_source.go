package interfaces

import (
	"context"
	"time"

	"sentiment-aligner/src/models"
)

// -----------------------------------------------------------------------------
// IPriceSource fetches the ordered trading-day series for a ticker.
// -----------------------------------------------------------------------------

type IPriceSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// FetchTradingDays returns rows for [start, end] inclusive, ascending by date.
	FetchTradingDays(ctx context.Context, ticker string, start, end time.Time) ([]models.MTradingDay, error)
}
