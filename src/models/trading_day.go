package models

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// MTradingDay is one row of the price/return series.
// Date carries the exchange calendar date in its year/month/day fields; the
// clock part is ignored.
type MTradingDay struct {
	Date          time.Time       `json:"date"`
	AdjustedClose decimal.Decimal `json:"adjusted_close"`
	DailyReturn   null.Float      `json:"daily_return"`
}
