package core

import (
	"sentiment-aligner/src/models"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// ChangePercent returns current/previous - 1. It is absent when previous is
// not a positive price.
func ChangePercent(current, previous decimal.Decimal) null.Float {
	if !previous.IsPositive() {
		return null.Float{}
	}
	return null.FloatFrom(current.Div(previous).Sub(decimal.NewFromInt(1)).InexactFloat64())
}

// -----------------------------------------------------------------------------

// DailyReturns returns a copy of days with DailyReturn filled from
// consecutive adjusted closes. The first row has no return.
func DailyReturns(days []models.MTradingDay) []models.MTradingDay {
	out := make([]models.MTradingDay, len(days))
	copy(out, days)

	for i := range out {
		if i == 0 {
			out[i].DailyReturn = null.Float{}
			continue
		}
		out[i].DailyReturn = ChangePercent(out[i].AdjustedClose, out[i-1].AdjustedClose)
	}
	return out
}
