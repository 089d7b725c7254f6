package core

import (
	"math"

	"sentiment-aligner/src/models"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"
)

// -----------------------------------------------------------------------------

// PairedSeries extracts (sentiment, return) pairs from rows where both are
// present, preserving row order.
func PairedSeries(rows []models.MAlignedRow) (sentiment, returns []float64) {
	for _, r := range rows {
		if r.SentimentScore.Valid && r.DailyReturn.Valid {
			sentiment = append(sentiment, r.SentimentScore.Float64)
			returns = append(returns, r.DailyReturn.Float64)
		}
	}
	return sentiment, returns
}

// -----------------------------------------------------------------------------

// Mean is absent for an empty series.
func Mean(data []float64) null.Float {
	if len(data) == 0 {
		return null.Float{}
	}
	return null.FloatFrom(stat.Mean(data, nil))
}

// -----------------------------------------------------------------------------

// Correlation computes the Pearson coefficient of x and y. It is absent for
// fewer than two pairs or when either series has zero variance.
func Correlation(x, y []float64) null.Float {
	if len(x) != len(y) || len(x) < 2 {
		return null.Float{}
	}

	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return null.Float{}
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return null.Float{}
	}
	return null.FloatFrom(r)
}
