package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// MWindow is the half-open interval [StartEpoch, EndEpoch) of headlines
// attributed to one trading day.
type MWindow struct {
	Ticker     string `json:"ticker"`
	StartEpoch int64  `json:"start_epoch"`
	EndEpoch   int64  `json:"end_epoch"`
}

// MSentimentSample is the per-window aggregation result. MeanCompoundScore is
// null when the window was rejected or could not be queried.
type MSentimentSample struct {
	Window            MWindow    `json:"window"`
	HeadlineCount     int        `json:"headline_count"`
	MeanCompoundScore null.Float `json:"mean_compound_score"`
}

// MAlignedRow pairs a day's return with the sentiment of the window that
// closed at that day's open.
type MAlignedRow struct {
	Date           time.Time  `json:"date"`
	DailyReturn    null.Float `json:"daily_return"`
	SentimentScore null.Float `json:"sentiment_score"`
}

// MAlignment is the full output of one aligner run for a ticker.
type MAlignment struct {
	Ticker         string             `json:"ticker"`
	LexiconVersion string             `json:"lexicon_version"`
	Rows           []MAlignedRow      `json:"rows"`
	Samples        []MSentimentSample `json:"samples"`
	Metrics        MProcessingMetrics `json:"-"`
}
