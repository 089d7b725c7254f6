package models

import "github.com/guregu/null/v6"

// -----------------------------------------------------------------------------
// Report Structures
// -----------------------------------------------------------------------------

// MCorrelationReport summarizes the relation between sentiment and next-day return.
type MCorrelationReport struct {
	Pairs         int        `json:"pairs"`
	Correlation   null.Float `json:"correlation"`
	MeanSentiment null.Float `json:"mean_sentiment"`
	MeanReturn    null.Float `json:"mean_return"`
}

// MReport is what gets written to disk and served for one ticker.
type MReport struct {
	Ticker         string             `json:"ticker"`
	StartDate      string             `json:"start_date"`
	EndDate        string             `json:"end_date"`
	MinSample      int                `json:"min_sample"`
	LexiconVersion string             `json:"lexicon_version"`
	Correlation    MCorrelationReport `json:"correlation"`
	Rows           []MAlignedRow      `json:"rows"`
}

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

type MLatestData struct {
	Reports           map[string]MReport            `json:"reports"`
	ProcessingMetrics map[string]MProcessingMetrics `json:"processing_metrics"`
	Timestamp         int64                         `json:"timestamp"`
}
