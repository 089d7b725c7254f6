package analysis

import (
	"sentiment-aligner/src/analysis/core"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"
)

// AnalysisFacade turns an alignment into the report consumed downstream.
type AnalysisFacade struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	return &AnalysisFacade{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Correlate measures how the previous session's sentiment relates to the
// return of the row it was shifted onto.
func (a *AnalysisFacade) Correlate(rows []models.MAlignedRow) models.MCorrelationReport {
	sentiment, returns := core.PairedSeries(rows)

	return models.MCorrelationReport{
		Pairs:         len(sentiment),
		Correlation:   core.Correlation(sentiment, returns),
		MeanSentiment: core.Mean(sentiment),
		MeanReturn:    core.Mean(returns),
	}
}

// -----------------------------------------------------------------------------

// BuildReport assembles the persisted report for one ticker. It carries no
// timing data so identical runs produce identical reports.
func (a *AnalysisFacade) BuildReport(alignment *models.MAlignment) models.MReport {
	corr := a.Correlate(alignment.Rows)

	if a.Logger != nil {
		if corr.Correlation.Valid {
			a.Logger.Info("%s: correlation %.4f over %d pairs", alignment.Ticker, corr.Correlation.Float64, corr.Pairs)
		} else {
			a.Logger.Warning("%s: correlation undefined over %d pairs", alignment.Ticker, corr.Pairs)
		}
	}

	return models.MReport{
		Ticker:         alignment.Ticker,
		StartDate:      a.Config.StartDate,
		EndDate:        a.Config.EndDate,
		MinSample:      a.Config.Sentiment.MinSample,
		LexiconVersion: alignment.LexiconVersion,
		Correlation:    corr,
		Rows:           alignment.Rows,
	}
}
