package sentiment

import (
	"context"
	"errors"
	"time"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"

	"github.com/guregu/null/v6"
	"golang.org/x/sync/errgroup"
)

type windowOutcome int

const (
	outcomeRejected windowOutcome = iota
	outcomeAdmitted
	outcomeErrored
)

// -----------------------------------------------------------------------------
// Aligner
// -----------------------------------------------------------------------------

// Aligner folds the trading-day sequence into an aligned table where row i+1
// carries the sentiment of the window between day i and day i+1.
type Aligner struct {
	Aggregator       *Aggregator
	FatalStoreErrors bool
	Workers          int
	Logger           *logger.Logger
}

func NewAligner(agg *Aggregator, cfg *models.MSentimentConfig, log *logger.Logger) *Aligner {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Aligner{
		Aggregator:       agg,
		FatalStoreErrors: cfg.FatalStoreErrors,
		Workers:          workers,
		Logger:           log,
	}
}

// -----------------------------------------------------------------------------

// Align never mutates days. Malformed gaps and an unreachable store abort the
// run without partial output; other per-window query failures leave that
// row's sentiment absent unless FatalStoreErrors is set.
func (a *Aligner) Align(ctx context.Context, ticker string, days []models.MTradingDay) (*models.MAlignment, error) {
	start := time.Now()

	if len(days) < 2 {
		return nil, helpers.NewValidationError("%s: need at least 2 trading days, got %d", ticker, len(days))
	}

	// Reject structural corruption before any store query runs.
	for i := 0; i < len(days)-1; i++ {
		if gap := GapDays(days[i].Date, days[i+1].Date); gap <= 0 {
			return nil, helpers.NewInvalidGapError(i, days[i].Date, days[i+1].Date, gap)
		}
	}

	n := len(days) - 1
	samples := make([]models.MSentimentSample, n)
	outcomes := make([]windowOutcome, n)

	var err error
	if a.Workers > 1 {
		err = a.runParallel(ctx, ticker, days, samples, outcomes)
	} else {
		err = a.runSequential(ctx, ticker, days, samples, outcomes)
	}
	if err != nil {
		return nil, err
	}

	alignment := &models.MAlignment{
		Ticker:  ticker,
		Rows:    make([]models.MAlignedRow, len(days)),
		Samples: samples,
	}
	if a.Aggregator.Scorer != nil {
		alignment.LexiconVersion = a.Aggregator.Scorer.Version()
	}
	for i, d := range days {
		alignment.Rows[i] = models.MAlignedRow{Date: d.Date, DailyReturn: d.DailyReturn}
	}

	for i, s := range samples {
		if s.MeanCompoundScore.Valid {
			alignment.Rows[i+1].SentimentScore = s.MeanCompoundScore
		}
		switch outcomes[i] {
		case outcomeAdmitted:
			alignment.Metrics.WindowsAdmitted++
		case outcomeErrored:
			alignment.Metrics.WindowsErrored++
		default:
			alignment.Metrics.WindowsRejected++
		}
	}
	alignment.Metrics.WindowsProcessed = n
	alignment.Metrics.AggregationTimeSeconds = time.Since(start).Seconds()

	if a.Logger != nil {
		a.Logger.Info("%s: %d windows, %d admitted, %d rejected, %d errored in %.3fs",
			ticker, n, alignment.Metrics.WindowsAdmitted, alignment.Metrics.WindowsRejected,
			alignment.Metrics.WindowsErrored, alignment.Metrics.AggregationTimeSeconds)
	}

	return alignment, nil
}

// -----------------------------------------------------------------------------

func (a *Aligner) runSequential(ctx context.Context, ticker string, days []models.MTradingDay, samples []models.MSentimentSample, outcomes []windowOutcome) error {
	for i := range samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.processWindow(ctx, ticker, days, i, samples, outcomes); err != nil {
			return err
		}
	}
	return nil
}

// runParallel writes each window into its own slot; rows are assembled in
// index order afterwards.
func (a *Aligner) runParallel(ctx context.Context, ticker string, days []models.MTradingDay, samples []models.MSentimentSample, outcomes []windowOutcome) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Workers)

	for i := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return a.processWindow(gctx, ticker, days, i, samples, outcomes)
		})
	}

	return g.Wait()
}

// -----------------------------------------------------------------------------

func (a *Aligner) processWindow(ctx context.Context, ticker string, days []models.MTradingDay, i int, samples []models.MSentimentSample, outcomes []windowOutcome) error {
	sample, err := a.Aggregator.Aggregate(ctx, ticker, days, i)
	if err != nil {
		if a.isFatal(err) {
			return err
		}
		if a.Logger != nil {
			a.Logger.Warning("%s: window %d (%s) has no signal: %v", ticker, i, days[i].Date.Format(time.DateOnly), err)
		}
		sample.HeadlineCount = 0
		sample.MeanCompoundScore = null.Float{}
		samples[i] = sample
		outcomes[i] = outcomeErrored
		return nil
	}

	samples[i] = sample
	if sample.MeanCompoundScore.Valid {
		outcomes[i] = outcomeAdmitted
	} else {
		outcomes[i] = outcomeRejected
	}
	return nil
}

func (a *Aligner) isFatal(err error) bool {
	var unavailable *helpers.StoreUnavailableError
	var gap *helpers.InvalidGapError
	if errors.As(err, &unavailable) || errors.As(err, &gap) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return a.FatalStoreErrors
}
