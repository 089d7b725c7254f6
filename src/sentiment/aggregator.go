package sentiment

import (
	"context"
	"fmt"
	"time"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/interfaces"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"
)

const defaultRetryDelay = 200 * time.Millisecond

// -----------------------------------------------------------------------------
// Aggregator
// -----------------------------------------------------------------------------

// Aggregator computes the sentiment sample of one trading-day window.
type Aggregator struct {
	Store      interfaces.IHeadlineStore
	Scorer     interfaces.IPolarityScorer
	Windows    *WindowBuilder
	MinSample  int
	Attempts   int
	RetryDelay time.Duration
	Logger     *logger.Logger
}

func NewAggregator(
	store interfaces.IHeadlineStore,
	scorer interfaces.IPolarityScorer,
	windows *WindowBuilder,
	cfg *models.MSentimentConfig,
	log *logger.Logger,
) *Aggregator {
	minSample := cfg.MinSample
	if minSample < 1 {
		minSample = DefaultMinSample
	}
	return &Aggregator{
		Store:      store,
		Scorer:     scorer,
		Windows:    windows,
		MinSample:  minSample,
		Attempts:   cfg.StoreRetries,
		RetryDelay: defaultRetryDelay,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

// Aggregate returns the sample for the window that starts at days[i] and ends
// at the open of days[i+1]. i must be in [0, len(days)-2].
//
// The returned sample carries the window even when err is non-nil.
func (a *Aggregator) Aggregate(ctx context.Context, ticker string, days []models.MTradingDay, i int) (models.MSentimentSample, error) {
	w, err := a.Windows.BuildAt(ticker, days, i)
	if err != nil {
		return models.MSentimentSample{}, err
	}

	op := fmt.Sprintf("window %s [%d, %d)", ticker, w.StartEpoch, w.EndEpoch)
	sample, err := helpers.RetryWithBackoff(ctx, op, a.Attempts, a.RetryDelay, a.Logger, func() (models.MSentimentSample, error) {
		return a.sampleWindow(ctx, w)
	})
	if err != nil {
		return models.MSentimentSample{Window: w}, err
	}
	return sample, nil
}

// -----------------------------------------------------------------------------

// sampleWindow runs one uninterrupted count/fetch/score pass. Store calls
// ignore cancellation so a window is never abandoned halfway.
func (a *Aggregator) sampleWindow(ctx context.Context, w models.MWindow) (models.MSentimentSample, error) {
	ctx = context.WithoutCancel(ctx)
	sample := models.MSentimentSample{Window: w}

	view := a.Store
	if snapshots, ok := a.Store.(interfaces.ISnapshotStore); ok {
		snap, err := snapshots.Snapshot(ctx)
		if err != nil {
			return sample, err
		}
		defer func() {
			if err := snap.Release(); err != nil && a.Logger != nil {
				a.Logger.Warning("release snapshot for %s: %v", w.Ticker, err)
			}
		}()
		view = snap
	}

	count, err := view.Count(ctx, w.Ticker, w.StartEpoch, w.EndEpoch)
	if err != nil {
		return sample, err
	}
	sample.HeadlineCount = count

	if !Admit(count, a.MinSample) {
		return sample, nil
	}

	texts, err := view.FetchText(ctx, w.Ticker, w.StartEpoch, w.EndEpoch)
	if err != nil {
		return sample, err
	}
	if len(texts) == 0 {
		return sample, nil
	}

	scores := make([]float64, len(texts))
	for k, text := range texts {
		scores[k] = a.Scorer.Score(text)
	}
	sample.MeanCompoundScore = null.FloatFrom(stat.Mean(scores, nil))

	return sample, nil
}
