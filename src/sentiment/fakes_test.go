package sentiment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sentiment-aligner/src/interfaces"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"

	"github.com/guregu/null/v6"
)

var newYork = mustLocation("America/New_York")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func day(s string, ret float64) models.MTradingDay {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return models.MTradingDay{Date: d, DailyReturn: null.FloatFrom(ret)}
}

// headlinesAt spreads texts one second apart from at.
func headlinesAt(ticker string, at time.Time, texts ...string) []models.MHeadline {
	out := make([]models.MHeadline, len(texts))
	for k, text := range texts {
		out[k] = models.MHeadline{Ticker: ticker, Timestamp: at.Unix() + int64(k), Text: text}
	}
	return out
}

func repeat(text string, n int) []string {
	out := make([]string, n)
	for k := range out {
		out[k] = text
	}
	return out
}

// -----------------------------------------------------------------------------

type fakeStore struct {
	mu        sync.Mutex
	headlines []models.MHeadline
	fail      map[int64]error // keyed by window start
	failOnce  map[int64]error
	queries   int
}

func (s *fakeStore) check(start int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if err, ok := s.failOnce[start]; ok {
		delete(s.failOnce, start)
		return err
	}
	return s.fail[start]
}

func (s *fakeStore) Count(_ context.Context, ticker string, start, end int64) (int, error) {
	if err := s.check(start); err != nil {
		return 0, err
	}
	n := 0
	for _, h := range s.headlines {
		if h.Ticker == ticker && h.Timestamp >= start && h.Timestamp < end {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) FetchText(_ context.Context, ticker string, start, end int64) ([]string, error) {
	var texts []string
	for _, h := range s.headlines {
		if h.Ticker == ticker && h.Timestamp >= start && h.Timestamp < end {
			texts = append(texts, h.Text)
		}
	}
	return texts, nil
}

// snapshotStore records snapshot usage on top of fakeStore.
type snapshotStore struct {
	*fakeStore
	opened   int
	released int
}

type fakeSnapshot struct {
	*fakeStore
	parent *snapshotStore
}

func (s *snapshotStore) Snapshot(context.Context) (interfaces.IHeadlineSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
	return &fakeSnapshot{fakeStore: s.fakeStore, parent: s}, nil
}

func (f *fakeSnapshot) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parent.released++
	return nil
}

// -----------------------------------------------------------------------------

type tableScorer map[string]float64

func (t tableScorer) Score(text string) float64 { return t[text] }
func (t tableScorer) Version() string            { return "table" }

// -----------------------------------------------------------------------------

func newTestAligner(store interfaces.IHeadlineStore, scorer interfaces.IPolarityScorer, minSample, workers int) *Aligner {
	windows, err := NewWindowBuilder("09:30", newYork)
	if err != nil {
		panic(fmt.Sprintf("window builder: %v", err))
	}
	cfg := &models.MSentimentConfig{MinSample: minSample, StoreRetries: 1, Workers: workers}
	log := logger.NewLogger(nil, "SentimentTest")

	agg := NewAggregator(store, scorer, windows, cfg, log)
	agg.RetryDelay = time.Millisecond
	return NewAligner(agg, cfg, log)
}
