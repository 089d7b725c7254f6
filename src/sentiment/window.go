package sentiment

import (
	"time"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/models"
)

// -----------------------------------------------------------------------------
// WindowBuilder
// -----------------------------------------------------------------------------

// WindowBuilder turns a trading day and the calendar-day gap to the next
// session into the half-open headline window [open(day), open(day+gap)).
type WindowBuilder struct {
	OpenHour   int
	OpenMinute int
	Location   *time.Location
}

// NewWindowBuilder parses openTime as HH:MM in loc. A nil loc means UTC.
func NewWindowBuilder(openTime string, loc *time.Location) (*WindowBuilder, error) {
	t, err := time.Parse("15:04", openTime)
	if err != nil {
		return nil, helpers.NewValidationError("invalid window open time %q: %v", openTime, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &WindowBuilder{OpenHour: t.Hour(), OpenMinute: t.Minute(), Location: loc}, nil
}

// -----------------------------------------------------------------------------

// OpenAt returns the window open instant on the calendar date carried by day.
// Only the year, month and day fields of day are used.
func (b *WindowBuilder) OpenAt(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, b.OpenHour, b.OpenMinute, 0, 0, b.Location)
}

// -----------------------------------------------------------------------------

// Build returns the window starting at day's open and spanning gapDays
// calendar days. The end is the open gapDays later on the wall clock, so a
// DST change inside the window stretches or shrinks it by an hour instead of
// leaving a hole before the next window.
func (b *WindowBuilder) Build(ticker string, day time.Time, gapDays int) (models.MWindow, error) {
	if gapDays <= 0 {
		return models.MWindow{}, helpers.NewInvalidGapError(-1, day, day.AddDate(0, 0, gapDays), gapDays)
	}

	start := b.OpenAt(day)
	end := start.AddDate(0, 0, gapDays)

	return models.MWindow{
		Ticker:     ticker,
		StartEpoch: start.Unix(),
		EndEpoch:   end.Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

// BuildAt builds the window for row i of days, which must have a successor.
func (b *WindowBuilder) BuildAt(ticker string, days []models.MTradingDay, i int) (models.MWindow, error) {
	if i < 0 || i >= len(days)-1 {
		return models.MWindow{}, helpers.NewValidationError("window index %d out of range for %d trading days", i, len(days))
	}

	from, to := days[i].Date, days[i+1].Date
	gap := GapDays(from, to)
	if gap <= 0 {
		return models.MWindow{}, helpers.NewInvalidGapError(i, from, to, gap)
	}

	return b.Build(ticker, from, gap)
}

// -----------------------------------------------------------------------------

// GapDays counts calendar days between the dates carried by from and to,
// ignoring clock time and location offsets.
func GapDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
