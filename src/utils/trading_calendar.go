package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"

	"github.com/scmhub/calendar"
)

// Yahoo style ticker suffix to exchange MIC (ISO 10383). Unlisted suffixes
// map to NYSE.
var suffixToMIC = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".BR": "xbru",
	".MI": "xmil",
	".MC": "xmad",
	".ST": "xsto",
	".CO": "xcse",
	".HE": "xhel",
	".VI": "xwbo",
	".SW": "xswx",
	".TO": "xtse",
	".V":  "xtsx",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
	".KS": "xkrx",
	".TW": "xtai",
	".SS": "xshg",
	".SZ": "xshe",
}

const defaultMIC = "xnys"

// TradingCalendar answers session questions for one exchange using
// scmhub/calendar. Holidays are only known for [FromYear, ToYear].
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
	FromYear int
	ToYear   int
	mu       sync.Mutex
}

// -----------------------------------------------------------------------------

// MICForSymbol resolves the exchange of a ticker from its suffix.
func MICForSymbol(symbol string) string {
	if i := strings.LastIndex(symbol, "."); i > 0 {
		if mic, ok := suffixToMIC[strings.ToUpper(symbol[i:])]; ok {
			return mic
		}
	}
	return defaultMIC
}

// -----------------------------------------------------------------------------

// GetCalendar loads the calendar for mic covering fromYear..toYear, falling
// back to NYSE and finally to a plain Monday to Friday calendar in New York
// time.
func GetCalendar(mic string, fromYear, toYear int, log *logger.Logger) *TradingCalendar {
	if fromYear > toYear {
		fromYear, toYear = toYear, fromYear
	}

	cal := calendar.GetCalendar(mic, fromYear, toYear)
	if cal == nil && mic != defaultMIC {
		if log != nil {
			log.Warning("No calendar for MIC '%s', using '%s'", mic, defaultMIC)
		}
		mic = defaultMIC
		cal = calendar.GetCalendar(mic, fromYear, toYear)
	}

	if cal == nil {
		if log != nil {
			log.Warning("Failed to load calendar for MIC '%s'. Using weekday fallback.", mic)
		}
		return NewFallbackCalendar()
	}

	return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc, FromYear: fromYear, ToYear: toYear}
}

// NewFallbackCalendar treats every weekday as a session.
func NewFallbackCalendar() *TradingCalendar {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &TradingCalendar{MIC: "weekday", Fallback: true, Timezone: loc}
}

// -----------------------------------------------------------------------------

// WindowLocation is the zone headline windows open in for this exchange.
// NYSE and the weekday fallback keep the configured zone; other exchanges
// open in their own.
func (tc *TradingCalendar) WindowLocation(configured *time.Location) *time.Location {
	if tc.Fallback || tc.Timezone == nil || tc.MIC == defaultMIC {
		return configured
	}
	return tc.Timezone
}

// -----------------------------------------------------------------------------

// IsTradingDay checks the calendar date carried by date. The check runs at
// local noon so the clock part and zone of date never shift the day. Dates
// outside the loaded years are a ValidationError.
func (tc *TradingCalendar) IsTradingDay(date time.Time) (bool, error) {
	loc := tc.Timezone
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	noon := time.Date(y, m, d, 12, 0, 0, 0, loc)

	if tc.Fallback || tc.Calendar == nil {
		weekday := noon.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday, nil
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	if y < tc.FromYear || y > tc.ToYear {
		return false, helpers.NewValidationError("%s is outside the %s calendar range (%d - %d)",
			date.Format(time.DateOnly), tc.MIC, tc.FromYear, tc.ToYear)
	}
	return tc.businessDay(noon)
}

// businessDay guards against the library panicking on dates it has no
// holiday data for.
func (tc *TradingCalendar) businessDay(t time.Time) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = helpers.NewValidationError("%s calendar lookup for %s: %v", tc.MIC, t.Format(time.DateOnly), r)
		}
	}()
	return tc.Calendar.IsBusinessDay(t), nil
}

// -----------------------------------------------------------------------------

// EnsureYears reloads the holiday tables when fromYear..toYear is not covered.
func (tc *TradingCalendar) EnsureYears(fromYear, toYear int) {
	if tc.Fallback || tc.Calendar == nil {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	if fromYear >= tc.FromYear && toYear <= tc.ToYear {
		return
	}

	fromYear, toYear = min(fromYear, tc.FromYear), max(toYear, tc.ToYear)
	if cal := calendar.GetCalendar(tc.MIC, fromYear, toYear); cal != nil {
		tc.Calendar = cal
		tc.FromYear, tc.ToYear = fromYear, toYear
	}
}

// -----------------------------------------------------------------------------

// ValidateTradingDays ensures the series is strictly ascending and holds only
// exchange sessions, so day gaps reflect real closures.
func (tc *TradingCalendar) ValidateTradingDays(days []models.MTradingDay) error {
	if len(days) == 0 {
		return nil
	}
	tc.EnsureYears(days[0].Date.Year(), days[len(days)-1].Date.Year())

	for i, d := range days {
		if i > 0 {
			prev := days[i-1].Date
			if !dateBefore(prev, d.Date) {
				return helpers.NewValidationError("trading days not strictly ascending at row %d: %s then %s",
					i, prev.Format(time.DateOnly), d.Date.Format(time.DateOnly))
			}
		}
		open, err := tc.IsTradingDay(d.Date)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if !open {
			return helpers.NewNonTradingDayError(d.Date, "closed on "+tc.MIC)
		}
	}
	return nil
}

func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
