package utils

import (
	"sync"

	"sentiment-aligner/src/logger"
)

// CalendarRegistry hands out one TradingCalendar per exchange and maps
// tickers onto them. Calendars are loaded for FromYear..ToYear.
type CalendarRegistry struct {
	Calendars map[string]*TradingCalendar // keyed by MIC
	FromYear  int
	ToYear    int
	Logger    *logger.Logger
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewCalendarRegistry(symbols []string, fromYear, toYear int, l *logger.Logger) *CalendarRegistry {
	r := &CalendarRegistry{
		Calendars: make(map[string]*TradingCalendar),
		FromYear:  fromYear,
		ToYear:    toYear,
		Logger:    l,
	}
	for _, symbol := range symbols {
		r.ForSymbol(symbol)
	}
	if l != nil {
		l.Info("CalendarRegistry: Mapped %d symbols to %d unique calendars.", len(symbols), r.Len())
	}
	return r
}

// -----------------------------------------------------------------------------

// ForSymbol returns the calendar of the symbol's exchange, loading it once.
func (r *CalendarRegistry) ForSymbol(symbol string) *TradingCalendar {
	mic := MICForSymbol(symbol)

	r.mu.RLock()
	cal, ok := r.Calendars[mic]
	r.mu.RUnlock()
	if ok {
		return cal
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cal, ok := r.Calendars[mic]; ok {
		return cal
	}
	cal = GetCalendar(mic, r.FromYear, r.ToYear, r.Logger)
	r.Calendars[mic] = cal
	return cal
}

// Len reports the number of loaded calendars.
func (r *CalendarRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Calendars)
}
