package helpers

import (
	"context"
	"fmt"
	"time"

	"sentiment-aligner/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type AlignerError struct {
	Message string
	Cause   error
}

func (e *AlignerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AlignerError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As
type ConfigurationError struct{ AlignerError }
type DataSourceError struct{ AlignerError }
type ValidationError struct{ AlignerError }

// StoreUnavailableError means the headline resource could not be opened or
// reached. It always aborts the run.
type StoreUnavailableError struct{ AlignerError }

// DatabaseError is a failed query against an otherwise reachable store. It
// only affects the window being aggregated.
type DatabaseError struct{ AlignerError }

// InvalidGapError reports a non-positive day gap between consecutive rows.
type InvalidGapError struct {
	AlignerError
	Index   int
	From    time.Time
	To      time.Time
	GapDays int
}

// NonTradingDayError reports a row whose date is not an exchange session.
type NonTradingDayError struct {
	AlignerError
	Date time.Time
}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{AlignerError{Message: message, Cause: cause}}
}

func NewStoreUnavailableError(message string, cause error) *StoreUnavailableError {
	return &StoreUnavailableError{AlignerError{Message: message, Cause: cause}}
}

func NewDatabaseError(message string, cause error) *DatabaseError {
	return &DatabaseError{AlignerError{Message: message, Cause: cause}}
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{AlignerError{Message: fmt.Sprintf(format, args...)}}
}

func NewDataSourceError(message string, cause error) *DataSourceError {
	return &DataSourceError{AlignerError{Message: message, Cause: cause}}
}

func NewInvalidGapError(index int, from, to time.Time, gapDays int) *InvalidGapError {
	return &InvalidGapError{
		AlignerError: AlignerError{Message: fmt.Sprintf(
			"invalid day gap %d between row %d (%s) and row %d (%s)",
			gapDays, index, from.Format(time.DateOnly), index+1, to.Format(time.DateOnly))},
		Index:   index,
		From:    from,
		To:      to,
		GapDays: gapDays,
	}
}

func NewNonTradingDayError(date time.Time, reason string) *NonTradingDayError {
	return &NonTradingDayError{
		AlignerError: AlignerError{Message: fmt.Sprintf("%s is not a trading day: %s", date.Format(time.DateOnly), reason)},
		Date:         date,
	}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxAttempts times with exponential backoff.
// Values below 1 are treated as a single attempt. Waiting stops early when
// ctx is done.
func RetryWithBackoff[T any](
	ctx context.Context,
	operation string,
	maxAttempts int,
	baseDelay time.Duration,
	log *logger.Logger,
	fn func() (T, error),
) (T, error) {
	var zero T
	var lastErr error

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxAttempts-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxAttempts, operation, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, lastErr
		}
	}

	return zero, lastErr
}
