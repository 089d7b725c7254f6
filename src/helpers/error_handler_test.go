package helpers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	res, err := RetryWithBackoff(context.Background(), "count", 3, time.Millisecond, nil, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, res)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ReturnsLastError(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(context.Background(), "count", 2, time.Millisecond, nil, func() (int, error) {
		calls++
		return 0, errors.New("still broken")
	})

	assert.EqualError(t, err, "still broken")
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoff_SingleAttemptWhenNonPositive(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(context.Background(), "count", 0, time.Hour, nil, func() (string, error) {
		calls++
		return "", errors.New("nope")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestErrorTypes_Unwrap(t *testing.T) {
	cause := errors.New("no such file")
	var err error = NewStoreUnavailableError("open headline store", cause)

	var unavailable *StoreUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "open headline store: no such file", err.Error())

	day := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	gap := NewInvalidGapError(3, day, day, 0)
	assert.Equal(t, 3, gap.Index)
	assert.Contains(t, gap.Error(), "invalid day gap 0 between row 3 (2021-01-04)")
}
