package yahoo

import (
	"context"
	"errors"
	"testing"
	"time"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetwork struct {
	body   []byte
	err    error
	url    string
	params map[string]string
}

func (f *fakeNetwork) Get(_ context.Context, url string, params map[string]string) ([]byte, error) {
	f.url = url
	f.params = params
	return f.body, f.err
}

// Four sessions 2021-01-04..07 at the NY open, one null close, listed out of order.
const chartFixture = `{"chart":{"result":[{
	"meta":{"symbol":"AMZN","exchangeTimezoneName":"America/New_York","dataGranularity":"1d"},
	"timestamp":[1609857000,1609770600,1609943400,1610029800],
	"indicators":{
		"quote":[{"close":[3200.0,3100.0,null,3300.0]}],
		"adjclose":[{"adjclose":[3218.51,3186.63,null,3138.38]}]
	}
}],"error":null}}`

func date(s string) time.Time {
	d, _ := time.Parse(time.DateOnly, s)
	return d
}

func TestFetchTradingDays_ParsesAdjustedCloses(t *testing.T) {
	net := &fakeNetwork{body: []byte(chartFixture)}
	src := NewDailySource(net, logger.NewLogger(nil, "YahooTest"))

	days, err := src.FetchTradingDays(context.Background(), "AMZN", date("2021-01-01"), date("2021-01-31"))
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL+"AMZN", net.url)
	assert.Equal(t, "1d", net.params["interval"])
	assert.Equal(t, "1609459200", net.params["period1"])

	require.Len(t, days, 3)
	assert.Equal(t, date("2021-01-04"), days[0].Date)
	assert.Equal(t, date("2021-01-05"), days[1].Date)
	assert.Equal(t, date("2021-01-07"), days[2].Date)
	assert.Equal(t, "3186.63", days[0].AdjustedClose.String())

	assert.False(t, days[0].DailyReturn.Valid)
	assert.InDelta(t, 3218.51/3186.63-1, days[1].DailyReturn.Float64, 1e-9)
	assert.InDelta(t, 3138.38/3218.51-1, days[2].DailyReturn.Float64, 1e-9)
}

func TestFetchTradingDays_FiltersRange(t *testing.T) {
	src := NewDailySource(&fakeNetwork{body: []byte(chartFixture)}, logger.NewLogger(nil, "YahooTest"))

	days, err := src.FetchTradingDays(context.Background(), "AMZN", date("2021-01-05"), date("2021-01-06"))
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, date("2021-01-05"), days[0].Date)
	assert.False(t, days[0].DailyReturn.Valid)
}

func TestFetchTradingDays_Errors(t *testing.T) {
	log := logger.NewLogger(nil, "YahooTest")
	var dsErr *helpers.DataSourceError

	_, err := NewDailySource(&fakeNetwork{err: errors.New("timeout")}, log).
		FetchTradingDays(context.Background(), "AMZN", date("2021-01-01"), date("2021-01-31"))
	assert.True(t, errors.As(err, &dsErr))

	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`
	_, err = NewDailySource(&fakeNetwork{body: []byte(body)}, log).
		FetchTradingDays(context.Background(), "NOPE", date("2021-01-01"), date("2021-01-31"))
	assert.True(t, errors.As(err, &dsErr))

	_, err = NewDailySource(&fakeNetwork{body: []byte(chartFixture)}, log).
		FetchTradingDays(context.Background(), "AMZN", date("2022-01-01"), date("2022-01-31"))
	assert.True(t, errors.As(err, &dsErr))
}
