package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"sentiment-aligner/src/analysis/core"
	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/interfaces"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// DailySource fetches daily adjusted closes from the Yahoo chart API.
type DailySource struct {
	BaseURL string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

var _ interfaces.IPriceSource = (*DailySource)(nil)

// -----------------------------------------------------------------------------

func NewDailySource(netMgr interfaces.INetworkManager, log *logger.Logger) *DailySource {
	return &DailySource{
		BaseURL: DefaultBaseURL,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (s *DailySource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchTradingDays returns the sessions in [start, end] with daily returns.
// Rows with a missing or non-positive close are dropped before returns are
// computed.
func (s *DailySource) FetchTradingDays(ctx context.Context, ticker string, start, end time.Time) ([]models.MTradingDay, error) {
	params := map[string]string{
		"interval":       "1d",
		"period1":        strconv.FormatInt(dateOnly(start).Unix(), 10),
		"period2":        strconv.FormatInt(dateOnly(end).AddDate(0, 0, 1).Unix(), 10),
		"events":         "div,splits",
		"includePrePost": "false",
	}

	respBytes, err := s.Network.Get(ctx, s.BaseURL+ticker, params)
	if err != nil {
		return nil, helpers.NewDataSourceError(fmt.Sprintf("fetch daily prices for %s", ticker), err)
	}

	days, err := s.parseChartResponse(ticker, respBytes)
	if err != nil {
		return nil, err
	}

	days = filterRange(days, start, end)
	if len(days) == 0 {
		return nil, helpers.NewDataSourceError(fmt.Sprintf("no trading days for %s in range", ticker), nil)
	}

	s.Logger.Info("YahooFinance: %s %d trading days %s..%s", ticker, len(days),
		days[0].Date.Format(time.DateOnly), days[len(days)-1].Date.Format(time.DateOnly))

	return core.DailyReturns(days), nil
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string `json:"currency"`
				Symbol               string `json:"symbol"`
				ExchangeName         string `json:"exchangeName"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				DataGranularity      string `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"` // Use pointers to handle null
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *DailySource) parseChartResponse(symbol string, data []byte) ([]models.MTradingDay, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewDataSourceError("json unmarshal failed", err)
	}

	if resp.Chart.Error != nil {
		return nil, helpers.NewDataSourceError(
			fmt.Sprintf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description), nil)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, helpers.NewDataSourceError(fmt.Sprintf("no result in response for %s", symbol), nil)
	}

	result := resp.Chart.Result[0]

	// Adjusted closes when present, raw closes otherwise.
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	if len(closes) != len(result.Timestamp) {
		return nil, helpers.NewDataSourceError(fmt.Sprintf("data alignment error for %s", symbol), nil)
	}

	loc := time.UTC
	if name := result.Meta.ExchangeTimezoneName; name != "" {
		if l, err := time.LoadLocation(name); err == nil {
			loc = l
		}
	}

	byDate := make(map[time.Time]models.MTradingDay, len(closes))
	for i, ts := range result.Timestamp {
		if closes[i] == nil || *closes[i] <= 0 {
			s.Logger.Debug("Skipping invalid close for %s at index %d", symbol, i)
			continue
		}
		date := dateOnly(time.Unix(ts, 0).In(loc))
		byDate[date] = models.MTradingDay{
			Date:          date,
			AdjustedClose: decimal.NewFromFloat(*closes[i]),
		}
	}

	days := make([]models.MTradingDay, 0, len(byDate))
	for _, d := range byDate {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	return days, nil
}

// -----------------------------------------------------------------------------

// dateOnly keeps the calendar date of t as UTC midnight.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func filterRange(days []models.MTradingDay, start, end time.Time) []models.MTradingDay {
	lo, hi := dateOnly(start), dateOnly(end)
	out := days[:0]
	for _, d := range days {
		if d.Date.Before(lo) || d.Date.After(hi) {
			continue
		}
		out = append(out, d)
	}
	return out
}
