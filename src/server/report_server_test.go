package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *ReportServer {
	cfg := &models.MConfig{LogLevel: "info", Server: models.MServerConfig{Host: "127.0.0.1", Port: 8085}}
	return NewReportServer(cfg, logger.NewLogger(nil, "ServerTest"))
}

func get(t *testing.T, s *ReportServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestReportServer_Health(t *testing.T) {
	rec := get(t, newTestServer(), "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["reports"])
}

func TestReportServer_PublishAndFetch(t *testing.T) {
	s := newTestServer()
	s.Publish(models.MReport{
		Ticker:      "amzn",
		Correlation: models.MCorrelationReport{Pairs: 2, Correlation: null.FloatFrom(0.5)},
	}, models.MProcessingMetrics{WindowsProcessed: 3})
	s.Publish(models.MReport{Ticker: "AAPL"}, models.MProcessingMetrics{})

	rec := get(t, s, "/api/reports/AMZN")
	require.Equal(t, http.StatusOK, rec.Code)
	var report models.MReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Correlation.Pairs)
	assert.InDelta(t, 0.5, report.Correlation.Correlation.Float64, 1e-12)

	rec = get(t, s, "/api/reports")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Reports []reportSummary `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Reports, 2)
	assert.Equal(t, "AAPL", list.Reports[0].Ticker)
	assert.Equal(t, 3, list.Reports[1].Metrics.WindowsProcessed)
}

func TestReportServer_UnknownTicker(t *testing.T) {
	rec := get(t, newTestServer(), "/api/reports/MSFT")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportServer_StopBeforeStart(t *testing.T) {
	assert.NoError(t, newTestServer().Stop(t.Context()))
}
