package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"sentiment-aligner/src/interfaces"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// ReportServer
// -----------------------------------------------------------------------------

type ReportServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	http   *http.Server
	closed bool

	// Local cache
	latestState *models.MLatestData
	stateMutex  sync.RWMutex
}

var _ interfaces.IDataExchanger = (*ReportServer)(nil)

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewReportServer(cfg *models.MConfig, logger *logger.Logger) *ReportServer {
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &ReportServer{
		Config: cfg,
		Logger: logger,
		engine: gin.New(),
		latestState: &models.MLatestData{
			Reports:           make(map[string]models.MReport),
			ProcessingMetrics: make(map[string]models.MProcessingMetrics),
		},
	}
	s.engine.Use(gin.Recovery())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *ReportServer) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/reports", s.listReports)
	s.engine.GET("/api/reports/:ticker", s.getReport)
}

// Handler exposes the router for embedding and tests.
func (s *ReportServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start blocks serving until Stop is called.
func (s *ReportServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.Info("Starting report server on %s", addr)

	s.stateMutex.Lock()
	if s.closed {
		s.stateMutex.Unlock()
		return nil
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.http
	s.stateMutex.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop shuts the listener down. A server stopped before Start never listens.
func (s *ReportServer) Stop(ctx context.Context) error {
	s.stateMutex.Lock()
	s.closed = true
	srv := s.http
	s.stateMutex.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// -----------------------------------------------------------------------------

// Publish replaces the cached report of report.Ticker.
func (s *ReportServer) Publish(report models.MReport, metrics models.MProcessingMetrics) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	ticker := strings.ToUpper(report.Ticker)
	s.latestState.Reports[ticker] = report
	s.latestState.ProcessingMetrics[ticker] = metrics
	s.latestState.Timestamp = time.Now().Unix()
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *ReportServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	reports := len(s.latestState.Reports)
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"reports":       reports,
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

type reportSummary struct {
	Ticker      string                    `json:"ticker"`
	Correlation models.MCorrelationReport `json:"correlation"`
	Metrics     models.MProcessingMetrics `json:"processing_metrics"`
}

func (s *ReportServer) listReports(c *gin.Context) {
	s.stateMutex.RLock()
	summaries := make([]reportSummary, 0, len(s.latestState.Reports))
	for ticker, r := range s.latestState.Reports {
		summaries = append(summaries, reportSummary{
			Ticker:      ticker,
			Correlation: r.Correlation,
			Metrics:     s.latestState.ProcessingMetrics[ticker],
		})
	}
	s.stateMutex.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Ticker < summaries[j].Ticker
	})

	c.JSON(http.StatusOK, gin.H{"reports": summaries})
}

// -----------------------------------------------------------------------------

func (s *ReportServer) getReport(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))

	s.stateMutex.RLock()
	report, ok := s.latestState.Reports[ticker]
	s.stateMutex.RUnlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no report for %s", ticker)})
		return
	}
	c.JSON(http.StatusOK, report)
}
