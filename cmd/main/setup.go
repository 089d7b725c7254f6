package main

import (
	"context"
	"fmt"
	"time"

	"sentiment-aligner/src/analysis"
	"sentiment-aligner/src/config"
	"sentiment-aligner/src/data_source/yahoo"
	"sentiment-aligner/src/interfaces"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"
	"sentiment-aligner/src/network"
	"sentiment-aligner/src/sentiment"
	"sentiment-aligner/src/storage"
	"sentiment-aligner/src/utils"
)

// -----------------------------------------------------------------------------

// setupDatabase opens the headline store. A writable store created on demand
// also gets its schema.
func setupDatabase(ctx context.Context, cfg *models.MConfig, appLogger *logger.Logger) (interfaces.IHeadlineDatabase, error) {
	db, err := storage.NewHeadlineDatabase(&cfg.Storage, logger.NewLogger(cfg, "HeadlineStore"))
	if err != nil {
		return nil, err
	}

	if err := db.Open(ctx); err != nil {
		appLogger.Error("Failed to open headline store: %v", err)
		return nil, err
	}

	if !cfg.Storage.ReadOnly && cfg.Storage.CreateIfMissing {
		if err := db.Initialize(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// -----------------------------------------------------------------------------

type pipeline struct {
	conf      *config.Config
	store     interfaces.IHeadlineStore
	scorer    interfaces.IPolarityScorer
	source    interfaces.IPriceSource
	calendars *utils.CalendarRegistry
	aligners  map[string]*sentiment.Aligner // keyed by window location
	analyzer  *analysis.AnalysisFacade
	exchanger interfaces.IDataExchanger
	logger    *logger.Logger
}

func newPipeline(conf *config.Config, store interfaces.IHeadlineStore, appLogger *logger.Logger) (*pipeline, error) {
	cfg := conf.MConfig

	scorer, err := sentiment.NewLexiconScorer(cfg.Sentiment.LexiconVersion)
	if err != nil {
		return nil, err
	}

	// Reject a bad open time up front rather than on the first ticker.
	if _, err := sentiment.NewWindowBuilder(cfg.Sentiment.WindowOpenTime, conf.Location()); err != nil {
		return nil, err
	}

	netMgr := network.NewAsyncNetworkManager(cfg, logger.NewLogger(cfg, "NetworkManager"))
	start, end := conf.Period()

	return &pipeline{
		conf:      conf,
		store:     store,
		scorer:    scorer,
		source:    yahoo.NewDailySource(netMgr, logger.NewLogger(cfg, "YahooDailySource")),
		calendars: utils.NewCalendarRegistry(cfg.Tickers, start.Year(), end.Year(), logger.NewLogger(cfg, "CalendarRegistry")),
		aligners:  make(map[string]*sentiment.Aligner),
		analyzer:  analysis.NewAnalysisFacade(cfg, logger.NewLogger(cfg, "Analysis")),
		logger:    appLogger,
	}, nil
}

// alignerFor returns the aligner whose windows open in the ticker's exchange
// zone, building one per distinct zone.
func (p *pipeline) alignerFor(ticker string) (*sentiment.Aligner, error) {
	loc := p.calendars.ForSymbol(ticker).WindowLocation(p.conf.Location())
	if a, ok := p.aligners[loc.String()]; ok {
		return a, nil
	}

	cfg := p.conf.MConfig
	windows, err := sentiment.NewWindowBuilder(cfg.Sentiment.WindowOpenTime, loc)
	if err != nil {
		return nil, err
	}
	aggregator := sentiment.NewAggregator(p.store, p.scorer, windows, &cfg.Sentiment, logger.NewLogger(cfg, "Aggregator"))
	a := sentiment.NewAligner(aggregator, &cfg.Sentiment, logger.NewLogger(cfg, "Aligner"))
	p.aligners[loc.String()] = a
	return a, nil
}

// -----------------------------------------------------------------------------

// processTicker runs fetch, validate, align, report and publish for one ticker.
func (p *pipeline) processTicker(ctx context.Context, ticker string, start, end time.Time) error {
	log := p.logger.With("ticker", ticker)

	days, err := p.source.FetchTradingDays(ctx, ticker, start, end)
	if err != nil {
		return err
	}

	if p.conf.Sentiment.ValidateTradingDays {
		if err := p.calendars.ForSymbol(ticker).ValidateTradingDays(days); err != nil {
			return err
		}
	}

	aligner, err := p.alignerFor(ticker)
	if err != nil {
		return err
	}
	log.Debug("windows open at %s %s", p.conf.Sentiment.WindowOpenTime, aligner.Aggregator.Windows.Location)

	alignment, err := aligner.Align(ctx, ticker, days)
	if err != nil {
		return err
	}

	report := p.analyzer.BuildReport(alignment)
	path, err := analysis.SaveReport(p.conf.OutputDir, report)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	log.Info("report written to %s", path)

	if p.exchanger != nil {
		p.exchanger.Publish(report, alignment.Metrics)
	}
	return nil
}
