package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentiment-aligner/src/config"
	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/interfaces"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/server"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	if err := config.LoadEnv(*envPath); err != nil {
		fmt.Printf("Error loading env file: %v\n", err)
		os.Exit(1)
	}

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, conf, appLogger)
	stop()

	if err != nil {
		appLogger.Critical("Run failed: %v", err)
	}
	appLogger.Info("Done.")
}

// -----------------------------------------------------------------------------

// run owns every resource of one execution; the store is released on all
// return paths before main decides the exit code.
func run(ctx context.Context, conf *config.Config, appLogger *logger.Logger) error {
	db, err := setupDatabase(ctx, conf.MConfig, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Warning("Failed to close headline store: %v", err)
		}
	}()

	p, err := newPipeline(conf, db, appLogger)
	if err != nil {
		return err
	}

	var srv interfaces.IDataExchanger
	if conf.Server.Enabled {
		rs := server.NewReportServer(conf.MConfig, logger.NewLogger(conf.MConfig, "ReportServer"))
		go func() {
			if err := rs.Start(); err != nil {
				appLogger.Error("Server failed: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := rs.Stop(shutdownCtx); err != nil {
				appLogger.Warning("Server shutdown: %v", err)
			}
		}()
		srv = rs
	}
	p.exchanger = srv

	start, end := conf.Period()
	var errs []error
	for _, ticker := range conf.Tickers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if err := p.processTicker(ctx, ticker, start, end); err != nil {
			var unavailable *helpers.StoreUnavailableError
			if errors.As(err, &unavailable) {
				return errors.Join(append(errs, err)...)
			}
			appLogger.Error("%s: %v", ticker, err)
			errs = append(errs, fmt.Errorf("%s: %w", ticker, err))
		}
	}

	if srv != nil && ctx.Err() == nil {
		appLogger.Info("Serving reports until interrupted...")
		<-ctx.Done()
	}

	return errors.Join(errs...)
}
