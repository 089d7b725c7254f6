package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"sentiment-aligner/src/config"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"
	"sentiment-aligner/src/storage"
)

// seed loads a JSON array of news items (Finnhub company-news shape) into
// the configured headline store.
func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional dotenv file")
	input := flag.String("input", "", "JSON file with headlines")
	ticker := flag.String("ticker", "", "ticker for items without one")
	flag.Parse()

	if err := config.LoadEnv(*envPath); err != nil {
		fmt.Printf("Error loading env file: %v\n", err)
		os.Exit(1)
	}

	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	appLogger := logger.NewLogger(conf.MConfig, "Seed")

	if err := seed(context.Background(), conf.MConfig, *input, strings.ToUpper(*ticker), appLogger); err != nil {
		appLogger.Critical("Seed failed: %v", err)
	}
}

func seed(ctx context.Context, cfg *models.MConfig, input, ticker string, log *logger.Logger) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	var headlines []models.MHeadline
	if err := json.Unmarshal(data, &headlines); err != nil {
		return fmt.Errorf("decode %s: %w", input, err)
	}
	for i := range headlines {
		if headlines[i].Ticker == "" {
			headlines[i].Ticker = ticker
		}
		if headlines[i].Ticker == "" {
			return fmt.Errorf("item %d has no ticker and -ticker is not set", i)
		}
	}

	storeCfg := cfg.Storage
	storeCfg.ReadOnly = false
	storeCfg.CreateIfMissing = true

	db, err := storage.NewHeadlineDatabase(&storeCfg, log)
	if err != nil {
		return err
	}
	if err := db.Open(ctx); err != nil {
		return err
	}
	defer db.Close()

	if err := db.Initialize(ctx); err != nil {
		return err
	}
	if err := db.SaveHeadlinesBulk(ctx, headlines); err != nil {
		return err
	}

	log.Info("Seeded %d headlines from %s", len(headlines), input)
	return nil
}
