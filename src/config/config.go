package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/models"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// LoadEnv loads a dotenv file into the process environment. A missing file
// is fine; an unreadable or malformed one is not.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return helpers.NewConfigurationError(fmt.Sprintf("failed to load env file '%s'", path), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a Config from raw YAML. Defaults are applied first so that any
// value present in the document wins, including explicit false.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := defaults.Set(&modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to apply config defaults", err)
	}

	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyEnvOverrides()

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyEnvOverrides lets deployment secrets and paths live outside the YAML file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.DBConnectionString = v
	}
	if v := os.Getenv("HEADLINES_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		var tickers []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, strings.ToUpper(t))
			}
		}
		c.Tickers = tickers
	}
}

// -----------------------------------------------------------------------------

// Validate performs configuration validation
func (c *Config) Validate() error {
	if err := validator.New().Struct(c.MConfig); err != nil {
		return err
	}

	start, end := c.Period()
	if !start.Before(end) {
		return fmt.Errorf("start_date %s must be before end_date %s", c.StartDate, c.EndDate)
	}

	if _, err := time.LoadLocation(c.Sentiment.Timezone); err != nil {
		return fmt.Errorf("unknown sentiment timezone '%s': %w", c.Sentiment.Timezone, err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Period returns the configured date range. Only valid after Validate.
func (c *Config) Period() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, c.StartDate)
	end, _ := time.Parse(dateLayout, c.EndDate)
	return start, end
}

// -----------------------------------------------------------------------------

// Location returns the timezone windows are anchored in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Sentiment.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
