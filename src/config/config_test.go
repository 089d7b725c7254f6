package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"sentiment-aligner/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
tickers: [AMZN]
start_date: "2020-09-22"
end_date: "2021-02-22"
storage:
  db_path: "financial_data.db"
`

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "sentiment-aligner", cfg.Name)
	assert.Equal(t, 30, cfg.Sentiment.MinSample)
	assert.Equal(t, "09:30", cfg.Sentiment.WindowOpenTime)
	assert.Equal(t, "fin-lex-1.0", cfg.Sentiment.LexiconVersion)
	assert.Equal(t, "America/New_York", cfg.Sentiment.Timezone)
	assert.True(t, cfg.Sentiment.ValidateTradingDays)
	assert.Equal(t, 1, cfg.Sentiment.Workers)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
	assert.True(t, cfg.Storage.ReadOnly)
}

func TestParse_ExplicitValuesOverrideDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + `
sentiment:
  min_sample: 10
  window_open_time: "08:00"
  validate_trading_days: false
`))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Sentiment.MinSample)
	assert.Equal(t, "08:00", cfg.Sentiment.WindowOpenTime)
	assert.False(t, cfg.Sentiment.ValidateTradingDays)
}

func TestParse_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no tickers": `
start_date: "2021-01-01"
end_date: "2021-02-01"
storage: {db_path: "x.db"}
`,
		"reversed dates": `
tickers: [AMZN]
start_date: "2021-02-01"
end_date: "2021-01-01"
storage: {db_path: "x.db"}
`,
		"bad open time": minimalYAML + `
sentiment:
  window_open_time: "9h30"
`,
		"zero min sample": minimalYAML + `
sentiment:
  min_sample: 0
`,
		"postgres without dsn": `
tickers: [AMZN]
start_date: "2021-01-01"
end_date: "2021-02-01"
storage: {db_type: postgres}
`,
		"unknown timezone": minimalYAML + `
sentiment:
  timezone: "Mars/Olympus"
`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			var confErr *helpers.ConfigurationError
			assert.True(t, errors.As(err, &confErr), "got %v", err)
		})
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("TICKERS", "aapl, msft")
	t.Setenv("HEADLINES_DB_PATH", "/data/headlines.db")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Tickers)
	assert.Equal(t, "/data/headlines.db", cfg.Storage.DBPath)
}

func TestNewConfig_MissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	var confErr *helpers.ConfigurationError
	require.True(t, errors.As(err, &confErr))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadEnv(filepath.Join(dir, "absent.env")))
		assert.NoError(t, LoadEnv(""))
	})

	t.Run("values reach the environment", func(t *testing.T) {
		path := filepath.Join(dir, "ok.env")
		require.NoError(t, os.WriteFile(path, []byte("SENTIMENT_ALIGNER_TEST_KEY=loaded\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("SENTIMENT_ALIGNER_TEST_KEY") })

		require.NoError(t, LoadEnv(path))
		assert.Equal(t, "loaded", os.Getenv("SENTIMENT_ALIGNER_TEST_KEY"))
	})

	t.Run("malformed file fails", func(t *testing.T) {
		path := filepath.Join(dir, "bad.env")
		require.NoError(t, os.WriteFile(path, []byte("DATABASE_URL=\"postgres://unterminated\n"), 0o644))

		err := LoadEnv(path)
		var confErr *helpers.ConfigurationError
		assert.True(t, errors.As(err, &confErr))
	})
}
