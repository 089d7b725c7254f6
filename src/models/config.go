package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name" default:"sentiment-aligner" validate:"required"`
	LogLevel  string           `yaml:"log_level" default:"info"`
	LogFormat string           `yaml:"log_format" default:"console" validate:"oneof=console json"`
	Tickers   []string         `yaml:"tickers" validate:"required,min=1,dive,required"`
	StartDate string           `yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string           `yaml:"end_date" validate:"required,datetime=2006-01-02"`
	OutputDir string           `yaml:"output_dir" default:"output"`
	Storage   MStorageConfig   `yaml:"storage"`
	Network   MNetworkConfig   `yaml:"network"`
	Sentiment MSentimentConfig `yaml:"sentiment"`
	Server    MServerConfig    `yaml:"server"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type" default:"sqlite" validate:"oneof=sqlite postgres"`
	DBPath             string `yaml:"db_path" validate:"required_if=DBType sqlite"`
	DBConnectionString string `yaml:"db_connection_string" validate:"required_if=DBType postgres"`
	ReadOnly           bool   `yaml:"read_only" default:"true"`
	CreateIfMissing    bool   `yaml:"create_if_missing"`
	BusyTimeoutMS      int    `yaml:"busy_timeout_ms" default:"5000" validate:"gte=0"`
}

type MNetworkConfig struct {
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout" default:"30" validate:"gt=0"`
	MaxRetries     int      `yaml:"retries" default:"3" validate:"gte=0"`
	UserAgent      string   `yaml:"user_agent"`
}

// MSentimentConfig holds the windowing and admission settings.
type MSentimentConfig struct {
	MinSample           int    `yaml:"min_sample" default:"30" validate:"gte=1"`
	WindowOpenTime      string `yaml:"window_open_time" default:"09:30" validate:"datetime=15:04"`
	Timezone            string `yaml:"timezone" default:"America/New_York" validate:"required"`
	LexiconVersion      string `yaml:"lexicon_version" default:"fin-lex-1.0" validate:"required"`
	ValidateTradingDays bool   `yaml:"validate_trading_days" default:"true"`
	FatalStoreErrors    bool   `yaml:"fatal_store_errors"`
	StoreRetries        int    `yaml:"store_retries" default:"1" validate:"gte=1"`
	Workers             int    `yaml:"workers" default:"1" validate:"gte=1"`
}

type MServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host" default:"127.0.0.1"`
	Port    int    `yaml:"port" default:"8085" validate:"gt=1024,lte=65535"`
}
