package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger    `mapstructure:"logger"`
	DB        Database  `mapstructure:"database"`
	API       API       `mapstructure:"api"`
	Cache     Cache     `mapstructure:"cache"`
	Gemini    Gemini    `mapstructure:"gemini"`
	Engine    Engine    `mapstructure:"engine"`
	History   History   `mapstructure:"history"`
	Retention Retention `mapstructure:"retention"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port             int           `mapstructure:"port"`
	RateLimit        float64       `mapstructure:"rate_limit"`
	RateBurst        int           `mapstructure:"rate_burst"`
	RateExpire       time.Duration `mapstructure:"rate_expire"`
	AnalyzePerMinute int           `mapstructure:"analyze_per_minute"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	BaseModel           string        `mapstructure:"base_model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryBackoff        time.Duration `mapstructure:"retry_backoff"`
}

// Engine holds the tunables of the valuation pipeline.
type Engine struct {
	MarketPolicy           string  `mapstructure:"market_policy"`
	MinGroundedFactors     int     `mapstructure:"min_grounded_factors"`
	HoldYears              float64 `mapstructure:"hold_years"`
	SaleFrictionPct        float64 `mapstructure:"sale_friction_pct"`
	PriceFloorUSD          float64 `mapstructure:"price_floor_usd"`
	DefaultDepreciationPct float64 `mapstructure:"default_depreciation_pct"`
	DefaultTCOYearUSD      float64 `mapstructure:"default_tco_year_usd"`
	SimilarityThreshold    float64 `mapstructure:"similarity_threshold"`
	SimilarTopK            int     `mapstructure:"similar_top_k"`
	TitleScoreCeiling      float64 `mapstructure:"title_score_ceiling"`
	TitleScorePenalty      float64 `mapstructure:"title_score_penalty"`
	TitleROIPenalty        float64 `mapstructure:"title_roi_penalty"`
}

type History struct {
	Backend  string        `mapstructure:"backend"`
	Capacity int           `mapstructure:"capacity"`
	FilePath string        `mapstructure:"file_path"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type Retention struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
	Days    int    `mapstructure:"days"`
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.rate_limit", 10)
	viper.SetDefault("api.rate_burst", 30)
	viper.SetDefault("api.rate_expire", 3*time.Minute)
	viper.SetDefault("api.analyze_per_minute", 6)

	viper.SetDefault("cache.default_expiration", 5*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)

	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	viper.SetDefault("gemini.base_model", "gemini-2.5-flash")
	viper.SetDefault("gemini.timeout", 120*time.Second)
	viper.SetDefault("gemini.max_request_per_minute", 10)
	viper.SetDefault("gemini.max_token_per_minute", 250000)
	viper.SetDefault("gemini.max_retries", 2)
	viper.SetDefault("gemini.retry_backoff", 2*time.Second)

	viper.SetDefault("engine.market_policy", "symmetric")
	viper.SetDefault("engine.min_grounded_factors", 3)
	viper.SetDefault("engine.hold_years", 2)
	viper.SetDefault("engine.sale_friction_pct", 2)
	viper.SetDefault("engine.price_floor_usd", 1000)
	viper.SetDefault("engine.default_depreciation_pct", 15)
	viper.SetDefault("engine.default_tco_year_usd", 4500)
	viper.SetDefault("engine.similarity_threshold", 0.85)
	viper.SetDefault("engine.similar_top_k", 5)
	viper.SetDefault("engine.title_score_ceiling", 75)
	viper.SetDefault("engine.title_score_penalty", 5)
	viper.SetDefault("engine.title_roi_penalty", 15)

	viper.SetDefault("history.backend", "file")
	viper.SetDefault("history.capacity", 500)
	viper.SetDefault("history.file_path", "data_history_us.json")
	viper.SetDefault("history.cache_ttl", time.Minute)

	viper.SetDefault("retention.enabled", false)
	viper.SetDefault("retention.cron", "0 3 * * *")
	viper.SetDefault("retention.days", 180)
}

// Load reads config.yaml from the working directory. Environment variables
// override file values, and a .env file, when present, seeds the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
