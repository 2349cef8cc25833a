// Package config handles configuration loading for NeuroQuant.
// It supports YAML config files with .env and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/neuroquant/pkg/utils"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the complete application configuration.
type Config struct {
	Forecast  ForecastConfig  `mapstructure:"forecast"  yaml:"forecast"`
	Model     ModelConfig     `mapstructure:"model"     yaml:"model"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	Decision  DecisionConfig  `mapstructure:"decision"  yaml:"decision"`
	Market    MarketConfig    `mapstructure:"market"    yaml:"market"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	LLM       LLMConfig       `mapstructure:"llm"       yaml:"llm"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Watch     WatchConfig     `mapstructure:"watch"     yaml:"watch"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ForecastConfig holds the post-processing parameters of the price forecast.
type ForecastConfig struct {
	Horizon   int     `mapstructure:"horizon"    yaml:"horizon"`    // steps in the emitted path
	Window    int     `mapstructure:"window"     yaml:"window"`     // bars of history fed to the model
	MaxChange float64 `mapstructure:"max_change" yaml:"max_change"` // per-step clamp, fraction
	Smoothing float64 `mapstructure:"smoothing"  yaml:"smoothing"`  // weight of the previous price
	Feedback  string  `mapstructure:"feedback"   yaml:"feedback"`   // "smoothed" or "raw"
	Target    string  `mapstructure:"target"     yaml:"target"`     // "price" or "return"
}

// ModelConfig selects the forecasting regressor.
type ModelConfig struct {
	Kind       string `mapstructure:"kind"        yaml:"kind"` // "drift", "mean_return", "remote"
	Lookback   int    `mapstructure:"lookback"    yaml:"lookback"`
	URL        string `mapstructure:"url"         yaml:"url"` // model server predict endpoint
	Steps      int    `mapstructure:"steps"       yaml:"steps"`
	ScalerPath string `mapstructure:"scaler_path" yaml:"scaler_path"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// SentimentConfig holds the news scoring parameters.
type SentimentConfig struct {
	Classifier        string  `mapstructure:"classifier"         yaml:"classifier"` // "lexicon" or "huggingface"
	HFModel           string  `mapstructure:"hf_model"           yaml:"hf_model"`
	HFToken           string  `mapstructure:"hf_token"           yaml:"hf_token"`
	HFURL             string  `mapstructure:"hf_url"             yaml:"hf_url"`
	RiskThreshold     float64 `mapstructure:"risk_threshold"     yaml:"risk_threshold"`
	PositiveThreshold float64 `mapstructure:"positive_threshold" yaml:"positive_threshold"`
	NegativeThreshold float64 `mapstructure:"negative_threshold" yaml:"negative_threshold"`
	MaxTitleLen       int     `mapstructure:"max_title_len"      yaml:"max_title_len"`
	Workers           int     `mapstructure:"workers"            yaml:"workers"`
}

// DecisionConfig holds the rule chain thresholds.
type DecisionConfig struct {
	RSIOverbought           float64 `mapstructure:"rsi_overbought"            yaml:"rsi_overbought"`
	SqueezeSentiment        float64 `mapstructure:"squeeze_sentiment"         yaml:"squeeze_sentiment"`
	StrongNegativeSentiment float64 `mapstructure:"strong_negative_sentiment" yaml:"strong_negative_sentiment"`
	TrendThresholdPct       float64 `mapstructure:"trend_threshold_pct"       yaml:"trend_threshold_pct"`
	SupportiveSentiment     float64 `mapstructure:"supportive_sentiment"      yaml:"supportive_sentiment"`
}

// MarketConfig holds market data settings.
type MarketConfig struct {
	Period    string  `mapstructure:"period"     yaml:"period"`   // e.g., "1y"
	Interval  string  `mapstructure:"interval"   yaml:"interval"` // e.g., "1d"
	RSIPeriod int     `mapstructure:"rsi_period" yaml:"rsi_period"`
	CacheTTL  int     `mapstructure:"cache_ttl"  yaml:"cache_ttl"` // seconds
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second
}

// NewsConfig holds news fetch settings.
type NewsConfig struct {
	MaxResults int    `mapstructure:"max_results" yaml:"max_results"`
	Language   string `mapstructure:"language"    yaml:"language"`
	Country    string `mapstructure:"country"     yaml:"country"`
	CacheTTL   int    `mapstructure:"cache_ttl"   yaml:"cache_ttl"` // seconds
}

// LLMConfig holds the commentary provider configuration.
type LLMConfig struct {
	Enabled     bool    `mapstructure:"enabled"      yaml:"enabled"`
	GeminiKey   string  `mapstructure:"gemini_key"   yaml:"gemini_key"`
	Model       string  `mapstructure:"model"        yaml:"model"`
	Temperature float64 `mapstructure:"temperature"  yaml:"temperature"`
	TimeoutSec  int     `mapstructure:"timeout_sec"  yaml:"timeout_sec"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	TimeoutSec  int      `mapstructure:"timeout_sec"  yaml:"timeout_sec"`
}

// WatchConfig holds the scheduled watchlist settings.
type WatchConfig struct {
	Tickers  []string `mapstructure:"tickers"  yaml:"tickers"`
	Schedule string   `mapstructure:"schedule" yaml:"schedule"` // cron spec, e.g., "@every 15m"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `mapstructure:"level"   yaml:"level"`  // "debug", "info", "warn", "error"
	Format  string `mapstructure:"format"  yaml:"format"` // "text" or "json"
	Tracing bool   `mapstructure:"tracing" yaml:"tracing"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.neuroquant/config.yaml (home directory)
//  3. /etc/neuroquant/config.yaml (system)
//
// A .env file in the working directory is loaded first if present.
// Environment variables override config file values.
// Format: NEUROQUANT_<SECTION>_<KEY>, e.g., NEUROQUANT_LLM_GEMINI_KEY
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".neuroquant"))
	v.AddConfigPath("/etc/neuroquant")

	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("NEUROQUANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Forecast post-processing
	v.SetDefault("forecast.horizon", 5)
	v.SetDefault("forecast.window", 60)
	v.SetDefault("forecast.max_change", 0.02)
	v.SetDefault("forecast.smoothing", 0.7)
	v.SetDefault("forecast.feedback", "smoothed")
	v.SetDefault("forecast.target", "return")

	// Model
	v.SetDefault("model.kind", "mean_return")
	v.SetDefault("model.lookback", 10)
	v.SetDefault("model.url", "")
	v.SetDefault("model.steps", 5)
	v.SetDefault("model.scaler_path", "")
	v.SetDefault("model.timeout_sec", 10)

	// Sentiment
	v.SetDefault("sentiment.classifier", "lexicon")
	v.SetDefault("sentiment.hf_model", "yiyanghkust/finbert-tone")
	v.SetDefault("sentiment.hf_token", "")
	v.SetDefault("sentiment.hf_url", "https://api-inference.huggingface.co/models")
	v.SetDefault("sentiment.risk_threshold", -0.20)
	v.SetDefault("sentiment.positive_threshold", 0.15)
	v.SetDefault("sentiment.negative_threshold", -0.15)
	v.SetDefault("sentiment.max_title_len", 512)
	v.SetDefault("sentiment.workers", 4)

	// Decision rules
	v.SetDefault("decision.rsi_overbought", 70.0)
	v.SetDefault("decision.squeeze_sentiment", 0.30)
	v.SetDefault("decision.strong_negative_sentiment", -0.40)
	v.SetDefault("decision.trend_threshold_pct", 0.1)
	v.SetDefault("decision.supportive_sentiment", 0.0)

	// Market data
	v.SetDefault("market.period", "1y")
	v.SetDefault("market.interval", "1d")
	v.SetDefault("market.rsi_period", 14)
	v.SetDefault("market.cache_ttl", 300) // 5 minutes
	v.SetDefault("market.rate_limit", 2.0)

	// News
	v.SetDefault("news.max_results", 10)
	v.SetDefault("news.language", "en-US")
	v.SetDefault("news.country", "US")
	v.SetDefault("news.cache_ttl", 600)

	// LLM commentary
	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.gemini_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.4)
	v.SetDefault("llm.timeout_sec", 30)

	// API
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.timeout_sec", 60)

	// Watchlist
	v.SetDefault("watch.tickers", utils.DefaultWatchlist)
	v.SetDefault("watch.schedule", "@every 15m")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.tracing", false)
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The bare GEMINI_API_KEY and HF_TOKEN names are accepted as fallbacks.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("NEUROQUANT_LLM_GEMINI_KEY"); key != "" {
		cfg.LLM.GeminiKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && cfg.LLM.GeminiKey == "" {
		cfg.LLM.GeminiKey = key
	}
	if key := os.Getenv("NEUROQUANT_SENTIMENT_HF_TOKEN"); key != "" {
		cfg.Sentiment.HFToken = key
	} else if key := os.Getenv("HF_TOKEN"); key != "" && cfg.Sentiment.HFToken == "" {
		cfg.Sentiment.HFToken = key
	}
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	f := c.Forecast
	switch {
	case f.Horizon < 1:
		return fmt.Errorf("%w: forecast.horizon must be >= 1, got %d", ErrInvalidConfig, f.Horizon)
	case f.Window < 1:
		return fmt.Errorf("%w: forecast.window must be >= 1, got %d", ErrInvalidConfig, f.Window)
	case f.MaxChange <= 0 || f.MaxChange >= 1:
		return fmt.Errorf("%w: forecast.max_change must be in (0,1), got %g", ErrInvalidConfig, f.MaxChange)
	case f.Smoothing < 0 || f.Smoothing >= 1:
		return fmt.Errorf("%w: forecast.smoothing must be in [0,1), got %g", ErrInvalidConfig, f.Smoothing)
	}
	if f.Feedback != "smoothed" && f.Feedback != "raw" {
		return fmt.Errorf("%w: forecast.feedback must be smoothed or raw, got %q", ErrInvalidConfig, f.Feedback)
	}
	if f.Target != "price" && f.Target != "return" {
		return fmt.Errorf("%w: forecast.target must be price or return, got %q", ErrInvalidConfig, f.Target)
	}

	switch c.Model.Kind {
	case "drift", "mean_return":
	case "remote":
		if c.Model.URL == "" {
			return fmt.Errorf("%w: model.url is required for remote models", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown model.kind %q", ErrInvalidConfig, c.Model.Kind)
	}

	s := c.Sentiment
	if s.Classifier != "lexicon" && s.Classifier != "huggingface" {
		return fmt.Errorf("%w: unknown sentiment.classifier %q", ErrInvalidConfig, s.Classifier)
	}
	if s.Workers < 1 {
		return fmt.Errorf("%w: sentiment.workers must be >= 1, got %d", ErrInvalidConfig, s.Workers)
	}
	if s.MaxTitleLen < 1 {
		return fmt.Errorf("%w: sentiment.max_title_len must be >= 1, got %d", ErrInvalidConfig, s.MaxTitleLen)
	}
	if s.NegativeThreshold > s.PositiveThreshold {
		return fmt.Errorf("%w: sentiment.negative_threshold above positive_threshold", ErrInvalidConfig)
	}
	if c.Decision.TrendThresholdPct < 0 {
		return fmt.Errorf("%w: decision.trend_threshold_pct must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
