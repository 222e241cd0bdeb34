package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	FMP       FMPConfig       `yaml:"fmp" mapstructure:"fmp"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key          string  `yaml:"key" mapstructure:"key"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	LanguageCode string  `yaml:"language_code" mapstructure:"language_code"`
	Referer      string  `yaml:"referer" mapstructure:"referer"`
	RateQPS      float64 `yaml:"rate_qps" mapstructure:"rate_qps"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FMPConfig holds Financial Modeling Prep API settings.
type FMPConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	SearchLimit int    `yaml:"search_limit" mapstructure:"search_limit"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds Anthropic API settings for insight generation.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// ScrapeConfig configures website contact extraction.
type ScrapeConfig struct {
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxSecondaryLinks int    `yaml:"max_secondary_links" mapstructure:"max_secondary_links"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	UserAgent         string `yaml:"user_agent" mapstructure:"user_agent"`
}

// Timeout returns the per-page fetch timeout.
func (s ScrapeConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// SearchConfig configures the tiered business search.
type SearchConfig struct {
	DefaultLocation string `yaml:"default_location" mapstructure:"default_location"`
	MaxResults      int    `yaml:"max_results" mapstructure:"max_results"`
}

// ExportConfig configures spreadsheet exports.
type ExportConfig struct {
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("places.key", "")
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("places.language_code", "en")
	v.SetDefault("places.referer", "")
	v.SetDefault("places.rate_qps", 10)
	v.SetDefault("places.timeout_secs", 10)
	v.SetDefault("fmp.key", "")
	v.SetDefault("fmp.base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("fmp.search_limit", 10)
	v.SetDefault("fmp.timeout_secs", 15)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 800)
	v.SetDefault("anthropic.temperature", 0.7)
	v.SetDefault("scrape.timeout_secs", 10)
	v.SetDefault("scrape.max_secondary_links", 2)
	v.SetDefault("scrape.max_body_bytes", 2*1024*1024)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; LeadgenBot/1.0)")
	v.SetDefault("search.default_location", "United States")
	v.SetDefault("search.max_results", 20)
	v.SetDefault("export.temp_dir", "")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable for the given mode
// ("serve" or "cli"). Provider credentials are not checked here: each
// component reports a missing key when it is called.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "cli":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Scrape.TimeoutSecs <= 0 {
		errs = append(errs, "scrape.timeout_secs must be > 0")
	}
	if c.Scrape.MaxSecondaryLinks < 0 || c.Scrape.MaxSecondaryLinks > 10 {
		errs = append(errs, "scrape.max_secondary_links must be between 0 and 10")
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 20 {
		errs = append(errs, "search.max_results must be between 1 and 20")
	}
	if c.Places.RateQPS < 0 {
		errs = append(errs, "places.rate_qps must be >= 0")
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(errs, "; ")))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
