package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database    DatabaseConfig   `json:"database"`
	JWTSecret   string           `json:"jwt_secret"`
	Port        int              `json:"port"`
	CORSOrigins []string         `json:"cors_origins"`
	RateLimitMS int64            `json:"rate_limit_ms"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Session     SessionConfig    `json:"session"`
	Versions    VersionsConfig   `json:"versions"`
	Suggest     SuggestConfig    `json:"suggest"`
	Breaker     BreakerConfig    `json:"breaker"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type SessionConfig struct {
	SaveDelayMS    int64 `json:"save_delay_ms"`
	SuggestDelayMS int64 `json:"suggest_delay_ms"`
}

type VersionsConfig struct {
	ListLimit int `json:"list_limit"`
	// MaxKeep bounds stored versions per document, 0 keeps everything.
	MaxKeep   int    `json:"max_keep"`
	PruneCron string `json:"prune_cron"`
}

type SuggestConfig struct {
	LongSentenceWords int      `json:"long_sentence_words"`
	DictionaryPath    string   `json:"dictionary_path"`
	CacheSize         int      `json:"cache_size"`
	CacheTTLSeconds   int64    `json:"cache_ttl_seconds"`
	DisabledSources   []string `json:"disabled_sources"`
	// StaleDays removes mirrored suggestions of documents untouched for longer.
	StaleDays   int    `json:"stale_days"`
	CleanupCron string `json:"cleanup_cron"`
}

type BreakerConfig struct {
	MaxRequests     uint32  `json:"max_requests"`
	IntervalSeconds int64   `json:"interval_seconds"`
	TimeoutSeconds  int64   `json:"timeout_seconds"`
	FailureRatio    float64 `json:"failure_ratio"`
	MinRequests     uint32  `json:"min_requests"`
}

// Default returns a config with every optional field populated. It is also
// what the offline commands run with when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	if c.RateLimitMS == 0 {
		c.RateLimitMS = 300
	}
	if c.Session.SaveDelayMS == 0 {
		c.Session.SaveDelayMS = 2000
	}
	if c.Session.SuggestDelayMS == 0 {
		c.Session.SuggestDelayMS = 1000
	}
	if c.Versions.ListLimit == 0 {
		c.Versions.ListLimit = 50
	}
	if c.Versions.PruneCron == "" {
		c.Versions.PruneCron = "0 3 * * *"
	}
	if c.Suggest.LongSentenceWords == 0 {
		c.Suggest.LongSentenceWords = 25
	}
	if c.Suggest.CacheSize == 0 {
		c.Suggest.CacheSize = 256
	}
	if c.Suggest.CacheTTLSeconds == 0 {
		c.Suggest.CacheTTLSeconds = 600
	}
	if c.Suggest.StaleDays == 0 {
		c.Suggest.StaleDays = 30
	}
	if c.Suggest.CleanupCron == "" {
		c.Suggest.CleanupCron = "30 3 * * *"
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 1
	}
	if c.Breaker.IntervalSeconds == 0 {
		c.Breaker.IntervalSeconds = 60
	}
	if c.Breaker.TimeoutSeconds == 0 {
		c.Breaker.TimeoutSeconds = 30
	}
	if c.Breaker.FailureRatio == 0 {
		c.Breaker.FailureRatio = 0.6
	}
	if c.Breaker.MinRequests == 0 {
		c.Breaker.MinRequests = 5
	}
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" && (c.Database.Host == "" || c.Database.DBName == "") {
		return fmt.Errorf("database.dsn or database.host/dbname is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if c.Session.SaveDelayMS < 0 || c.Session.SuggestDelayMS < 0 {
		return fmt.Errorf("session delays must not be negative")
	}
	if c.Versions.ListLimit < 0 || c.Versions.MaxKeep < 0 {
		return fmt.Errorf("versions.list_limit and versions.max_keep must not be negative")
	}
	if c.Breaker.FailureRatio < 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be within [0, 1]")
	}
	for _, origin := range c.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("cors_origins must not contain empty entries")
		}
	}
	return nil
}
