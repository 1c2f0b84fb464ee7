package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string   `mapstructure:"PORT"`
	Env              string   `mapstructure:"ENV"`
	ModelDir         string   `mapstructure:"MODEL_DIR"`
	DBPath           string   `mapstructure:"DB_PATH"`
	CORSOrigins      []string `mapstructure:"CORS_ORIGINS"`
	HistoryCacheSize int      `mapstructure:"HISTORY_CACHE_SIZE"`
	HistoryMaxLimit  int      `mapstructure:"HISTORY_MAX_LIMIT"`
	BodyLimit        string   `mapstructure:"BODY_LIMIT"`
	RequestTimeoutS  int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("MODEL_DIR", "./models")
	v.SetDefault("DB_PATH", "./prediction_history.db")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("HISTORY_CACHE_SIZE", 500)
	v.SetDefault("HISTORY_MAX_LIMIT", 500)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("MODEL_DIR")
	v.BindEnv("DB_PATH")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("HISTORY_CACHE_SIZE")
	v.BindEnv("HISTORY_MAX_LIMIT")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if c.ModelDir == "" {
		return fmt.Errorf("MODEL_DIR is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.HistoryCacheSize <= 0 {
		return fmt.Errorf("HISTORY_CACHE_SIZE must be positive, got %d", c.HistoryCacheSize)
	}
	if c.HistoryMaxLimit <= 0 {
		return fmt.Errorf("HISTORY_MAX_LIMIT must be positive, got %d", c.HistoryMaxLimit)
	}
	if c.RequestTimeoutS <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeoutS)
	}
	return nil
}
