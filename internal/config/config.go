package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config is the main structure mapping the entire application configuration.
// Keys map from YAML (and environment variables) via mapstructure tags.
type Config struct {
	// Server configuration for the HTTP API
	Server struct {
		Port int `mapstructure:"port"` // HTTP server port (default: 8080)
	} `mapstructure:"server"`

	// Database configuration for SQLite settings
	Database struct {
		Name string `mapstructure:"name"` // SQLite database file name
	} `mapstructure:"database"`

	// Attribution defaults used when an account has no stored model configuration
	Attribution struct {
		DefaultModel      string `mapstructure:"default_model"`       // fallback weighting model
		DefaultWindowDays int    `mapstructure:"default_window_days"` // fallback lookback window
	} `mapstructure:"attribution"`

	// Analytics configuration for the asynchronous batch ingestion pool
	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`  // size of the tracked-event channel buffer
		WorkerCount int `mapstructure:"worker_count"` // number of worker goroutines draining the channel
	} `mapstructure:"analytics"`

	// Monitor configuration for the revenue movement monitor
	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"` // minutes between revenue checks
	} `mapstructure:"monitor"`
}

// LoadConfig loads the application configuration using Viper.
// It supports environment variable overrides and YAML configuration files.
// Returns a populated Config struct or an error if configuration loading fails.
func LoadConfig() (*Config, error) {
	// Allow overrides like SERVER_PORT or ATTRIBUTION_DEFAULT_MODEL
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Defaults used when no config file is found or keys are missing
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.name", "attribution.db")
	viper.SetDefault("attribution.default_model", "last_touch")
	viper.SetDefault("attribution.default_window_days", 7)
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("monitor.interval_minutes", 5)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal: run on defaults and environment overrides
			log.Println("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	log.Printf("Configuration loaded: Server Port=%d, DB Name=%s, Default Model=%s/%dd, Analytics Buffer=%d",
		cfg.Server.Port, cfg.Database.Name, cfg.Attribution.DefaultModel,
		cfg.Attribution.DefaultWindowDays, cfg.Analytics.BufferSize)

	return &cfg, nil
}
