package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Dashboard Dashboard `mapstructure:"dashboard"`
	Notify    Notify    `mapstructure:"notify"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
}

// Dashboard holds the configuration for the reconciliation engine.
type Dashboard struct {
	UserID            string        `mapstructure:"user_id"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
	AutosaveDelay     time.Duration `mapstructure:"autosave_delay"`
	ActivityThreshold int           `mapstructure:"activity_threshold"`
}

// Notify holds the configuration for notification delivery.
type Notify struct {
	WebhookURL     string  `mapstructure:"webhook_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("dashboard.refresh_interval", "30m")
	viper.SetDefault("dashboard.autosave_delay", "1500ms")
	viper.SetDefault("dashboard.activity_threshold", 10)
	viper.SetDefault("notify.rate_limit", 1) // notifications per second
	viper.SetDefault("notify.rate_limit_burst", 3)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
