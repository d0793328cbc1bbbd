package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port               string        `mapstructure:"PORT"`
	AppEnv             string        `mapstructure:"APP_ENV"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	TokenTTL           time.Duration `mapstructure:"TOKEN_TTL"`
	RawgAPIKey         string        `mapstructure:"RAWG_API_KEY"`
	RawgBaseURL        string        `mapstructure:"RAWG_BASE_URL"`
	RawgTimeout        time.Duration `mapstructure:"RAWG_TIMEOUT"`
	RateLimitPerMinute int           `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	SentryDSN          string        `mapstructure:"SENTRY_DSN"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	GamesFile          string        `mapstructure:"GAMES_FILE"`
}

var defaults = map[string]any{
	"PORT":                  "8080",
	"APP_ENV":               "development",
	"DATABASE_URL":          "",
	"JWT_SECRET":            "",
	"TOKEN_TTL":             "168h",
	"RAWG_API_KEY":          "",
	"RAWG_BASE_URL":         "https://api.rawg.io/api",
	"RAWG_TIMEOUT":          "10s",
	"RATE_LIMIT_PER_MINUTE": 120,
	"CORS_ALLOWED_ORIGINS":  "*",
	"SENTRY_DSN":            "",
	"LOG_LEVEL":             "info",
	"GAMES_FILE":            "data/allGames.json",
}

// Load reads the configuration from a .env file in the working directory and
// from environment variables, which take precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
		logrus.Warn(".env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// ValidateServer checks the settings only the API server needs.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// IsProduction reports whether development-only endpoints must be disabled.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
