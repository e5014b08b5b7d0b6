// Package config internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/nbp-rate-service/internal/apperror"
)

// DefaultNBPBaseURL is the public NBP exchange rate API root
const DefaultNBPBaseURL = "https://api.nbp.pl/api/exchangerates"

// Config is the complete service configuration
type Config struct {
	Server ServerConfig
	NBP    NBPConfig
	Cache  CacheConfig
	Log    LogConfig
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NBPConfig configures the rate repository and its API client
type NBPConfig struct {
	BaseURL       string
	TableTimeout  time.Duration
	SeriesTimeout time.Duration
	BaseCurrency  string
}

// CacheConfig configures the optional caching decorator
type CacheConfig struct {
	Enabled   bool
	RatesTTL  time.Duration
	SeriesTTL time.Duration
	DBPath    string
}

// LogConfig configures the application logger
type LogConfig struct {
	Level  string
	Format string
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 20 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		NBP: NBPConfig{
			BaseURL:       DefaultNBPBaseURL,
			TableTimeout:  10 * time.Second,
			SeriesTimeout: 15 * time.Second,
			BaseCurrency:  "PLN",
		},
		Cache: CacheConfig{
			Enabled:   false,
			RatesTTL:  15 * time.Minute,
			SeriesTTL: 24 * time.Hour,
			DBPath:    "./data",
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "json",
		},
	}
}

// LoadConfig reads the configuration from the environment and validates it
func LoadConfig() (*Config, error) {
	def := Default()

	cfg := &Config{}
	var err error

	if cfg.Server.Port, err = getEnvInt("SERVER_PORT", def.Server.Port); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = getEnvDuration("SERVER_READ_TIMEOUT", def.Server.ReadTimeout); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getEnvDuration("SERVER_WRITE_TIMEOUT", def.Server.WriteTimeout); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getEnvDuration("SERVER_IDLE_TIMEOUT", def.Server.IdleTimeout); err != nil {
		return nil, err
	}

	cfg.NBP.BaseURL = strings.TrimRight(getEnvString("NBP_BASE_URL", def.NBP.BaseURL), "/")
	cfg.NBP.BaseCurrency = strings.ToUpper(getEnvString("NBP_BASE_CURRENCY", def.NBP.BaseCurrency))
	if cfg.NBP.TableTimeout, err = getEnvDuration("NBP_TABLE_TIMEOUT", def.NBP.TableTimeout); err != nil {
		return nil, err
	}
	if cfg.NBP.SeriesTimeout, err = getEnvDuration("NBP_SERIES_TIMEOUT", def.NBP.SeriesTimeout); err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled, err = getEnvBool("CACHE_ENABLED", def.Cache.Enabled); err != nil {
		return nil, err
	}
	if cfg.Cache.RatesTTL, err = getEnvDuration("CACHE_RATES_TTL", def.Cache.RatesTTL); err != nil {
		return nil, err
	}
	if cfg.Cache.SeriesTTL, err = getEnvDuration("CACHE_SERIES_TTL", def.Cache.SeriesTTL); err != nil {
		return nil, err
	}
	cfg.Cache.DBPath = getEnvString("CACHE_DB_PATH", def.Cache.DBPath)

	cfg.Log.Level = getEnvString("LOG_LEVEL", def.Log.Level)
	cfg.Log.Format = strings.ToLower(getEnvString("LOG_FORMAT", def.Log.Format))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every value is usable
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperror.Configuration("port must be between 1 and 65535", "SERVER_PORT")
	}

	u, err := url.Parse(c.NBP.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperror.Configuration("base URL must be an absolute URL", "NBP_BASE_URL")
	}

	if c.NBP.TableTimeout <= 0 {
		return apperror.Configuration("timeout must be positive", "NBP_TABLE_TIMEOUT")
	}
	if c.NBP.SeriesTimeout <= 0 {
		return apperror.Configuration("timeout must be positive", "NBP_SERIES_TIMEOUT")
	}

	if len(c.NBP.BaseCurrency) != 3 {
		return apperror.Configuration("currency code must have 3 letters", "NBP_BASE_CURRENCY")
	}

	if c.Cache.Enabled {
		if c.Cache.RatesTTL <= 0 {
			return apperror.Configuration("TTL must be positive", "CACHE_RATES_TTL")
		}
		if c.Cache.SeriesTTL < 0 {
			return apperror.Configuration("TTL must not be negative", "CACHE_SERIES_TTL")
		}
		if c.Cache.DBPath == "" {
			return apperror.Configuration("path must not be empty", "CACHE_DB_PATH")
		}
	}

	switch c.Log.Format {
	case "json", "zap":
	default:
		return apperror.Configuration(fmt.Sprintf("unsupported log format %q", c.Log.Format), "LOG_FORMAT")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	valueStr := getEnvString(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, apperror.Configuration("invalid integer", key)
	}
	return value, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	valueStr := getEnvString(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, apperror.Configuration("invalid boolean", key)
	}
	return value, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := getEnvString(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, apperror.Configuration("invalid duration", key)
	}
	return value, nil
}
