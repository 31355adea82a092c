// Package config loads sfnews settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when the loaded configuration fails
// validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// APIConfig configures the remote Spaceflight News API client.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url" validate:"required,url"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	PageSize          int           `yaml:"page_size" validate:"min=1,max=100"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
	UserAgent         string        `yaml:"user_agent" validate:"required"`
}

// StorageConfig configures where the pagination offset is kept.
type StorageConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

// SearchConfig configures search input handling.
type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

// ConnectivityConfig configures the network probe run before each call.
type ConnectivityConfig struct {
	ProbeAddress string        `yaml:"probe_address" validate:"omitempty,hostname_port"`
	ProbeTimeout time.Duration `yaml:"probe_timeout" validate:"gte=0"`
	Disabled     bool          `yaml:"disabled"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Config represents the structure of config.yaml.
type Config struct {
	API          APIConfig          `yaml:"api"`
	Storage      StorageConfig      `yaml:"storage"`
	Search       SearchConfig       `yaml:"search"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/sfnews/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "sfnews", "config.yaml")
}

// DefaultDBPath returns $XDG_DATA_HOME/sfnews/sfnews.db.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "sfnews", "sfnews.db")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://api.spaceflightnewsapi.net/v4",
			Timeout:           30 * time.Second,
			PageSize:          10,
			RequestsPerSecond: 2,
			UserAgent:         "sfnews/1.0 (Spaceflight News client)",
		},
		Storage: StorageConfig{
			DSN: DefaultDBPath(),
		},
		Search: SearchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Connectivity: ConnectivityConfig{
			ProbeAddress: "api.spaceflightnewsapi.net:443",
			ProbeTimeout: 2 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path (DefaultConfigPath when empty),
// applies SFNEWS_* environment overrides and validates the result. A
// missing file is not an error; the defaults are used instead. A file that
// exists but cannot be parsed is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// File doesn't exist -- not an error
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.API.BaseURL = getEnv("SFNEWS_API_BASE_URL", c.API.BaseURL)
	c.API.Timeout = getEnvDuration("SFNEWS_API_TIMEOUT", c.API.Timeout)
	c.API.PageSize = getEnvInt("SFNEWS_API_PAGE_SIZE", c.API.PageSize)
	c.API.RequestsPerSecond = getEnvFloat("SFNEWS_API_RPS", c.API.RequestsPerSecond)
	c.API.UserAgent = getEnv("SFNEWS_API_USER_AGENT", c.API.UserAgent)
	c.Storage.DSN = getEnv("SFNEWS_STORAGE_DSN", c.Storage.DSN)
	c.Search.Debounce = getEnvDuration("SFNEWS_SEARCH_DEBOUNCE", c.Search.Debounce)
	c.Connectivity.ProbeAddress = getEnv("SFNEWS_PROBE_ADDRESS", c.Connectivity.ProbeAddress)
	c.Connectivity.Disabled = getEnvBool("SFNEWS_PROBE_DISABLED", c.Connectivity.Disabled)
	c.Server.Addr = getEnv("SFNEWS_SERVER_ADDR", c.Server.Addr)
	c.Log.Level = getEnv("SFNEWS_LOG_LEVEL", c.Log.Level)
}

// Validate checks every field. The returned error wraps ErrInvalidConfig
// and names each offending field.
func (c *Config) Validate() error {
	validate := validator.New()

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
