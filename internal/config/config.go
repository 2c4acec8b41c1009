package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Search    SearchConfig    `yaml:"search"`
	Map       MapConfig       `yaml:"map"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Listings backends
const (
	BackendHTTP        = "http"
	BackendMeilisearch = "meilisearch"
)

// UpstreamConfig contains settings for the listings service
type UpstreamConfig struct {
	Backend             string `yaml:"backend"`
	ListingsURL         string `yaml:"listings_url"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	FailureThreshold    int    `yaml:"failure_threshold"`
	ResetTimeoutSeconds int    `yaml:"reset_timeout_seconds"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Index  string `yaml:"index"`
}

// MapConfig contains map view settings
type MapConfig struct {
	DefaultLat           float64 `yaml:"default_lat"`
	DefaultLng           float64 `yaml:"default_lng"`
	DefaultZoom          int     `yaml:"default_zoom"`
	Metric               string  `yaml:"metric"`
	ZeroCoordinatesUnset bool    `yaml:"zero_coordinates_unset"`
	Clustered            bool    `yaml:"clustered"`
}

// SessionConfig contains search session settings
type SessionConfig struct {
	PageSize        int    `yaml:"page_size"`
	Sort            string `yaml:"sort"`
	IncludeHistory  bool   `yaml:"include_history"`
	IdleTTLMinutes  int    `yaml:"idle_ttl_minutes"`
	SweepCron       string `yaml:"sweep_cron"`
	HighlightMillis int    `yaml:"highlight_millis"`
	OpinionsLimit   int    `yaml:"opinions_limit"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8084",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Upstream: UpstreamConfig{
			Backend:             BackendHTTP,
			ListingsURL:         "http://localhost:8000",
			TimeoutSeconds:      10,
			FailureThreshold:    5,
			ResetTimeoutSeconds: 30,
		},
		Search: SearchConfig{
			Meilisearch: MeilisearchConfig{
				Host:  "http://localhost:7700",
				Index: "listings",
			},
		},
		Map: MapConfig{
			DefaultLat:  50.0647,
			DefaultLng:  19.945,
			DefaultZoom: 12,
			Metric:      "centre_distance",
		},
		Session: SessionConfig{
			PageSize:        24,
			Sort:            "recent",
			IncludeHistory:  true,
			IdleTTLMinutes:  30,
			SweepCron:       "@every 5m",
			HighlightMillis: 1000,
			OpinionsLimit:   3,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 120,
			RequestsPerHour:   3600,
		},
		Logging: LoggingConfig{
			Level:       "info",
			MaxSizeMB:   10,
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file, then a .env file in
// the working directory, then the process environment. Later sources
// win. A missing YAML or .env file is not an error.
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	if filepath != "" {
		data, err := os.ReadFile(filepath)
		switch {
		case os.IsNotExist(err):
			log.Printf("[config] %s not found, using defaults", filepath)
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides settings from environment variables
func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	setString(&c.Upstream.Backend, "LISTINGS_BACKEND")
	setString(&c.Upstream.ListingsURL, "LISTINGS_URL")
	setString(&c.Search.Meilisearch.Host, "MEILISEARCH_HOST")
	setString(&c.Search.Meilisearch.APIKey, "MEILISEARCH_KEY")
	setString(&c.Search.Meilisearch.Index, "MEILISEARCH_INDEX")
	setString(&c.Map.Metric, "MARKER_METRIC")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.File, "LOG_FILE")

	if err := setInt(&c.Upstream.TimeoutSeconds, "LISTINGS_TIMEOUT_SECONDS"); err != nil {
		return err
	}
	if err := setInt(&c.Session.PageSize, "PAGE_SIZE"); err != nil {
		return err
	}
	if err := setBool(&c.Map.ZeroCoordinatesUnset, "ZERO_COORDINATES_UNSET"); err != nil {
		return err
	}
	return setBool(&c.RateLimit.Enabled, "RATE_LIMIT_ENABLED")
}

// Validate checks values that would otherwise fail at first use
func (c *Config) Validate() error {
	switch c.Upstream.Backend {
	case BackendHTTP:
		if c.Upstream.ListingsURL == "" {
			return fmt.Errorf("upstream.listings_url is required for the http backend")
		}
	case BackendMeilisearch:
		if c.Search.Meilisearch.Host == "" {
			return fmt.Errorf("search.meilisearch.host is required for the meilisearch backend")
		}
	default:
		return fmt.Errorf("unknown upstream.backend %q", c.Upstream.Backend)
	}
	if c.Session.PageSize < 1 || c.Session.PageSize > 100 {
		return fmt.Errorf("session.page_size must be between 1 and 100, got %d", c.Session.PageSize)
	}
	if c.Map.DefaultLat < -90 || c.Map.DefaultLat > 90 || c.Map.DefaultLng < -180 || c.Map.DefaultLng > 180 {
		return fmt.Errorf("map default center out of range")
	}
	return nil
}

// GetTimeout returns the upstream timeout as a duration
func (c *UpstreamConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetResetTimeout returns how long the circuit breaker stays open
func (c *UpstreamConfig) GetResetTimeout() time.Duration {
	return time.Duration(c.ResetTimeoutSeconds) * time.Second
}

// GetIdleTTL returns how long an unused session is kept
func (c *SessionConfig) GetIdleTTL() time.Duration {
	return time.Duration(c.IdleTTLMinutes) * time.Minute
}

// GetHighlight returns the card highlight duration
func (c *SessionConfig) GetHighlight() time.Duration {
	return time.Duration(c.HighlightMillis) * time.Millisecond
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
