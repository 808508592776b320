// Package config loads proxy configuration from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultPort               = 3000
	DefaultCacheTTL           = 3600 * time.Second
	DefaultUpstreamURL        = "https://restcountries.com/v3.1"
	DefaultUpstreamTimeout    = 10 * time.Second
	DefaultUserAgent          = "countries-proxy/0.1.0"
	DefaultErrorLogBackend    = BackendFile
	DefaultErrorLogPath       = "error_log.json"
	DefaultRedisURL           = "localhost:6379"
	DefaultShutdownTimeout    = 10 * time.Second
	DefaultDNSRefreshInterval = 5 * time.Minute
)

// Error log snapshot backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the proxy configuration.
type Config struct {
	// Port is the HTTP listen port (PORT).
	Port int

	// CacheTTL applies to every response cached by the proxy (CACHE_TTL, seconds).
	// Zero means entries never expire; negative disables caching.
	CacheTTL time.Duration

	// CacheMaxEntries caps the response cache size (CACHE_MAX_ENTRIES).
	// Zero keeps the cache unbounded.
	CacheMaxEntries int

	// Upstream
	UpstreamURL     string
	UpstreamTimeout time.Duration
	UserAgent       string

	// ErrorLog selects where the error log snapshot is persisted.
	ErrorLog ErrorLogConfig

	// Logging
	LogLevel  string
	LogPretty bool

	// Tracing is disabled when OTelEndpoint is empty.
	OTelEndpoint   string
	OTelSampleRate float64

	ShutdownTimeout    time.Duration
	DNSRefreshInterval time.Duration
}

// ErrorLogConfig configures the error log snapshot store.
type ErrorLogConfig struct {
	// Backend is one of file, redis, sqlite.
	Backend string

	// Path is the snapshot file for the file backend and the database file
	// for the sqlite backend.
	Path string

	// RedisURL is the redis address for the redis backend.
	RedisURL string
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load reads configuration from environment variables. When configFile is
// non-empty it is read first and environment variables override it.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Port:            parseInt(v.GetString("port"), DefaultPort),
		CacheTTL:        parseSeconds(v.GetString("cache_ttl"), DefaultCacheTTL),
		CacheMaxEntries: parseInt(v.GetString("cache_max_entries"), 0),
		UpstreamURL:     strings.TrimRight(strings.TrimSpace(v.GetString("upstream_url")), "/"),
		UpstreamTimeout: parseDuration(v.GetString("upstream_timeout"), DefaultUpstreamTimeout),
		UserAgent:       v.GetString("user_agent"),
		ErrorLog: ErrorLogConfig{
			Backend:  strings.ToLower(strings.TrimSpace(v.GetString("error_log_backend"))),
			Path:     v.GetString("error_log_path"),
			RedisURL: v.GetString("redis_url"),
		},
		LogLevel:           v.GetString("log_level"),
		LogPretty:          v.GetBool("log_pretty"),
		OTelEndpoint:       v.GetString("otel_endpoint"),
		OTelSampleRate:     v.GetFloat64("otel_sample_rate"),
		ShutdownTimeout:    parseDuration(v.GetString("shutdown_timeout"), DefaultShutdownTimeout),
		DNSRefreshInterval: parseDuration(v.GetString("dns_refresh_interval"), DefaultDNSRefreshInterval),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("cache_ttl", int(DefaultCacheTTL.Seconds()))
	v.SetDefault("cache_max_entries", 0)
	v.SetDefault("upstream_url", DefaultUpstreamURL)
	v.SetDefault("upstream_timeout", DefaultUpstreamTimeout.String())
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("error_log_backend", DefaultErrorLogBackend)
	v.SetDefault("error_log_path", DefaultErrorLogPath)
	v.SetDefault("redis_url", DefaultRedisURL)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("otel_sample_rate", 1.0)
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout.String())
	v.SetDefault("dns_refresh_interval", DefaultDNSRefreshInterval.String())
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}

	u, err := url.Parse(c.UpstreamURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: upstream url %q must be an absolute http(s) URL", ErrInvalidConfig, c.UpstreamURL)
	}

	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("%w: upstream timeout must be positive", ErrInvalidConfig)
	}

	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("%w: cache max entries must be >= 0 (got %d)", ErrInvalidConfig, c.CacheMaxEntries)
	}

	switch c.ErrorLog.Backend {
	case BackendFile, BackendSQLite:
		if c.ErrorLog.Path == "" {
			return fmt.Errorf("%w: error log path is required for the %s backend", ErrInvalidConfig, c.ErrorLog.Backend)
		}
	case BackendRedis:
		if c.ErrorLog.RedisURL == "" {
			return fmt.Errorf("%w: redis url is required for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown error log backend %q", ErrInvalidConfig, c.ErrorLog.Backend)
	}

	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		return fmt.Errorf("%w: otel sample rate must be within [0, 1]", ErrInvalidConfig)
	}

	return nil
}

// parseInt returns def when s is not an integer.
func parseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// maxSeconds is the largest number of seconds a time.Duration can hold.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// parseSeconds reads an integer number of seconds, falling back to def when
// s is empty or non-numeric. Values beyond the time.Duration range are clamped.
func parseSeconds(s string, def time.Duration) time.Duration {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || numErr.Err != strconv.ErrRange {
			return def
		}
	}
	switch {
	case n > maxSeconds:
		n = maxSeconds
	case n < -maxSeconds:
		n = -maxSeconds
	}
	return time.Duration(n) * time.Second
}

// parseDuration accepts Go duration strings ("1m30s") or bare seconds ("90").
func parseDuration(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return parseSeconds(s, def)
}
