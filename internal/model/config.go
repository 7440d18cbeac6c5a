package model

import (
	"runtime"
	"time"
)

// Config is the complete omnieval configuration
type Config struct {
	Data        DataConfig        `yaml:"data" mapstructure:"data"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// DataConfig locates the bundled article/evaluation data
type DataConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`
	DefaultKey    string `yaml:"default_key" mapstructure:"default_key"` // Bundle served by /api/data
	DefaultSource string `yaml:"default_source" mapstructure:"default_source"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr              string          `yaml:"addr" mapstructure:"addr"`
	ReadHeaderTimeout time.Duration   `yaml:"read_header_timeout" mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration   `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	RateLimit         RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy" mapstructure:"trust_proxy"`
}

// RateLimitConfig is the per-client token bucket
type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	IdleTTL           time.Duration `yaml:"idle_ttl" mapstructure:"idle_ttl"` // Buckets idle this long are dropped
}

// CacheConfig configures the sanitized-evaluation memo
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:           "./data",
			DefaultKey:    "ABCC11",
			DefaultSource: string(SourceWikiCrow),
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 20,
				Burst:             40,
				IdleTTL:           10 * time.Minute,
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
