// Package config loads and validates the gateway configuration file
// (.mcpgate.toml). Policy objects defined here are loaded once at process
// start and consumed read-only by the core components.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alpstack/mcpgate/internal/domain"
	errs "github.com/alpstack/mcpgate/internal/errors"
)

var _ Loader = (*DefaultLoader)(nil)

// Loader loads gateway configuration from a file path.
type Loader interface {
	Load(path string) (*Config, error)
}

// DefaultLoader is the TOML-backed configuration loader.
type DefaultLoader struct{}

// Duration wraps time.Duration so TOML values like "250ms" decode directly.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the .mcpgate.toml file structure.
type Config struct {
	Servers []ServerConfig `toml:"servers"`
	Cache   CacheConfig    `toml:"cache"`
	Retry   RetryConfig    `toml:"retry"`
	Timeout TimeoutConfig  `toml:"timeout"`
	Health  HealthConfig   `toml:"health"`
	Redis   RedisConfig    `toml:"redis"`
}

// ServerConfig seeds one backend server registration.
type ServerConfig struct {
	ID        string `toml:"id"`
	Name      string `toml:"name"`
	Endpoint  string `toml:"endpoint"`
	Transport string `toml:"transport"`
	Priority  int    `toml:"priority"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	DefaultTTL Duration `toml:"default_ttl"`
	MaxSize    int      `toml:"max_size"`
}

// RetryConfig controls the backend client retry policy.
type RetryConfig struct {
	MaxAttempts       int      `toml:"max_attempts"`
	BackoffDelay      Duration `toml:"backoff_delay"`
	BackoffMultiplier float64  `toml:"backoff_multiplier"`
	MaxDelay          Duration `toml:"max_delay"`
}

// TimeoutConfig controls the HTTP transport used to reach backends.
type TimeoutConfig struct {
	Connect Duration `toml:"connect"`
	Read    Duration `toml:"read"`
}

// HealthConfig controls the periodic health-check loop.
type HealthConfig struct {
	CheckInterval      Duration `toml:"check_interval"`
	UnhealthyThreshold int      `toml:"unhealthy_threshold"`
}

// RedisConfig configures the optional durable cache tier.
// An empty Addr disables the durable tier; the gateway then runs volatile-only.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// DefaultConfig returns a configuration with every policy field set to its default.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			DefaultTTL: Duration(5 * time.Minute),
			MaxSize:    1000,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			BackoffDelay:      Duration(100 * time.Millisecond),
			BackoffMultiplier: 2.0,
			MaxDelay:          Duration(5 * time.Second),
		},
		Timeout: TimeoutConfig{
			Connect: Duration(5 * time.Second),
			Read:    Duration(30 * time.Second),
		},
		Health: HealthConfig{
			CheckInterval:      Duration(30 * time.Second),
			UnhealthyThreshold: 3,
		},
	}
}

// Load reads, decodes and validates the configuration file at path.
// Fields absent from the file keep their defaults.
func (d *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", errs.ErrConfigLoadFailed)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found (%s)", errs.ErrConfigLoadFailed, path)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", errs.ErrConfigLoadFailed, path, err)
	}

	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", errs.ErrConfigLoadFailed, path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrConfigLoadFailed, err)
	}

	return cfg, nil
}

// ListServers returns a copy of the configured server entries.
func (c *Config) ListServers() []ServerConfig {
	return slices.Clone(c.Servers)
}

func (c *Config) validate() error {
	seen := make(map[string]struct{}, len(c.Servers))
	for _, s := range c.Servers {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return fmt.Errorf("server id cannot be empty")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate server id: %s", id)
		}
		seen[id] = struct{}{}

		if strings.TrimSpace(s.Endpoint) == "" {
			return fmt.Errorf("server '%s': endpoint cannot be empty", id)
		}

		switch domain.Transport(s.Transport) {
		case domain.TransportHTTP, domain.TransportStdio:
		default:
			return fmt.Errorf("server '%s': unsupported transport '%s'", id, s.Transport)
		}
	}

	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache default_ttl must be positive")
	}
	if c.Cache.MaxSize <= 0 {
		return fmt.Errorf("cache max_size must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1")
	}
	if c.Retry.BackoffDelay <= 0 {
		return fmt.Errorf("retry backoff_delay must be positive")
	}
	if c.Retry.BackoffMultiplier < 1 {
		return fmt.Errorf("retry backoff_multiplier must be at least 1")
	}
	if c.Retry.MaxDelay < c.Retry.BackoffDelay {
		return fmt.Errorf("retry max_delay cannot be below backoff_delay")
	}
	if c.Health.CheckInterval <= 0 {
		return fmt.Errorf("health check_interval must be positive")
	}
	if c.Health.UnhealthyThreshold < 1 {
		return fmt.Errorf("health unhealthy_threshold must be at least 1")
	}

	return nil
}
