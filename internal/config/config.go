// Package config assembles the application configuration: the reusable core
// sections plus database, redis, rates and alert-engine settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/kursbot/core/config"
	coredatabase "github.com/m3rciful/kursbot/core/database"
)

// RedisConfig holds the rate-cache connection settings. An empty Addr
// disables caching entirely.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// RatesConfig configures the exchange-rate provider.
type RatesConfig struct {
	// URL is the endpoint returning the daily rates table quoted in the
	// base currency.
	URL            string `yaml:"url" envconfig:"RATES_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"RATES_TIMEOUT_SECONDS"`
	CacheTTLMin    int    `yaml:"cache_ttl_minutes" envconfig:"RATES_CACHE_TTL_MINUTES"`
}

// Timeout returns the provider request timeout.
func (r RatesConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long cached rates stay fresh.
func (r RatesConfig) CacheTTL() time.Duration {
	if r.CacheTTLMin <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(r.CacheTTLMin) * time.Minute
}

// AlertsConfig configures the alert evaluation engine.
type AlertsConfig struct {
	// CycleIntervalMin is the in-process poller interval; 0 disables the
	// background poller (external scheduler drives cycles instead).
	CycleIntervalMin int `yaml:"cycle_interval_minutes" envconfig:"ALERTS_CYCLE_INTERVAL_MINUTES"`
}

// CycleInterval returns the poller interval, or zero when disabled.
func (a AlertsConfig) CycleInterval() time.Duration {
	if a.CycleIntervalMin <= 0 {
		return 0
	}
	return time.Duration(a.CycleIntervalMin) * time.Minute
}

// Config is the full application configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Redis    RedisConfig         `yaml:"redis"`
	Rates    RatesConfig         `yaml:"rates"`
	Alerts   AlertsConfig        `yaml:"alerts"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Rates.URL) == "" {
		return nil, fmt.Errorf("rates.url is required")
	}
	return &cfg, nil
}
