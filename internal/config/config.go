// Package config loads the printbridge YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tillpoint/printbridge/internal/device"
	"github.com/tillpoint/printbridge/internal/discovery"
)

// Config holds the service configuration.
type Config struct {
	Listen       string              `yaml:"listen"`        // e.g. ":9123"
	RegistryFile string              `yaml:"registry_file"` // printer ID/name store
	LogLevel     string              `yaml:"log_level"`
	Capabilities device.Capabilities `yaml:"capabilities"`
	Scan         ScanConfig          `yaml:"scan"`
	CardFee      float64             `yaml:"card_fee_percent"`
}

// ScanConfig tunes the discovery sweep.
type ScanConfig struct {
	BatchSize    int      `yaml:"batch_size"`
	BatchDelayMS int      `yaml:"batch_delay_ms"`
	CacheTTLSec  int      `yaml:"cache_ttl_sec"`
	Subnets      []string `yaml:"subnets"` // empty means the built-in topology table
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Listen:       ":9123",
		RegistryFile: "printers.json",
		LogLevel:     "info",
		Capabilities: device.DefaultCapabilities(),
		Scan: ScanConfig{
			BatchSize:    discovery.DefaultBatchSize,
			BatchDelayMS: int(discovery.DefaultBatchDelay / time.Millisecond),
			CacheTTLSec:  int(discovery.DefaultCacheTTL / time.Second),
		},
	}
}

// Load reads the config from path, creating it with defaults when missing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	} else if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Scan.BatchSize <= 0 {
		cfg.Scan.BatchSize = discovery.DefaultBatchSize
	}
	if cfg.Scan.CacheTTLSec <= 0 {
		cfg.Scan.CacheTTLSec = int(discovery.DefaultCacheTTL / time.Second)
	}
	if len(cfg.Capabilities.ProbeStrategies) == 0 {
		cfg.Capabilities.ProbeStrategies = device.DefaultCapabilities().ProbeStrategies
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BatchDelay returns the inter-batch pacing as a duration.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.Scan.BatchDelayMS) * time.Millisecond
}

// CacheTTL returns the discovery cache window as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Scan.CacheTTLSec) * time.Second
}
