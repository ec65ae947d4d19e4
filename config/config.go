// Package config loads recognizer settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/az-ai-labs/numrec/extractor"
	"github.com/az-ai-labs/numrec/internal/logging"
)

// Defaults applied to zero values after loading.
const (
	DefaultScanTimeout = 2 * time.Second
	DefaultCacheSize   = 1024
)

// Config holds the complete recognizer configuration.
type Config struct {
	Mode          extractor.Mode `koanf:"mode"`            // default, pure_number, currency, unit
	MaxInputBytes int            `koanf:"max_input_bytes"` // larger inputs yield no results
	ScanTimeout   time.Duration  `koanf:"scan_timeout"`    // per pattern match attempt
	CacheSize     int            `koanf:"cache_size"`      // recognized texts kept in memory
	Log           logging.Config `koanf:"log"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: %s", extractor.ErrUnknownMode, c.Mode)
	}
	if c.MaxInputBytes <= 0 {
		return fmt.Errorf("max_input_bytes must be positive, got %d", c.MaxInputBytes)
	}
	if c.ScanTimeout < 0 {
		return errors.New("scan_timeout must not be negative")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.MaxInputBytes == 0 {
		cfg.MaxInputBytes = extractor.DefaultMaxInputBytes
	}
	if cfg.ScanTimeout == 0 {
		cfg.ScanTimeout = DefaultScanTimeout
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	def := logging.NewDefaultConfig()
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Format
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = def.Output
	}
}
