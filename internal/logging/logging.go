// Package logging builds the zap loggers used across the module.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls log level, encoding, and destination.
type Config struct {
	Level  zapcore.Level `koanf:"level"`
	Format string        `koanf:"format"` // json or console
	Output string        `koanf:"output"` // stderr or stdout
}

// NewDefaultConfig returns info-level JSON logging to stderr.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.InfoLevel,
		Format: "json",
		Output: "stderr",
	}
}

// Validate checks the config for unsupported values.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	if c.Output != "stderr" && c.Output != "stdout" {
		return fmt.Errorf("output must be 'stderr' or 'stdout', got %q", c.Output)
	}
	return nil
}

// New builds a logger from cfg writing to cfg.Output.
func New(cfg *Config) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	var ws zapcore.WriteSyncer = os.Stderr
	if cfg.Output == "stdout" {
		ws = os.Stdout
	}
	return NewWithWriter(cfg, ws)
}

// NewWithWriter is like New but writes to ws regardless of cfg.Output.
func NewWithWriter(cfg *Config, ws zapcore.WriteSyncer) (*zap.Logger, error) {
	if cfg.Format != "json" && cfg.Format != "console" {
		return nil, fmt.Errorf("invalid config: format must be 'json' or 'console', got %q", cfg.Format)
	}
	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.Lock(ws), zap.NewAtomicLevelAt(cfg.Level))
	return zap.New(core), nil
}

// newEncoder creates JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}
