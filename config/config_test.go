package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/az-ai-labs/numrec/extractor"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, extractor.ModeDefault, cfg.Mode)
	assert.Equal(t, extractor.DefaultMaxInputBytes, cfg.MaxInputBytes)
	assert.Equal(t, DefaultScanTimeout, cfg.ScanTimeout)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.Equal(t, zapcore.InfoLevel, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Output)

	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	yamlContent := `mode: unit
max_input_bytes: 4096
scan_timeout: 500ms
cache_size: 16
log:
  level: debug
  format: console
`
	cfg, err := Load([]byte(yamlContent))
	require.NoError(t, err)

	assert.Equal(t, extractor.ModeUnit, cfg.Mode)
	assert.Equal(t, 4096, cfg.MaxInputBytes)
	assert.Equal(t, 500*time.Millisecond, cfg.ScanTimeout)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, zapcore.DebugLevel, cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	t.Setenv("NUMREC_MODE", "currency")
	t.Setenv("NUMREC_CACHE_SIZE", "32")
	t.Setenv("NUMREC_LOG_LEVEL", "warn")

	cfg, err := Load([]byte("mode: unit\ncache_size: 16\n"))
	require.NoError(t, err)

	assert.Equal(t, extractor.ModeCurrency, cfg.Mode)
	assert.Equal(t, 32, cfg.CacheSize)
	assert.Equal(t, zapcore.WarnLevel, cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad yaml", "mode: [", "failed to parse config"},
		{"unknown mode", "mode: metric", "unknown mode"},
		{"negative input limit", "max_input_bytes: -1", "max_input_bytes must be positive"},
		{"negative timeout", "scan_timeout: -1s", "scan_timeout must not be negative"},
		{"negative cache", "cache_size: -5", "cache_size must be positive"},
		{"bad log format", "log:\n  format: xml", "log: format must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(dir, "numrec.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mode: pure_number\n"), 0o600))
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, extractor.ModePureNumber, cfg.Mode)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		path := filepath.Join(dir, "big.yaml")
		big := "# " + strings.Repeat("x", maxConfigFileSize) + "\n"
		require.NoError(t, os.WriteFile(path, []byte(big), 0o600))
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("names file on error", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mode: bogus\n"), 0o600))
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"NUMREC_MODE":            "mode",
		"NUMREC_MAX_INPUT_BYTES": "max_input_bytes",
		"NUMREC_SCAN_TIMEOUT":    "scan_timeout",
		"NUMREC_LOG_LEVEL":       "log.level",
		"NUMREC_LOG_FORMAT":      "log.format",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}
