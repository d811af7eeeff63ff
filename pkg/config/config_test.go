package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptional_Missing(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOptional_FillsDefaults(t *testing.T) {
	dir := t.TempDir()
	data := []byte("logging:\n  level: debug\nmetrics:\n  enabled: true\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), data, 0644))

	cfg, err := LoadOptional(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "mutor", cfg.Metrics.Namespace)
	assert.Equal(t, DefaultMaxPasses, cfg.Scheduler.MaxPasses)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "logging:\n  level: loud\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"negative passes", "scheduler:\n  max_passes: -1\n"},
		{"not yaml", "logging: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_ZeroPassesUsesDefault(t *testing.T) {
	cfg, err := Parse([]byte("scheduler:\n  max_passes: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxPasses, cfg.Scheduler.MaxPasses)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Errors.Verbose = true

	data, err := cfg.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
