package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "3000", cfg.App.Port)
		assert.Equal(t, "development", cfg.App.Environment)
		assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
		assert.Equal(t, 10*time.Second, cfg.HTTP.WriteTimeout)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, "data/db/mockup.db", cfg.Database.Path)
		assert.Equal(t, 1.0, cfg.Overlay.GridSpacingCm)
		assert.Equal(t, 1.0, cfg.Overlay.MajorIntervalCm)
		assert.Equal(t, 0.5, cfg.Overlay.MinorIntervalCm)
		assert.Zero(t, cfg.Calibration.DefaultReferenceCm)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with MOCKUP prefix", func(t *testing.T) {
		t.Setenv("MOCKUP_APP_PORT", "9000")
		t.Setenv("MOCKUP_APP_ENV", "production")
		t.Setenv("MOCKUP_HTTP_READ_TIMEOUT", "3s")
		t.Setenv("MOCKUP_LOG_FORMAT", "json")
		t.Setenv("MOCKUP_DATABASE_PATH", "/tmp/mockup.db")
		t.Setenv("MOCKUP_OVERLAY_GRID_SPACING_CM", "2.5")
		t.Setenv("MOCKUP_CALIBRATION_DEFAULT_REFERENCE_CM", "8.56")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "/tmp/mockup.db", cfg.Database.Path)
		assert.Equal(t, 2.5, cfg.Overlay.GridSpacingCm)
		assert.Equal(t, 8.56, cfg.Calibration.DefaultReferenceCm)
	})

	t.Run("rejects minor interval not below major", func(t *testing.T) {
		t.Setenv("MOCKUP_OVERLAY_MINOR_INTERVAL_CM", "1")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Port: "3000"},
			Database: DatabaseConfig{Path: "mockup.db"},
			Overlay:  OverlayConfig{GridSpacingCm: 1, MajorIntervalCm: 1, MinorIntervalCm: 0.5},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.App.Port = "" }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"zero grid spacing", func(c *Config) { c.Overlay.GridSpacingCm = 0 }},
		{"negative major", func(c *Config) { c.Overlay.MajorIntervalCm = -1 }},
		{"zero minor", func(c *Config) { c.Overlay.MinorIntervalCm = 0 }},
		{"minor above major", func(c *Config) { c.Overlay.MinorIntervalCm = 2 }},
		{"negative reference", func(c *Config) { c.Calibration.DefaultReferenceCm = -8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
