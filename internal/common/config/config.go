package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	Log         LogConfig
	Database    DatabaseConfig
	Overlay     OverlayConfig
	Calibration CalibrationConfig
}

type AppConfig struct {
	Port        string
	Environment string
}

type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Path string
}

// OverlayConfig шаг сетки и интервалы линеек в сантиметрах.
type OverlayConfig struct {
	GridSpacingCm   float64
	MajorIntervalCm float64
	MinorIntervalCm float64
}

type CalibrationConfig struct {
	// DefaultReferenceCm длина эталона по умолчанию, 0 не подставлять.
	DefaultReferenceCm float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "3000")
	v.SetDefault("app.env", "development")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("database.path", "data/db/mockup.db")
	v.SetDefault("overlay.grid_spacing_cm", 1.0)
	v.SetDefault("overlay.major_interval_cm", 1.0)
	v.SetDefault("overlay.minor_interval_cm", 0.5)
	v.SetDefault("calibration.default_reference_cm", 0.0)
}

// Load загружает конфигурацию.
// Приоритет: переменные окружения MOCKUP_*, затем config.toml, затем значения по умолчанию.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/mockup")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("MOCKUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Port:        v.GetString("app.port"),
			Environment: v.GetString("app.env"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Overlay: OverlayConfig{
			GridSpacingCm:   v.GetFloat64("overlay.grid_spacing_cm"),
			MajorIntervalCm: v.GetFloat64("overlay.major_interval_cm"),
			MinorIntervalCm: v.GetFloat64("overlay.minor_interval_cm"),
		},
		Calibration: CalibrationConfig{
			DefaultReferenceCm: v.GetFloat64("calibration.default_reference_cm"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые нельзя исправить молча.
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return errors.New("app.port is required")
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Overlay.GridSpacingCm <= 0 {
		return fmt.Errorf("overlay.grid_spacing_cm must be positive, got %v", c.Overlay.GridSpacingCm)
	}
	if c.Overlay.MajorIntervalCm <= 0 || c.Overlay.MinorIntervalCm <= 0 {
		return errors.New("overlay ruler intervals must be positive")
	}
	if c.Overlay.MinorIntervalCm >= c.Overlay.MajorIntervalCm {
		return fmt.Errorf("overlay.minor_interval_cm (%v) must be less than overlay.major_interval_cm (%v)",
			c.Overlay.MinorIntervalCm, c.Overlay.MajorIntervalCm)
	}
	if c.Calibration.DefaultReferenceCm < 0 {
		return errors.New("calibration.default_reference_cm must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
