// Package config handles configuration loading for confgauge.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/seenimoa/confgauge/internal/canvas"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONFGAUGE"

// Config represents the complete application configuration.
type Config struct {
	Gauge   GaugeConfig   `mapstructure:"gauge"   yaml:"gauge" json:"gauge"`
	Render  RenderConfig  `mapstructure:"render"  yaml:"render" json:"render"`
	API     APIConfig     `mapstructure:"api"     yaml:"api" json:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `mapstructure:"-" yaml:"-" json:"config_file,omitempty"`
}

// GaugeConfig holds the dial styling shared by both renderers.
type GaugeConfig struct {
	Radius    float64       `mapstructure:"radius"       yaml:"radius" json:"radius"`
	Clamp     bool          `mapstructure:"clamp"        yaml:"clamp" json:"clamp"`       // clamp out-of-range values onto the dial
	Strategy  string        `mapstructure:"strategy"     yaml:"strategy" json:"strategy"` // "auto", "plugin" or "standalone"
	Palette   PaletteConfig `mapstructure:"palette"      yaml:"palette" json:"palette"`
	Ring      RingConfig    `mapstructure:"ring"         yaml:"ring" json:"ring"`
	TextFont  string        `mapstructure:"text_font"    yaml:"text_font" json:"text_font"`
	LabelFont string        `mapstructure:"label_font"   yaml:"label_font" json:"label_font"`
}

// PaletteConfig is the standalone dial's value-arc colors.
type PaletteConfig struct {
	Positive string `mapstructure:"positive" yaml:"positive" json:"positive"`
	Warning  string `mapstructure:"warning"  yaml:"warning" json:"warning"`
}

// RingConfig is the chart plugin's ring colors.
type RingConfig struct {
	Accent    string `mapstructure:"accent"    yaml:"accent" json:"accent"`
	Remainder string `mapstructure:"remainder" yaml:"remainder" json:"remainder"`
}

// RenderConfig holds output defaults for the CLI and API.
type RenderConfig struct {
	Width      int    `mapstructure:"width"      yaml:"width" json:"width"`
	Height     int    `mapstructure:"height"     yaml:"height" json:"height"`
	Format     string `mapstructure:"format"     yaml:"format" json:"format"` // "svg", "png" or "json"
	Background string `mapstructure:"background" yaml:"background" json:"background"`
	Workers    int    `mapstructure:"workers"    yaml:"workers" json:"workers"` // batch concurrency
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host" json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port" json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	CacheTTL    int      `mapstructure:"cache_ttl"    yaml:"cache_ttl" json:"cache_ttl"`   // seconds
	RateLimit   float64  `mapstructure:"rate_limit"   yaml:"rate_limit" json:"rate_limit"` // renders per second
	RateBurst   int      `mapstructure:"rate_burst"   yaml:"rate_burst" json:"rate_burst"`
	ServeUI     bool     `mapstructure:"serve_ui"     yaml:"serve_ui" json:"serve_ui"` // embedded live dashboard at /
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level" json:"level"`   // "trace", "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.confgauge/config.yaml (home directory)
//  3. /etc/confgauge/config.yaml (system)
//
// Environment variables override config file values.
// Format: CONFGAUGE_<SECTION>_<KEY>, e.g., CONFGAUGE_GAUGE_CLAMP
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".confgauge"))
	v.AddConfigPath("/etc/confgauge")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	return &cfg, nil
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Gauge defaults
	v.SetDefault("gauge.radius", 80.0)
	v.SetDefault("gauge.clamp", false)
	v.SetDefault("gauge.strategy", "auto")
	v.SetDefault("gauge.palette.positive", "#2ecc71")
	v.SetDefault("gauge.palette.warning", "#e74c3c")
	v.SetDefault("gauge.ring.accent", "#0d6efd")
	v.SetDefault("gauge.ring.remainder", "rgba(200, 200, 200, 0.2)")
	v.SetDefault("gauge.text_font", "bold 24px Arial")
	v.SetDefault("gauge.label_font", "14px Arial")

	// Render defaults
	v.SetDefault("render.width", 300)
	v.SetDefault("render.height", 200)
	v.SetDefault("render.format", "svg")
	v.SetDefault("render.background", "")
	v.SetDefault("render.workers", 4)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.cache_ttl", 60) // 1 minute
	v.SetDefault("api.rate_limit", 20.0)
	v.SetDefault("api.rate_burst", 40)
	v.SetDefault("api.serve_ui", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Gauge.Strategy {
	case "auto", "plugin", "standalone":
	default:
		return fmt.Errorf("invalid gauge.strategy %q: want auto, plugin or standalone", c.Gauge.Strategy)
	}
	switch c.Render.Format {
	case "svg", "png", "json":
	default:
		return fmt.Errorf("invalid render.format %q: want svg, png or json", c.Render.Format)
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return fmt.Errorf("render size cannot be negative: %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Gauge.Radius < 0 {
		return fmt.Errorf("gauge.radius cannot be negative: %v", c.Gauge.Radius)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api.port %d", c.API.Port)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q: want text or json", c.Logging.Format)
	}

	colors := []struct{ key, value string }{
		{"gauge.palette.positive", c.Gauge.Palette.Positive},
		{"gauge.palette.warning", c.Gauge.Palette.Warning},
		{"gauge.ring.accent", c.Gauge.Ring.Accent},
		{"gauge.ring.remainder", c.Gauge.Ring.Remainder},
		{"render.background", c.Render.Background},
	}
	for _, col := range colors {
		if col.value == "" {
			continue
		}
		if _, err := canvas.ParseColor(col.value); err != nil {
			return fmt.Errorf("invalid %s: %w", col.key, err)
		}
	}
	for key, font := range map[string]string{"gauge.text_font": c.Gauge.TextFont, "gauge.label_font": c.Gauge.LabelFont} {
		if font == "" {
			continue
		}
		if _, err := canvas.ParseFont(font); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}

// Addr returns the API listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
