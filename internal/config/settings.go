package config

import (
	"fmt"
	"os"
	"strings"
)

// SettingSource represents where an effective setting comes from.
type SettingSource string

const (
	SourceEnv     SettingSource = "env"
	SourceConfig  SettingSource = "config"
	SourceDefault SettingSource = "default"
)

// SettingStatus describes one effective setting.
type SettingStatus struct {
	Key    string        `json:"key"`
	Value  string        `json:"value"`
	Source SettingSource `json:"source"`
}

// CheckSettings reports where the settings that change rendering come from.
func CheckSettings(cfg *Config) []SettingStatus {
	def := Default()
	return []SettingStatus{
		checkSetting("gauge.strategy", cfg.Gauge.Strategy, def.Gauge.Strategy),
		checkSetting("gauge.clamp", cfg.Gauge.Clamp, def.Gauge.Clamp),
		checkSetting("gauge.radius", cfg.Gauge.Radius, def.Gauge.Radius),
		checkSetting("gauge.palette.positive", cfg.Gauge.Palette.Positive, def.Gauge.Palette.Positive),
		checkSetting("gauge.palette.warning", cfg.Gauge.Palette.Warning, def.Gauge.Palette.Warning),
		checkSetting("gauge.ring.accent", cfg.Gauge.Ring.Accent, def.Gauge.Ring.Accent),
		checkSetting("render.format", cfg.Render.Format, def.Render.Format),
		checkSetting("api.port", cfg.API.Port, def.API.Port),
		checkSetting("logging.level", cfg.Logging.Level, def.Logging.Level),
	}
}

// EnvName returns the environment variable overriding key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// checkSetting determines the source of a setting.
func checkSetting(key string, value, def any) SettingStatus {
	s := SettingStatus{Key: key, Value: fmt.Sprint(value), Source: SourceDefault}
	switch {
	case os.Getenv(EnvName(key)) != "":
		s.Source = SourceEnv
	case fmt.Sprint(value) != fmt.Sprint(def):
		s.Source = SourceConfig
	}
	return s
}
