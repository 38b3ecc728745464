// Package config loads thermald's operational YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is thermald's daemon-level operational configuration: sysfs
// roots, where to find the vendor sensor/cdev definitions, and the
// power-hint peer's address.
type Config struct {
	ThermalRoot           string `yaml:"thermal_root"`
	CoolingRoot           string `yaml:"cooling_root"`
	CPURoot               string `yaml:"cpu_root"`
	ProcRoot              string `yaml:"proc_root"`
	ConfigProperty        string `yaml:"config_property"`
	ConfigPropertyDefault string `yaml:"config_property_default"`
	MinPollInterval       string `yaml:"min_poll_interval"`
	PowerHintSocket       string `yaml:"power_hint_socket"`
	LogLevel              string `yaml:"log_level"`
}

// Default returns thermald's baseline configuration, matching the
// original implementation's compiled-in defaults.
func Default() *Config {
	return &Config{
		ThermalRoot:           "/sys/devices/virtual/thermal",
		CoolingRoot:           "/sys/devices/virtual/thermal",
		CPURoot:               "/sys/devices/system/cpu",
		ProcRoot:              "/proc",
		ConfigProperty:        "vendor.thermal.config",
		ConfigPropertyDefault: "thermal_info_config.json",
		MinPollInterval:       "2s",
		PowerHintSocket:       "/dev/socket/thermal-powerhint",
		LogLevel:              "info",
	}
}

// Load reads YAML from path and fills any unset field from Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *Config) {
	d := Default()
	if c.ThermalRoot == "" {
		c.ThermalRoot = d.ThermalRoot
	}
	if c.CoolingRoot == "" {
		c.CoolingRoot = d.CoolingRoot
	}
	if c.CPURoot == "" {
		c.CPURoot = d.CPURoot
	}
	if c.ProcRoot == "" {
		c.ProcRoot = d.ProcRoot
	}
	if c.ConfigProperty == "" {
		c.ConfigProperty = d.ConfigProperty
	}
	if c.ConfigPropertyDefault == "" {
		c.ConfigPropertyDefault = d.ConfigPropertyDefault
	}
	if c.MinPollInterval == "" {
		c.MinPollInterval = d.MinPollInterval
	}
	if c.PowerHintSocket == "" {
		c.PowerHintSocket = d.PowerHintSocket
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// MinPollDuration parses MinPollInterval, falling back to Default()'s
// value on a malformed string.
func (c *Config) MinPollDuration() time.Duration {
	d, err := time.ParseDuration(c.MinPollInterval)
	if err != nil {
		fallback, _ := time.ParseDuration(Default().MinPollInterval)
		return fallback
	}
	return d
}
