// Package config loads and validates the engine's on-disk settings: the
// deny-list extensions the safety guard will honor, default method and
// verification behavior, logging, and report persistence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"wipeengine/internal/pattern"
)

// Config is the engine's persisted configuration.
type Config struct {
	Safety struct {
		// ExtraDenyPaths only adds to the hard-coded baseline deny set;
		// it can never remove an entry from it.
		ExtraDenyPaths []string `yaml:"extra_deny_paths"`
	} `yaml:"safety"`

	Wipe struct {
		DefaultMethod string  `yaml:"default_method"`
		Verify        bool    `yaml:"verify"`
		MaxSpeedMBps  float64 `yaml:"max_speed_mbps"`
		Profile       string  `yaml:"profile"`
	} `yaml:"wipe"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`

	Reporting struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`
	} `yaml:"reporting"`
}

// Default returns the engine's baseline configuration.
func Default() *Config {
	c := &Config{}
	c.Wipe.DefaultMethod = string(pattern.MethodQuick)
	c.Wipe.Verify = true
	c.Wipe.MaxSpeedMBps = 0 // 0 = uncapped
	c.Wipe.Profile = "balanced"
	c.Logging.Level = "info"
	c.Logging.File = ""
	c.Reporting.Enabled = true
	c.Reporting.Dir = defaultReportDir()
	return c
}

// Load reads path as YAML, falling back to Default when path is empty
// or does not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks a Config for internally consistent values.
func Validate(cfg *Config) error {
	if _, err := pattern.ValidateMethod(cfg.Wipe.DefaultMethod); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Wipe.MaxSpeedMBps < 0 {
		return fmt.Errorf("config: wipe.max_speed_mbps must be >= 0, got %v", cfg.Wipe.MaxSpeedMBps)
	}
	switch cfg.Wipe.Profile {
	case "safe", "balanced", "aggressive":
	default:
		return fmt.Errorf("config: unknown wipe.profile %q", cfg.Wipe.Profile)
	}
	for _, p := range cfg.Safety.ExtraDenyPaths {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("config: safety.extra_deny_paths entries must be absolute, got %q", p)
		}
	}
	return nil
}

// Save validates cfg and writes it to path as YAML.
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config: refusing to save invalid config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func defaultReportDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "wipeengine", "reports")
	}
	return "wipeengine_reports"
}
