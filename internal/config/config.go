package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/polarbearcad/polarbear/pkg/tessellate"
)

// Config holds viewer session settings loaded from a YAML file.
type Config struct {
	// Precision selects a tessellation preset: "low", "medium" or "high".
	// Tolerance, when positive, overrides the preset with an explicit
	// chord deviation in model units.
	Precision string  `yaml:"precision"`
	Tolerance float64 `yaml:"tolerance"`

	// UpAxis is the elevation axis: "x", "y" or "z".
	UpAxis string `yaml:"up_axis"`

	// Workers bounds concurrent recompute jobs. Zero means one per CPU.
	Workers int `yaml:"workers"`

	// WatchDebounce is the file-watch settle time in milliseconds.
	WatchDebounce int `yaml:"watch_debounce_ms"`
}

// Default returns the settings used when no config file is present.
func Default() Config {
	return Config{
		Precision:     "medium",
		UpAxis:        "z",
		Workers:       runtime.NumCPU(),
		WatchDebounce: 250,
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Workers < 0 {
		return cfg, fmt.Errorf("invalid worker count %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = 250
	}
	if _, err := cfg.Axis(); err != nil {
		return cfg, err
	}
	if _, err := cfg.DisplayTolerance(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the settings to a YAML file.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// DisplayTolerance resolves the effective chord deviation for display
// meshes. An explicit tolerance wins over the precision preset.
func (c Config) DisplayTolerance() (float64, error) {
	if c.Tolerance > 0 {
		return c.Tolerance, nil
	}
	switch c.Precision {
	case "", "medium":
		return tessellate.PrecisionMedium, nil
	case "low":
		return tessellate.PrecisionLow, nil
	case "high":
		return tessellate.PrecisionHigh, nil
	}
	return 0, fmt.Errorf("unknown precision preset %q", c.Precision)
}

// Axis returns the elevation axis index (0, 1 or 2).
func (c Config) Axis() (int, error) {
	switch c.UpAxis {
	case "x", "X":
		return 0, nil
	case "y", "Y":
		return 1, nil
	case "", "z", "Z":
		return 2, nil
	}
	return 0, fmt.Errorf("unknown up axis %q", c.UpAxis)
}
