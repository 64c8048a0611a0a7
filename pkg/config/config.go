// Package config holds the resolved configuration bundle for a
// benchmark run. A run is configured either from a YAML file or
// assembled directly from CLI flags; both paths produce the same
// Config and go through the same validation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs for one benchmark run.
type Config struct {
	Infiles  string `yaml:"infiles,omitempty"`  // path to the input file list
	Outfiles string `yaml:"outfiles,omitempty"` // path to the output file list

	Jobs      int    `yaml:"jobs"`
	Split     string `yaml:"split"` // "separate", "overlap" or "same"
	Mode      string `yaml:"mode"`  // "read", "write" or "readwrite"
	Randomize bool   `yaml:"randomize"`
	WriteSize int64  `yaml:"write_size"` // bytes per synthesized output file

	ReportHz float64 `yaml:"report_hz"`         // report rows per second
	MaxOps   float64 `yaml:"max_ops,omitempty"` // per-worker ops/sec cap, 0 = off
	Seed     int64   `yaml:"seed,omitempty"`    // shuffle seed, 0 = from clock
	NoColor  bool    `yaml:"no_color,omitempty"`
}

// Default returns a Config with the documented defaults applied.
func Default() Config {
	return Config{
		Jobs:      1,
		Split:     "separate",
		Mode:      "read",
		WriteSize: 1 << 20,
		ReportHz:  1,
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults backfills zero values a YAML file may have omitted.
func applyDefaults(cfg *Config) {
	if cfg.Jobs == 0 {
		cfg.Jobs = 1
	}
	if cfg.Split == "" {
		cfg.Split = "separate"
	}
	if cfg.Mode == "" {
		cfg.Mode = "read"
	}
	if cfg.WriteSize == 0 {
		cfg.WriteSize = 1 << 20
	}
	if cfg.ReportHz == 0 {
		cfg.ReportHz = 1
	}
}

// Save serializes the effective configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks the bundle before any worker starts. Failures here
// are configuration errors and fatal.
func (c *Config) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	switch c.Split {
	case "separate", "overlap", "same":
	default:
		return fmt.Errorf("unknown split %q (want separate, overlap or same)", c.Split)
	}
	switch c.Mode {
	case "read", "write", "readwrite":
	default:
		return fmt.Errorf("unknown mode %q (want read, write or readwrite)", c.Mode)
	}

	if c.Infiles == "" && c.Outfiles == "" {
		return fmt.Errorf("need at least one of infiles, outfiles")
	}
	if c.Mode != "write" && c.Infiles == "" {
		return fmt.Errorf("mode %q needs an input file list", c.Mode)
	}
	if c.Mode != "read" && c.Outfiles == "" {
		return fmt.Errorf("mode %q needs an output file list", c.Mode)
	}
	if c.Mode == "write" && c.WriteSize <= 0 {
		return fmt.Errorf("write_size must be positive, got %d", c.WriteSize)
	}
	return nil
}
