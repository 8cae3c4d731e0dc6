// Package config loads the catrec configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Compaction modes.
const (
	ModeMerge  = "merge"
	ModeConcat = "concat"
)

// Log encodings.
const (
	LogProduction  = "production"
	LogDevelopment = "development"
)

type Config struct {
	// Sources are read when none are given on the command line.
	Sources []string `yaml:"sources"`
	Log     Log      `yaml:"log"`
	Output  Output   `yaml:"output"`
	Compact Compact  `yaml:"compact"`
	Write   Write    `yaml:"write"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Output struct {
	Format string `yaml:"format"`
}

type Compact struct {
	Mode   string `yaml:"mode"`
	Output string `yaml:"output"`
}

type Write struct {
	PartitionKey string `yaml:"partition_key"`
	Output       string `yaml:"output"`
}

func Default() Config {
	return Config{
		Log: Log{
			Level:  "info",
			Format: LogProduction,
		},
		Output: Output{
			Format: FormatText,
		},
		Compact: Compact{
			Mode: ModeMerge,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if !slices.Contains([]string{FormatText, FormatJSON}, c.Output.Format) {
		errs = append(errs, fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.Output.Format))
	}
	if !slices.Contains([]string{ModeMerge, ModeConcat}, c.Compact.Mode) {
		errs = append(errs, fmt.Errorf("%w: unknown compaction mode %q", ErrInvalidConfig, c.Compact.Mode))
	}
	if !slices.Contains([]string{LogProduction, LogDevelopment}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format))
	}
	return errors.Join(errs...)
}
