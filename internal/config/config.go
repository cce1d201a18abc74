// Package config loads the toolchain configuration file.
//
// Configuration is optional: every field has a working default, and a
// missing file is not an error. When a file is present it is decoded
// strictly, so a misspelled key fails instead of being silently
// ignored.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mheller/vsmoke/internal/builder"
)

// DefaultFile is the configuration file name looked up in the working
// directory when no explicit path is given.
const DefaultFile = "vsmoke.yaml"

// Config controls toolchain binaries and component locations.
type Config struct {
	// Verilator is the verilator binary.
	Verilator string `yaml:"verilator,omitempty"`

	// Make is the make binary.
	Make string `yaml:"make,omitempty"`

	// Jobs is make's parallelism.
	Jobs int `yaml:"jobs,omitempty"`

	// Library is the directory components are resolved in. Each
	// component lives at <library>/<name>/<name>.v.
	Library string `yaml:"library,omitempty"`

	// BuildDir overrides where object directories go. Empty means
	// next to each component.
	BuildDir string `yaml:"build_dir,omitempty"`

	// ExtraFlags are appended to every verilator command line.
	ExtraFlags []string `yaml:"extra_flags,omitempty"`

	// TraceDB is the SQLite file runs are recorded in when tracing
	// is requested without an explicit path.
	TraceDB string `yaml:"trace_db,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Verilator: "verilator",
		Make:      "make",
		Jobs:      4,
		Library:   ".",
		TraceDB:   "vsmoke-trace.db",
	}
}

// Load reads and strictly decodes a configuration file. Fields left
// out of the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when given, otherwise DefaultFile when it
// exists, otherwise the defaults.
func LoadOrDefault(path string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return Load(DefaultFile)
	}
	return Default(), nil
}

func (c Config) validate() error {
	if c.Verilator == "" {
		return fmt.Errorf("verilator must not be empty")
	}
	if c.Make == "" {
		return fmt.Errorf("make must not be empty")
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.Library == "" {
		return fmt.Errorf("library must not be empty")
	}
	return nil
}

// BuilderOptions maps the configuration onto build options.
func (c Config) BuilderOptions() builder.Options {
	return builder.Options{
		Verilator:  c.Verilator,
		Make:       c.Make,
		Jobs:       c.Jobs,
		ExtraFlags: c.ExtraFlags,
	}
}
