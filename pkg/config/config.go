// Package config loads the CLI and service configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the serve, eval and repl commands.
type Config struct {
	// Listen is the address the HTTP service binds to.
	Listen string `yaml:"listen"`
	// StorePath is the SQLite history database path. Empty selects the
	// in-memory store.
	StorePath string `yaml:"store_path"`
	// Precision is the number of decimal places kept by division.
	Precision int32 `yaml:"precision"`
	// LegacyInequality makes != behave like == for bug-compatible hosts.
	LegacyInequality bool `yaml:"legacy_inequality"`
	// Variables are pre-bound into every evaluation. Values that parse
	// as numbers bind numerically, "null" binds the null value, and
	// everything else binds as a string.
	Variables map[string]string `yaml:"variables"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:    "0.0.0.0:8787",
		Precision: 16,
	}
}

// Load reads a YAML configuration file. Fields not present keep their
// defaults; unknown fields are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Precision <= 0 {
		return nil, fmt.Errorf("parsing %s: precision must be positive, got %d", path, cfg.Precision)
	}
	return cfg, nil
}

func unmarshalStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		// empty file keeps the defaults
		return nil
	}
	return err
}
