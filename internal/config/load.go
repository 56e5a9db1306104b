package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load builds the effective configuration. Each layer overrides the one
// before it: built-in defaults, then the YAML file, then command-line flags.
// The result is validated once all layers are applied, so a flag can repair
// a bad file value.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("invalid config (%s): %w", path, err)
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file: objmesh.yaml in
// the working directory, then config.yaml in ConfigDir.
func findConfigFile() string {
	for _, path := range []string{
		"objmesh.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user objmesh config directory. It falls back to
// a temp-dir location when the OS reports no user config dir.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil || !filepath.IsAbs(base) {
		base = os.TempDir()
	}
	return filepath.Join(base, "objmesh")
}

// loadFromFile merges a YAML file over cfg. Keys the file omits keep their
// current values; unknown keys are rejected so typos do not pass silently.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
