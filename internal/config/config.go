// Package config handles objmesh configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/objmesh/pkg/mesh"
)

// Config holds all tool settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Batch   BatchConfig   `yaml:"batch"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig selects the conversion.
type MeshConfig struct {
	Mode      string `yaml:"mode"`      // triangles, tessellate, keep, lines
	Attribute string `yaml:"attribute"` // none, texcoord, normal
}

// InputConfig holds OBJ parsing settings.
type InputConfig struct {
	NameEncoding string `yaml:"name_encoding"` // "" or utf-8, euc-kr, shift-jis, latin1
}

// OutputConfig holds output locations.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// BatchConfig holds batch conversion settings.
type BatchConfig struct {
	Workers int `yaml:"workers"` // 0 = one per CPU
}

// PreviewConfig holds wireframe thumbnail settings.
type PreviewConfig struct {
	Size        int    `yaml:"size"`
	Supersample int    `yaml:"supersample"`
	Axis        string `yaml:"axis"` // view direction: x, y or z
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			Mode:      "triangles",
			Attribute: "texcoord",
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Preview: PreviewConfig{
			Size:        256,
			Supersample: 2,
			Axis:        "z",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if err := mesh.CheckMode(c.Mesh.Mode); err != nil {
		return fmt.Errorf("mesh.mode: %w", err)
	}
	if _, err := mesh.ParseAttributeMode(c.Mesh.Attribute); err != nil {
		return fmt.Errorf("mesh.attribute: %w", err)
	}
	switch c.Preview.Axis {
	case "x", "y", "z":
	default:
		return fmt.Errorf("preview.axis: unknown axis %q", c.Preview.Axis)
	}
	if c.Preview.Size <= 0 || c.Preview.Supersample <= 0 {
		return fmt.Errorf("preview: size and supersample must be positive")
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers: must not be negative")
	}
	return nil
}
