// Package config loads the drawdemo configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SceneConfig sizes the generated demo scene.
type SceneConfig struct {
	Atoms       int     `yaml:"atoms" toml:"atoms"`
	AtomRadius  float32 `yaml:"atom_radius" toml:"atom_radius"`
	Spacing     float32 `yaml:"spacing" toml:"spacing"`
	Cells       int     `yaml:"cells" toml:"cells"`
	Transparent bool    `yaml:"transparent_box" toml:"transparent_box"`
}

// OutputConfig selects where the session document is written.
type OutputConfig struct {
	Path   string `yaml:"path" toml:"path"`
	Format string `yaml:"format" toml:"format"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	Source bool   `yaml:"source" toml:"source"`
	File   string `yaml:"file" toml:"file"`
}

// Config is the demo configuration.
type Config struct {
	Scene   SceneConfig   `yaml:"scene" toml:"scene"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Scene:   SceneConfig{Atoms: 16, AtomRadius: 0.5, Spacing: 1.5, Cells: 16, Transparent: true},
		Output:  OutputConfig{Path: "scene.msgpack", Format: "msgpack"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// ErrUnknownExtension is returned for config files that are neither YAML
// nor TOML.
var ErrUnknownExtension = errors.New("config: unknown file extension")

// Load reads path over the defaults: keys missing from the file keep their
// default value. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := Parse(data, filepath.Ext(path), &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Parse decodes data into cfg, choosing the decoder from ext.
func Parse(data []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	}
	return fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
}

// Validate rejects values the demo cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Scene.Atoms < 1 {
		errs = append(errs, fmt.Errorf("config: scene.atoms %d < 1", c.Scene.Atoms))
	}
	if c.Scene.AtomRadius <= 0 {
		errs = append(errs, fmt.Errorf("config: scene.atom_radius %g <= 0", c.Scene.AtomRadius))
	}
	if c.Scene.Cells < 2 {
		errs = append(errs, fmt.Errorf("config: scene.cells %d < 2", c.Scene.Cells))
	}
	switch c.Output.Format {
	case "msgpack", "json":
	default:
		errs = append(errs, fmt.Errorf("config: output.format %q", c.Output.Format))
	}
	return errors.Join(errs...)
}
