// Package config loads program configuration: embedded defaults overlaid
// with an optional YAML file, then validated.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"
)

//go:embed config.yaml
var defaultConfig []byte

type (
	ViewportConfig struct {
		Width  int `yaml:"width" validate:"min=1,max=16384"`
		Height int `yaml:"height" validate:"min=1,max=16384"`
	}

	InputConfig struct {
		Charset string `yaml:"charset"`
	}

	HeadlessConfig struct {
		Frame uint64 `yaml:"frame"`
	}

	GoldenConfig struct {
		FixtureDir string `yaml:"fixture_dir" validate:"required"`
		GoldenDir  string `yaml:"golden_dir" validate:"required"`
		Width      int    `yaml:"width" validate:"min=1,max=16384"`
		Height     int    `yaml:"height" validate:"min=1,max=16384"`
		Frame      uint64 `yaml:"frame"`
		Snapshots  bool   `yaml:"snapshots"`
		Tolerance  int    `yaml:"tolerance" validate:"min=0,max=255"`
	}

	ProcessSplitConfig struct {
		Enabled bool `yaml:"enabled"`
	}

	ViewerConfig struct {
		TickHz             uint32 `yaml:"tick_hz" validate:"min=1,max=1000"`
		MaxUpdatesPerFrame uint32 `yaml:"max_updates_per_frame" validate:"min=1"`
		Pattern            string `yaml:"pattern" validate:"oneof=plasma checker"`
		Overlay            bool   `yaml:"overlay"`
	}

	Config struct {
		Version      int                `yaml:"version" validate:"eq=1"`
		Viewport     ViewportConfig     `yaml:"viewport"`
		Input        InputConfig        `yaml:"input"`
		Headless     HeadlessConfig     `yaml:"headless"`
		Golden       GoldenConfig       `yaml:"golden"`
		ProcessSplit ProcessSplitConfig `yaml:"process_split"`
		Viewer       ViewerConfig       `yaml:"viewer"`
		Logging      LoggingConfig      `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config) error {
	// only fields we defined are accepted, so yaml.Unmarshal cannot be used
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return nil
}

// MaxViewportSize bounds viewport width and height, in config files and on
// the command line.
const MaxViewportSize = 16384

// CheckViewport reports whether width x height is a usable viewport.
func CheckViewport(width, height int) error {
	if width < 1 || width > MaxViewportSize || height < 1 || height > MaxViewportSize {
		return fmt.Errorf("viewport must be between 1x1 and %dx%d, got %dx%d", MaxViewportSize, MaxViewportSize, width, height)
	}
	return nil
}

// Validate checks cfg against the field constraints.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads the configuration from the file at path on top of the
// embedded defaults and validates the result. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := unmarshalConfig(defaultConfig, cfg); err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}

	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := unmarshalConfig(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded configuration text.
func Default() []byte {
	return bytes.Clone(defaultConfig)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
