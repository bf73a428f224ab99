// Package config loads filemgr settings from defaults, a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/filemgr/internal/dirsize"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FILEMGR"

// Outputs lists the accepted output formats.
//
//nolint:gochecknoglobals // Config constant
var Outputs = []string{"table", "json"}

// Log holds logging settings.
type Log struct {
	Level       string `yaml:"level"       envconfig:"LEVEL"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// Config holds all settings.
type Config struct {
	// Depth bounds the size computation.
	Depth int `yaml:"depth" envconfig:"DEPTH"`
	// Concurrency bounds filesystem reads in flight during size computation (0 = unbounded).
	Concurrency int64 `yaml:"concurrency" envconfig:"CONCURRENCY"`
	// ShowHidden lists dot-files.
	ShowHidden bool `yaml:"show_hidden" envconfig:"SHOW_HIDDEN"`
	// Output is the output format.
	Output string `yaml:"output" envconfig:"OUTPUT"`
	// Log configures logging.
	Log Log `yaml:"log"`

	path string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Depth:       dirsize.DefaultDepth,
		Concurrency: 0,
		ShowHidden:  false,
		Output:      "table",
		Log: Log{
			Level:       "warn",
			Development: true,
		},
	}
}

// DefaultPath returns the location of the implicit config file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".config", "filemgr", "config.yaml")
	}

	return filepath.Join(dir, "filemgr", "config.yaml")
}

// Load layers the config file and the environment over the defaults.
//
// If path is empty the implicit file is used when it exists.
// An explicitly named file must be readable.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath()); err == nil {
			path = DefaultPath()
		}
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("loading config %q: %w", path, err)
		}

		cfg.path = path
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// Path returns the file the config was read from, empty if none.
func (c *Config) Path() string {
	return c.path
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Depth < 0 {
		errs = append(errs, fmt.Errorf("depth cannot be negative: %d", c.Depth))
	}

	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency cannot be negative: %d", c.Concurrency))
	}

	if !slices.Contains(Outputs, c.Output) {
		errs = append(errs, fmt.Errorf("invalid output format %q: must be one of %v", c.Output, Outputs))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %w", err))
	}

	return errors.Join(errs...)
}
