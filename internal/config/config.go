// Package config loads the wadtool configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stuarthighley/wadmap/wad"
)

// EnvPath names the environment variable that may hold the config file path.
const EnvPath = "WADMAP_CONFIG"

// DefaultPath is used when neither the flag nor the environment gives a path.
const DefaultPath = "wadtool.yaml"

// Config holds all settings for wadtool.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	Workers  int    `yaml:"workers"`   // files inspected at once; 0 means one per CPU

	Output OutputConfig `yaml:"output"`
}

// OutputConfig controls what convert writes and what list shows.
type OutputConfig struct {
	Kind      string `yaml:"kind"`      // iwad or pwad
	Namespace string `yaml:"namespace"` // replaces the map namespace when set
	Checksums bool   `yaml:"checksums"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Workers:  0,
		Output: OutputConfig{
			Kind:      "pwad",
			Checksums: true,
		},
	}
}

// Path picks the config file path: the flag value if set, then $WADMAP_CONFIG,
// then DefaultPath.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads config from a YAML file over the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Output.WADKind(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// WorkerCount returns the number of files to inspect at once.
func (c Config) WorkerCount() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// WADKind parses Kind.
func (o OutputConfig) WADKind() (wad.Kind, error) {
	switch strings.ToLower(o.Kind) {
	case "iwad":
		return wad.IWAD, nil
	case "pwad", "":
		return wad.PWAD, nil
	}
	return 0, fmt.Errorf("output kind must be iwad or pwad, got %q", o.Kind)
}
