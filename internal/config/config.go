// Package config loads h5frame settings from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/h5frame/internal/logging"
	"github.com/robert-malhotra/h5frame/store"
)

// Config holds the settings shared by all commands.
type Config struct {
	// Container file path
	Container string `yaml:"container"`

	// Remove an existing container before a build
	Clobber bool `yaml:"clobber"`

	// Value encoding for pushed data: text or typed
	Encoding string `yaml:"encoding"`

	LogLevel string `yaml:"log_level"`

	Batch BatchConfig `yaml:"batch"`
}

// BatchConfig configures feature builds.
type BatchConfig struct {
	DataDir  string `yaml:"data_dir"`
	FileList string `yaml:"file_list"` // case, sub-unit, relative path; tab separated
	Comma    string `yaml:"comma"`     // delimiter of the per-unit CSV files
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Container: "features.h5",
		Encoding:  string(store.EncodingText),
		LogLevel:  "info",
		Batch: BatchConfig{
			DataDir: ".",
			Comma:   ",",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.Container == "" {
		return fmt.Errorf("container is required")
	}
	if _, err := store.ParseEncoding(c.Encoding); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if r := []rune(c.Batch.Comma); len(r) != 1 {
		return fmt.Errorf("batch.comma must be a single character, got %q", c.Batch.Comma)
	}
	return nil
}

// CommaRune returns the CSV delimiter.
func (c *Config) CommaRune() rune {
	return []rune(c.Batch.Comma)[0]
}
