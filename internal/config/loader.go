package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".harsanitizer"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .harsanitizer configuration file.
type File struct {
	// Wordlist entries are added to the default word list.
	Wordlist []string `yaml:"wordlist,omitempty"`

	// ContentList entries are added to the default content list.
	ContentList []string `yaml:"contentList,omitempty"`

	AllCookies   bool `yaml:"allCookies,omitempty"`
	AllHeaders   bool `yaml:"allHeaders,omitempty"`
	AllParams    bool `yaml:"allParams,omitempty"`
	AllMimeTypes bool `yaml:"allMimeTypes,omitempty"`

	// Compact writes sanitized documents without indentation.
	Compact bool `yaml:"compact,omitempty"`

	// History set to false disables the run history. Unset keeps it on.
	History *bool `yaml:"history,omitempty"`

	// Tracing configures OpenTelemetry export.
	Tracing *TracingConfig `yaml:"tracing,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers decide whether that matters depending on whether the path was
// given explicitly.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .harsanitizer in the current directory
// 3. Look for .harsanitizer in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Load finds the configuration file for c.ConfigFilePath and merges it
// into c. It returns the path of the file used, or "" when none was found.
// A missing file is an error only when ConfigFilePath was set.
func (c *Config) Load() (string, error) {
	path := FindConfigFile(c.ConfigFilePath)
	if path == "" {
		if c.ConfigFilePath != "" {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, c.ConfigFilePath)
		}
		return "", nil
	}

	f, err := LoadConfigFile(path)
	if err != nil {
		return "", err
	}
	c.ApplyFile(f)
	return path, nil
}
