package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf maps a file extension to its Format.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrConfigNotFound, path)
		}
		return nil, errors.Wrap(err, "stat config")
	}
	if info.IsDir() {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return LoadBytes(data, format)
}

// LoadBytes parses data over the defaults, expanding ${VAR} references
// first. JSON is decoded by the YAML parser, so durations are written the
// same way ("5s") in both formats.
func LoadBytes(data []byte, format Format) (*Config, error) {
	if format != FormatYAML && format != FormatJSON {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "parse %s: %v", format, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandEnv substitutes ${VAR} and $VAR. ${VAR:-fallback} uses the fallback
// when VAR is unset or empty.
func expandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		name, fallback, hasFallback := strings.Cut(key, ":-")
		if v := os.Getenv(name); v != "" || !hasFallback {
			return v
		}
		return fallback
	})
}
