package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the tool.
// Zero values mean "unspecified" and will be replaced by defaults in the CLI.
type Config struct {
	Addr        string   `json:"addr" yaml:"addr" toml:"addr"`
	ManifestDir string   `json:"manifest_dir" yaml:"manifest_dir" toml:"manifest_dir"`
	DestDir     string   `json:"dest_dir" yaml:"dest_dir" toml:"dest_dir"`
	Concurrency int      `json:"concurrency" yaml:"concurrency" toml:"concurrency"`
	MaxAttempts int      `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts"`
	RetryBaseMS int      `json:"retry_base_ms" yaml:"retry_base_ms" toml:"retry_base_ms"`
	RetryMaxMS  int      `json:"retry_max_ms" yaml:"retry_max_ms" toml:"retry_max_ms"`
	LogLevel    string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
