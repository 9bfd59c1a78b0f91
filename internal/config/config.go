// Package config loads the memfs server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnishMulay/memfs/internal/log_service"
	"gopkg.in/yaml.v3"
)

const (
	DefaultNodeID     = "memfs-1"
	DefaultListenAddr = "localhost:8080"
)

type LogConfig struct {
	// Dir is where <node_id>.log is written. Empty means stderr.
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

type Config struct {
	NodeID     string    `yaml:"node_id"`
	ListenAddr string    `yaml:"listen_addr"`
	Log        LogConfig `yaml:"log"`
}

func Default() *Config {
	return &Config{
		NodeID:     DefaultNodeID,
		ListenAddr: DefaultListenAddr,
		Log: LogConfig{
			Level: log_service.InfoLevel,
		},
	}
}

// Load reads the configuration at path. If the file does not exist a default
// configuration is written there and returned. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Write(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.NodeID == "" {
		return errors.New("node_id is required")
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if c.Log.Level != "" && !log_service.IsValidLevel(c.Log.Level) {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}
