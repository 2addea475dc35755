package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/axlframe/pkg/codec"
	"github.com/ssargent/axlframe/pkg/logging"
)

// Config represents the axl tool configuration
type Config struct {
	Decode  Decode  `yaml:"decode"`
	Archive Archive `yaml:"archive"`
	Metrics Metrics `yaml:"metrics"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// Decode contains collection decoding options
type Decode struct {
	FrameSize int `yaml:"frame_size"`
	Workers   int `yaml:"workers"`
}

// Archive contains packet archive options
type Archive struct {
	Dir string `yaml:"dir"`
}

// Metrics contains the Prometheus listener address ("" = disabled)
type Metrics struct {
	Addr string `yaml:"addr"`
}

// Server contains archive API server options
type Server struct {
	Addr   string `yaml:"addr"`
	APIKey string `yaml:"api_key"` // "" = no authentication
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Decode: Decode{
			FrameSize: codec.FrameSize,
			Workers:   1,
		},
		Archive: Archive{
			Dir: "./archive",
		},
		Server: Server{
			Addr: ":9200",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks the configuration for values the tools cannot run with
func (c *Config) Validate() error {
	if c.Decode.FrameSize <= 0 {
		return fmt.Errorf("decode.frame_size must be positive, got %d", c.Decode.FrameSize)
	}
	if c.Decode.Workers < 1 {
		return fmt.Errorf("decode.workers must be at least 1, got %d", c.Decode.Workers)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Fields missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./axl.yaml"
	}

	// For Linux/macOS, use ~/.config/axl/config.yaml
	configDir := filepath.Join(homeDir, ".config", "axl")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
