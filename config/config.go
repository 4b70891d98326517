package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/ulrichard/uttesla/tesla"
)

const (
	AppName       = "uttesla"
	DefaultListen = "127.0.0.1:8787"
)

type Location struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type BridgeConfig struct {
	Listen string `yaml:"listen"`
}

type Config struct {
	// DataDir overrides where the token files live.
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`

	API    tesla.Config `yaml:"api"`
	Home   Location     `yaml:"home"`
	Bridge BridgeConfig `yaml:"bridge"`
}

func DefaultConfigFilePath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

func Default() *Config {
	return &Config{
		API:    tesla.DefaultConfig(),
		Bridge: BridgeConfig{Listen: DefaultListen},
	}
}

// GetConfigFromFile reads a YAML config. Keys missing from the file keep
// their defaults.
func GetConfigFromFile(inputConfigFile string) (*Config, error) {
	if inputConfigFile == "" {
		inputConfigFile = DefaultConfigFilePath()
	}
	f, err := os.Open(inputConfigFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", inputConfigFile, err)
	}
	return cfg, nil
}

func SaveConfig(cfg *Config, configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(configFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return yaml.NewEncoder(f).Encode(cfg)
}

// ValidateHome reports whether a home location is configured.
func (c *Config) ValidateHome() error {
	if c.Home.Latitude == 0 {
		return fmt.Errorf("home.latitude is not set")
	}
	if c.Home.Longitude == 0 {
		return fmt.Errorf("home.longitude is not set")
	}
	return nil
}
