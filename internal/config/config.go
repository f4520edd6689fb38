package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults bind all interfaces on port 5000
const (
	DefaultAddr      = "0.0.0.0"
	DefaultPort      = 5000
	DefaultModelPath = "heart_disease_model.json"
	DefaultCacheSize = 256
	DefaultLogLevel  = "info"
)

// Config holds the application configuration
type Config struct {
	Addr      string    `yaml:"addr"`
	Port      int       `yaml:"port"`
	ModelPath string    `yaml:"model_path"`
	CacheSize int       `yaml:"cache_size"`
	Window    bool      `yaml:"window"`
	Log       LogConfig `yaml:"log"`
	Version   string    `yaml:"-"`
}

// LogConfig controls the logger. An empty File logs to stderr.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Addr:      DefaultAddr,
		Port:      DefaultPort,
		ModelPath: DefaultModelPath,
		CacheSize: DefaultCacheSize,
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads a YAML config file on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.CacheSize < 0 {
		return errors.New("cache_size must not be negative")
	}
	if c.ModelPath == "" {
		return errors.New("model_path is required")
	}
	return nil
}

// ListenAddr returns the host:port the server binds to
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Addr, strconv.Itoa(c.Port))
}
