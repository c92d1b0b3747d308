package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// AppConfig is the top-level application configuration loaded from YAML.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Jobs    JobsConfig    `yaml:"jobs"`
	Archive ArchiveConfig `yaml:"archive"`
}

// ServerConfig holds HTTP server settings. There is deliberately no
// write timeout knob: event streams would be cut mid-job.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port" validate:"required,numeric"`
	Environment string `yaml:"environment" validate:"omitempty,oneof=development production"`
	ReadTimeout int    `yaml:"read_timeout_sec" validate:"gte=0"`
	IdleTimeout int    `yaml:"idle_timeout_sec" validate:"gte=0"`
}

// JobsConfig holds pipeline settings.
type JobsConfig struct {
	ScratchDir   string `yaml:"scratch_dir"`
	RetentionMin int    `yaml:"retention_min" validate:"gte=0"`
}

// ArchiveConfig selects the transcript archive backend.
type ArchiveConfig struct {
	Backend string `yaml:"backend" validate:"omitempty,oneof=sqlite postgres none"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// Load reads configuration from a YAML file and applies defaults.
// A missing path returns the defaults unchanged.
func Load(configPath string) (*AppConfig, error) {
	cfg := Default()

	if configPath != "" {
		configPath = os.ExpandEnv(configPath)
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        "8080",
			Environment: "development",
			ReadTimeout: 30,
			IdleTimeout: 120,
		},
		Jobs: JobsConfig{
			RetentionMin: 60,
		},
		Archive: ArchiveConfig{
			Backend: "sqlite",
			Path:    "data/podscribe.db",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Archive.Backend == "postgres" && c.Archive.DSN == "" {
		return fmt.Errorf("archive backend postgres requires a dsn")
	}
	return nil
}

// Retention returns the job retention window as a duration.
func (c *AppConfig) Retention() time.Duration {
	return time.Duration(c.Jobs.RetentionMin) * time.Minute
}
