package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Source struct {
		Database string            `yaml:"database"`
		Table    string            `yaml:"table"`
		Storage  map[string]string `yaml:"storage"`
	} `yaml:"source"`

	Target struct {
		Warehouse string            `yaml:"warehouse"`
		Database  string            `yaml:"database"`
		Table     string            `yaml:"table"`
		Options   map[string]string `yaml:"options"`
	} `yaml:"target"`

	Parallelism int `yaml:"parallelism"`

	Rename struct {
		Enabled      bool `yaml:"enabled"`
		DeleteOrigin bool `yaml:"delete-origin"`
	} `yaml:"rename"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Parallelism == 0 {
		cfg.Parallelism = 1
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Source.Database == "" || c.Source.Table == "" {
		return fmt.Errorf("source database and table are required")
	}
	if c.Target.Warehouse == "" {
		return fmt.Errorf("target warehouse is required")
	}
	if c.Target.Database == "" || c.Target.Table == "" {
		return fmt.Errorf("target database and table are required")
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	return nil
}
