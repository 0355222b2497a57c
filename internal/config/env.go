package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from the environment.
type EnvConfig struct {
	APIKey   string `env:"TUIQUIZ_API_KEY"`
	Endpoint string `env:"TUIQUIZ_ENDPOINT"`
	DBPath   string `env:"TUIQUIZ_DB"`
	Catalog  string `env:"TUIQUIZ_CATALOG"`
}

// ParseEnv loads overrides from environment variables.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
