package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Bootstrap carries the handful of settings read from the process
// environment before the configuration file is located.
type Bootstrap struct {
	ConfigPath string `env:"SUMMAREAD_CONFIG" envDefault:".summareadconfig"`
	LogLevel   string `env:"LOG_LEVEL"`
	APIToken   string `env:"HF_API_TOKEN"`
}

// LoadBootstrap loads any .env files and parses the bootstrap settings.
// Missing .env files are not an error.
func LoadBootstrap(envFiles ...string) (Bootstrap, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Bootstrap{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var b Bootstrap
	if err := env.Parse(&b); err != nil {
		return Bootstrap{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return b, nil
}

// Apply overlays bootstrap values onto a loaded configuration.
func (b Bootstrap) Apply(cfg *Config) {
	if b.APIToken != "" {
		cfg.Remote.APIToken = b.APIToken
	}
	if b.LogLevel != "" {
		cfg.Logging.Level = b.LogLevel
	}
}
