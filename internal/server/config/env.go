package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays fields tagged with `env` from the process environment.
// Variables that are not set leave the current value untouched.
func parseEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}
	return nil
}
