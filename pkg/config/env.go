package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env holds the environment variables the tool consults.
type Env struct {
	XAuthToken string `envconfig:"X_AUTH_TOKEN"`
	AuthToken  string `envconfig:"AUTH_TOKEN"`
	Controller string `envconfig:"SITEPOLICY_CONTROLLER"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return &env, nil
}
