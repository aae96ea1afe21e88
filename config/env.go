package config

import (
	"os"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment from RECIPEPDF_ENV,
// falling back to ENV. CI=true always selects CI.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	env := os.Getenv(EnvPrefix + "ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	switch Environment(env) {
	case Production, Test, CI, Development:
		return Environment(env)
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment
func (e Environment) IsProduction() bool {
	return e == Production
}

// IsDevelopment reports whether e is a local development environment
func (e Environment) IsDevelopment() bool {
	return e == Development
}
