package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines which settings must be present for each environment
type ConfigRequirements struct {
	RequireAPIKey    bool
	RequireJWTSecret bool
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {RequireAPIKey: true},
		Test:        {},
		CI:          {},
		Production:  {RequireAPIKey: true, RequireJWTSecret: true},
	}
)

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	reqs := requirements[cfg.Env]

	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	if reqs.RequireAPIKey && cfg.LLM.APIKey == "" {
		add("llm.api_key", "required (set RECIPEPDF_LLM_API_KEY or OPENAI_API_KEY)")
	}
	if reqs.RequireJWTSecret && cfg.Auth.JWTSecret == "" {
		add("auth.jwt_secret", "jwt_secret secret is required")
	}

	p := cfg.Pipeline
	if p.ChunkSize <= 0 {
		add("pipeline.chunk_size", "must be positive")
	}
	if p.EmbedBatchSize <= 0 {
		add("pipeline.embed_batch_size", "must be positive")
	}
	if p.RecipeTopK <= 0 {
		add("pipeline.recipe_top_k", "must be positive")
	}
	if p.TimeTopK <= 0 {
		add("pipeline.time_top_k", "must be positive")
	}
	if p.ValidationStrategy != "pdf" && p.ValidationStrategy != "text" {
		add("pipeline.validation_strategy", fmt.Sprintf("must be pdf or text, got %q", p.ValidationStrategy))
	}
	if p.MaxParseRetries < 0 {
		add("pipeline.max_parse_retries", "must not be negative")
	}
	if p.MaxToolRounds <= 0 {
		add("pipeline.max_tool_rounds", "must be positive")
	}

	if cfg.Database.Enabled() && cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		add("database.driver", fmt.Sprintf("must be postgres or sqlite, got %q", cfg.Database.Driver))
	}

	switch cfg.Log.Format {
	case "json", "console":
	default:
		add("log.format", fmt.Sprintf("must be json or console, got %q", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
