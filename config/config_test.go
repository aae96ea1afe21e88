package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithDefaults(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, Test, cfg.Env)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "text-embedding-ada-002", cfg.LLM.EmbeddingModel)
	assert.Equal(t, DefaultChunkSize, cfg.Pipeline.ChunkSize)
	assert.Equal(t, DefaultRecipeQuery, cfg.Pipeline.RecipeQuery)
	assert.Equal(t, DefaultTimeQuery, cfg.Pipeline.TimeQuery)
	assert.Equal(t, 5, cfg.Pipeline.RecipeTopK)
	assert.Equal(t, 3, cfg.Pipeline.TimeTopK)
	assert.Equal(t, "text", cfg.Pipeline.ValidationStrategy)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("RECIPEPDF_LLM_API_KEY", "sk-env")
	t.Setenv("RECIPEPDF_PIPELINE_CHUNK_SIZE", "500")
	t.Setenv("RECIPEPDF_PIPELINE_VALIDATION_STRATEGY", "pdf")
	t.Setenv("RECIPEPDF_SERVER_REQUEST_TIMEOUT", "45s")
	t.Setenv("RECIPEPDF_REDIS_HOST", "cache")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, 500, cfg.Pipeline.ChunkSize)
	assert.Equal(t, "pdf", cfg.Pipeline.ValidationStrategy)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "6379", cfg.Redis.Port)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("RECIPEPDF_PIPELINE_TIME_TOP_K", "4")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
pipeline:
  chunk_size: 800
  time_top_k: 2
database:
  driver: sqlite
  dsn: file::memory:
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 800, cfg.Pipeline.ChunkSize)
	// environment overrides the file
	assert.Equal(t, 4, cfg.Pipeline.TimeTopK)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfigProductionSecrets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openai_api_key"), []byte("sk-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("jwt"), 0o600))

	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	t.Setenv("SECRETS_DIR", dir)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)
	assert.Equal(t, "jwt", cfg.Auth.JWTSecret)
}

func TestValidateConfig(t *testing.T) {
	t.Run("development requires an API key", func(t *testing.T) {
		cfg := &Config{Env: Development, Pipeline: DefaultPipelineConfig(), Log: LogConfig{Format: "json"}}
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.api_key")
	})

	t.Run("rejects an unknown validation strategy", func(t *testing.T) {
		p := DefaultPipelineConfig()
		p.ValidationStrategy = "vision"
		cfg := &Config{Env: Test, Pipeline: p, Log: LogConfig{Format: "json"}}
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pipeline.validation_strategy")
	})

	t.Run("rejects a non-positive chunk size", func(t *testing.T) {
		p := DefaultPipelineConfig()
		p.ChunkSize = -1
		cfg := &Config{Env: Test, Pipeline: p, Log: LogConfig{Format: "json"}}
		assert.Error(t, ValidateConfig(cfg))
	})

	t.Run("accepts defaults in test", func(t *testing.T) {
		cfg := &Config{Env: Test, Pipeline: DefaultPipelineConfig(), Log: LogConfig{Format: "console"}}
		assert.NoError(t, ValidateConfig(cfg))
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "llm.api_key", envKey("RECIPEPDF_LLM_API_KEY"))
	assert.Equal(t, "pipeline.max_download_bytes", envKey("RECIPEPDF_PIPELINE_MAX_DOWNLOAD_BYTES"))
	assert.Equal(t, "server.port", envKey("RECIPEPDF_SERVER_PORT"))
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		name   string
		ci     string
		prefix string
		env    string
		want   Environment
	}{
		{name: "default", want: Development},
		{name: "env", env: "production", want: Production},
		{name: "prefixed wins", prefix: "test", env: "production", want: Test},
		{name: "ci", ci: "true", env: "production", want: CI},
		{name: "unknown", env: "staging", want: Development},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CI", tt.ci)
			t.Setenv("RECIPEPDF_ENV", tt.prefix)
			t.Setenv("ENV", tt.env)
			assert.Equal(t, tt.want, GetEnvironment())
		})
	}
}

func TestDevelopmentLogsToConsole(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "development")
	t.Setenv("OPENAI_API_KEY", "sk-dev")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Log.Format)
}
