package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	koanfenv "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by LoadConfig
const EnvPrefix = "RECIPEPDF_"

// Config holds all configuration for the application
type Config struct {
	Env Environment `koanf:"-"`

	Server   ServerConfig   `koanf:"server"`
	LLM      LLMConfig      `koanf:"llm"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Redis    RedisConfig    `koanf:"redis"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Storage  StorageConfig  `koanf:"storage"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host           string        `koanf:"host"`
	Port           string        `koanf:"port"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	CORSOrigins    []string      `koanf:"cors_origins"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LLMConfig configures the completion and embedding models
type LLMConfig struct {
	APIKey         string        `koanf:"api_key"`
	BaseURL        string        `koanf:"base_url"`
	Model          string        `koanf:"model"`
	EmbeddingModel string        `koanf:"embedding_model"`
	Temperature    float64       `koanf:"temperature"`
	Timeout        time.Duration `koanf:"timeout"`
	// RateLimit is the number of model calls allowed per second
	RateLimit  float64 `koanf:"rate_limit"`
	Burst      int     `koanf:"burst"`
	MaxRetries int     `koanf:"max_retries"`
}

// PipelineConfig configures one extraction run
type PipelineConfig struct {
	ChunkSize          int           `koanf:"chunk_size"`
	EmbedBatchSize     int           `koanf:"embed_batch_size"`
	RecipeQuery        string        `koanf:"recipe_query"`
	RecipeTopK         int           `koanf:"recipe_top_k"`
	TimeQuery          string        `koanf:"time_query"`
	TimeTopK           int           `koanf:"time_top_k"`
	ValidationStrategy string        `koanf:"validation_strategy"`
	ValidationMaxChars int           `koanf:"validation_max_chars"`
	MaxParseRetries    int           `koanf:"max_parse_retries"`
	MaxToolRounds      int           `koanf:"max_tool_rounds"`
	DownloadTimeout    time.Duration `koanf:"download_timeout"`
	MaxDownloadBytes   int64         `koanf:"max_download_bytes"`
}

// RedisConfig configures the Redis client used for API rate limiting
type RedisConfig struct {
	URL        string        `koanf:"url"`
	Host       string        `koanf:"host"`
	Port       string        `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	RateLimit  int           `koanf:"rate_limit"`
	RateWindow time.Duration `koanf:"rate_window"`
}

// Enabled reports whether a Redis server was configured
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Host != ""
}

// DatabaseConfig configures the run history store
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// Enabled reports whether run history is persisted
func (d DatabaseConfig) Enabled() bool {
	return d.DSN != ""
}

// AuthConfig configures bearer token authentication on the API
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

// StorageConfig configures S3 access for s3:// document URLs
type StorageConfig struct {
	Region string `koanf:"region"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Pipeline defaults
const (
	DefaultChunkSize          = 1000
	DefaultEmbedBatchSize     = 16
	DefaultRecipeQuery        = "レシピ名 材料 分量"
	DefaultRecipeTopK         = 5
	DefaultTimeQuery          = "時間 分 調理時間 作業時間 合計"
	DefaultTimeTopK           = 3
	DefaultValidationStrategy = "text"
	DefaultValidationMaxChars = 4000
	DefaultMaxParseRetries    = 2
	DefaultMaxToolRounds      = 3
	DefaultDownloadTimeout    = 30 * time.Second
	DefaultMaxDownloadBytes   = 50 << 20
)

// LoadConfig loads configuration from the optional YAML file at path and then
// overrides it with RECIPEPDF_* environment variables and secrets.
//
// Environment variables map to keys by splitting on the first underscore after
// the prefix: RECIPEPDF_LLM_API_KEY -> llm.api_key.
func LoadConfig(path string) (*Config, error) {
	env := GetEnvironment()
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(koanfenv.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Env = env

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if env.IsProduction() {
		loadSecrets(cfg)
	}

	applyDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envKey maps RECIPEPDF_SECTION_FIELD_NAME to section.field_name
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// loadSecrets fills sensitive values from Docker secrets when they are present
func loadSecrets(cfg *Config) {
	if v := readSecret("openai_api_key"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.Redis.Password = v
	}
	if v := readSecret("database_dsn"); v != "" {
		cfg.Database.DSN = v
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 2 * time.Minute
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o"
	}
	if cfg.LLM.EmbeddingModel == "" {
		cfg.LLM.EmbeddingModel = "text-embedding-ada-002"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.LLM.RateLimit == 0 {
		cfg.LLM.RateLimit = 5
	}
	if cfg.LLM.Burst == 0 {
		cfg.LLM.Burst = 5
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 2
	}

	applyPipelineDefaults(&cfg.Pipeline)

	if cfg.Redis.RateLimit == 0 {
		cfg.Redis.RateLimit = 30
	}
	if cfg.Redis.RateWindow == 0 {
		cfg.Redis.RateWindow = time.Hour
	}
	if cfg.Redis.Host != "" && cfg.Redis.Port == "" {
		cfg.Redis.Port = "6379"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
		if cfg.Env.IsDevelopment() {
			cfg.Log.Format = "console"
		}
	}
}

func applyPipelineDefaults(p *PipelineConfig) {
	if p.ChunkSize == 0 {
		p.ChunkSize = DefaultChunkSize
	}
	if p.EmbedBatchSize == 0 {
		p.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if p.RecipeQuery == "" {
		p.RecipeQuery = DefaultRecipeQuery
	}
	if p.RecipeTopK == 0 {
		p.RecipeTopK = DefaultRecipeTopK
	}
	if p.TimeQuery == "" {
		p.TimeQuery = DefaultTimeQuery
	}
	if p.TimeTopK == 0 {
		p.TimeTopK = DefaultTimeTopK
	}
	if p.ValidationStrategy == "" {
		p.ValidationStrategy = DefaultValidationStrategy
	}
	if p.ValidationMaxChars == 0 {
		p.ValidationMaxChars = DefaultValidationMaxChars
	}
	if p.MaxParseRetries == 0 {
		p.MaxParseRetries = DefaultMaxParseRetries
	}
	if p.MaxToolRounds == 0 {
		p.MaxToolRounds = DefaultMaxToolRounds
	}
	if p.DownloadTimeout == 0 {
		p.DownloadTimeout = DefaultDownloadTimeout
	}
	if p.MaxDownloadBytes == 0 {
		p.MaxDownloadBytes = DefaultMaxDownloadBytes
	}
}

// DefaultPipelineConfig returns a PipelineConfig with every default applied
func DefaultPipelineConfig() PipelineConfig {
	var p PipelineConfig
	applyPipelineDefaults(&p)
	return p
}
