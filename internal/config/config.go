package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrNoBackendCredentials is returned when no text-generation backend has an API key
var ErrNoBackendCredentials = errors.New("at least one backend credential is required")

type Config struct {
	Backends   BackendsConfig   `mapstructure:"backends"`
	Generation GenerationConfig `mapstructure:"generation"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Storage    StorageConfig    `mapstructure:"storage"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	I18n       I18nConfig       `mapstructure:"i18n"`
}

type BackendsConfig struct {
	Primary    string          `mapstructure:"primary"`
	Secondary  string          `mapstructure:"secondary"`
	OpenAI     BackendEndpoint `mapstructure:"openai"`
	Gemini     BackendEndpoint `mapstructure:"gemini"`
	Compatible BackendEndpoint `mapstructure:"compatible"`
}

type BackendEndpoint struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GenerationConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"`
	TemperatureMax float64       `mapstructure:"temperature_max"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Seed           int64         `mapstructure:"seed"`
	StripMarkdown  bool          `mapstructure:"strip_markdown"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Type    string `mapstructure:"type"`
}

type StorageConfig struct {
	Type  string      `mapstructure:"type"`
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level  string     `mapstructure:"level"`
	Format string     `mapstructure:"format"`
	Output string     `mapstructure:"output"`
	File   FileConfig `mapstructure:"file"`
}

type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type MonitoringConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

type I18nConfig struct {
	DefaultLanguage string   `mapstructure:"default_language"`
	Languages       []string `mapstructure:"languages"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backends.primary", "openai")
	v.SetDefault("backends.secondary", "gemini")
	v.SetDefault("backends.openai.model", "gpt-4o-mini")
	v.SetDefault("backends.openai.timeout", 60*time.Second)
	v.SetDefault("backends.gemini.model", "gemini-1.5-flash")
	v.SetDefault("backends.gemini.timeout", 60*time.Second)
	v.SetDefault("backends.compatible.timeout", 120*time.Second)

	v.SetDefault("generation.concurrency", 4)
	v.SetDefault("generation.max_attempts", 3)
	v.SetDefault("generation.backoff_base", 2*time.Second)
	v.SetDefault("generation.temperature_max", 0.9)
	v.SetDefault("generation.max_tokens", 600)
	v.SetDefault("generation.seed", 0)
	v.SetDefault("generation.strip_markdown", true)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "memory")

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.prefix", "personagen")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("monitoring.metrics.port", 9090)
	v.SetDefault("monitoring.metrics.path", "/metrics")

	v.SetDefault("i18n.default_language", "ru")
	v.SetDefault("i18n.languages", []string{"ru", "en"})
}

// LoadConfig loads configuration from file and environment variables and validates it.
// An empty configPath runs on defaults and environment only.
func LoadConfig(configPath string) (*Config, error) {
	config, err := ReadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// ReadConfig loads configuration without validating backend credentials,
// for commands that never reach a backend
func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("backends.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("backends.openai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("backends.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("backends.compatible.api_key", "COMPATIBLE_API_KEY")
	v.BindEnv("backends.compatible.base_url", "COMPATIBLE_BASE_URL")
	v.BindEnv("storage.redis.addr", "REDIS_ADDR")
	v.BindEnv("storage.redis.password", "REDIS_PASSWORD")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Backends.OpenAI.APIKey == "" && cfg.Backends.Gemini.APIKey == "" && cfg.Backends.Compatible.APIKey == "" {
		return ErrNoBackendCredentials
	}
	if cfg.Backends.Compatible.APIKey != "" && cfg.Backends.Compatible.BaseURL == "" {
		return fmt.Errorf("compatible backend requires base_url")
	}
	if cfg.Generation.Concurrency < 1 {
		return fmt.Errorf("generation.concurrency must be positive, got %d", cfg.Generation.Concurrency)
	}
	if cfg.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be positive, got %d", cfg.Generation.MaxAttempts)
	}
	if cfg.Generation.TemperatureMax < 0 || cfg.Generation.TemperatureMax > 1 {
		return fmt.Errorf("generation.temperature_max must be within [0,1], got %.2f", cfg.Generation.TemperatureMax)
	}
	switch cfg.Storage.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
	switch cfg.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache type: %s", cfg.Cache.Type)
	}
	return nil
}
