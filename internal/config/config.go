// Package config loads colloquy settings from a YAML file, .env files and
// COLLOQUY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. COLLOQUY_LLM_MODEL.
const EnvPrefix = "COLLOQUY"

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Store     StoreConfig     `mapstructure:"store"`
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type LLMConfig struct {
	Backend     string  `mapstructure:"backend"`
	Model       string  `mapstructure:"model"`
	OllamaHost  string  `mapstructure:"ollama_host"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// TemplatesConfig points at a project directory holding _system/config templates.
// An empty Dir means the embedded defaults.
type TemplatesConfig struct {
	Dir       string `mapstructure:"dir"`
	ProjectID string `mapstructure:"project_id"`
}

type StoreConfig struct {
	Driver string      `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`

	// EncryptionKey is a base64 AES-256 key. When set, states are sealed at rest.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
	// MaskPatterns are regular expressions over variable names whose values are never persisted.
	MaskPatterns []string `mapstructure:"mask_patterns"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type SessionConfig struct {
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// SetDefaults registers every key so environment overrides work without a file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("llm.backend", "gemini")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.ollama_host", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("templates.dir", "")
	v.SetDefault("templates.project_id", "")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "colloquy:")
	v.SetDefault("store.redis.ttl", 24*time.Hour)
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.fallback_keys", []string{})
	v.SetDefault("store.mask_patterns", []string{})
	v.SetDefault("server.port", 8080)
	v.SetDefault("session.lock_ttl", 30*time.Second)
}

// Load reads configuration. file may be empty, in which case colloquy.yaml is
// looked up in the working directory and its absence is not an error.
// .env files are loaded first and never override variables already set.
func Load(file string, dotenv ...string) (*Config, error) {
	if err := loadDotenv(dotenv...); err != nil {
		return nil, err
	}

	v := viper.New()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("colloquy")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverMemory, DriverRedis, c.Store.Driver)
	}
	switch strings.ToLower(c.LLM.Backend) {
	case "gemini", "ollama":
	default:
		return fmt.Errorf("llm.backend must be \"gemini\" or \"ollama\", got %q", c.LLM.Backend)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port")
	}
	return nil
}

func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
