package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
	// RateLimit bounds initialize calls per client IP per window; 0 disables.
	RateLimit       int           `yaml:"rate_limit"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port      int           `yaml:"port"`
	Password  string        `yaml:"password"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type AIConfig struct {
	// APIKey/BaseURL target any OpenAI-compatible chat-completions gateway
	// (Zhipu GLM, OpenAI, Metis, ...).
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Model           string        `yaml:"model"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
	CallTimeout     time.Duration `yaml:"call_timeout"`
	StreamTimeout   time.Duration `yaml:"stream_timeout"`
}

type EmbeddingsConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type RetrievalConfig struct {
	K           int    `yaml:"k"`
	TemplateURL string `yaml:"template_url"` // template search backend; empty means built-in defaults
	// Graded enables the grader-driven workflow policies; MaxRewrites bounds
	// their query-rewrite loop.
	Graded      bool `yaml:"graded"`
	MaxRewrites int  `yaml:"max_rewrites"`
}

type SessionConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Backend       string        `yaml:"backend"` // memory | redis
}

type SaveConfig struct {
	// URL of the external save backend; empty disables the HTTP store.
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DatabaseConfig struct {
	// Postgres URL for the local result store; empty disables it.
	URL string `yaml:"url"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Admin      AdminConfig      `yaml:"admin"`
	AI         AIConfig         `yaml:"ai"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Session    SessionConfig    `yaml:"session"`
	Save       SaveConfig       `yaml:"save"`
	Redis      RedisConfig      `yaml:"redis"`
	Database   DatabaseConfig   `yaml:"database"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.AI.APIKey == "" && cfg.AI.GeminiKey == "" && !dev {
		return nil, errors.New("ai.api_key or ai.gemini_key is required")
	}
	if cfg.Session.Backend == "redis" && cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required when session.backend=redis")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.RateLimitWindow <= 0 {
		cfg.Server.RateLimitWindow = time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://open.bigmodel.cn/api/paas/v4"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "glm-4"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.CallTimeout <= 0 {
		cfg.AI.CallTimeout = 60 * time.Second
	}
	if cfg.AI.StreamTimeout <= 0 {
		cfg.AI.StreamTimeout = 5 * time.Minute
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "embedding-2"
	}
	if cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = cfg.AI.BaseURL
	}
	if cfg.Embeddings.APIKey == "" {
		cfg.Embeddings.APIKey = cfg.AI.APIKey
	}
	if cfg.Retrieval.K <= 0 {
		cfg.Retrieval.K = 3
	}
	if cfg.Retrieval.MaxRewrites <= 0 {
		cfg.Retrieval.MaxRewrites = 2
	}
	if cfg.Session.Timeout <= 0 {
		cfg.Session.Timeout = 30 * time.Minute
	}
	if cfg.Session.SweepInterval <= 0 {
		cfg.Session.SweepInterval = time.Minute
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "memory"
	}
	if cfg.Save.Timeout <= 0 {
		cfg.Save.Timeout = 10 * time.Second
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 30 * time.Minute
	}
}
