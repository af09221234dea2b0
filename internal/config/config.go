package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the DeployMedic server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Oracle   OracleConfig
	Patterns PatternConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL       string
	ResultTTL time.Duration
}

// OracleConfig selects and configures the external analysis provider.
// Provider "none" disables the oracle; analysis then runs on the catalog
// and stored patterns alone.
type OracleConfig struct {
	Provider       string
	ConsultTimeout time.Duration
	Groq           GroqConfig
	OpenAI         OpenAIConfig
}

type GroqConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// PatternConfig tunes the similarity store.
type PatternConfig struct {
	IndexPath   string
	MaxResults  int
	Concurrency int
}

var validProviders = map[string]bool{
	"groq":   true,
	"openai": true,
	"none":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("DEPLOYMEDIC_PORT", 8080),
			Env:  envString("DEPLOYMEDIC_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxConns:        envInt("DATABASE_MAX_CONNS", 25),
			MinConns:        envInt("DATABASE_MIN_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:       os.Getenv("REDIS_URL"),
			ResultTTL: envDuration("ANALYSIS_CACHE_TTL", time.Hour),
		},
		Oracle: OracleConfig{
			Provider:       envString("ORACLE_PROVIDER", "none"),
			ConsultTimeout: envDurationSecs("ORACLE_TIMEOUT_SECS", 30*time.Second),
			Groq: GroqConfig{
				BaseURL: envString("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
				APIKey:  os.Getenv("GROQ_API_KEY"),
				Model:   envString("GROQ_MODEL", "llama3-8b-8192"),
			},
			OpenAI: OpenAIConfig{
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
			},
		},
		Patterns: PatternConfig{
			IndexPath:   envString("PATTERN_INDEX_PATH", ""),
			MaxResults:  envInt("PATTERN_MAX_RESULTS", 5),
			Concurrency: envInt("PATTERN_INDEX_CONCURRENCY", 4),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validProviders[c.Oracle.Provider] {
		return fmt.Errorf("ORACLE_PROVIDER must be one of groq, openai, none; got %q", c.Oracle.Provider)
	}
	if c.Oracle.Provider == "groq" && c.Oracle.Groq.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required when ORACLE_PROVIDER is groq")
	}
	if c.Oracle.Provider == "openai" && c.Oracle.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when ORACLE_PROVIDER is openai")
	}

	if c.Patterns.MaxResults < 1 {
		return fmt.Errorf("PATTERN_MAX_RESULTS must be at least 1, got %d", c.Patterns.MaxResults)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
