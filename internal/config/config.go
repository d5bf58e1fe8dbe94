package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Providers ProvidersConfig
	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
	Sync      SyncConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisConfig selects the Cache Store backend. An empty Host keeps datasets in
// process memory, which is only suitable for local development.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// PostgresConfig is optional; when Host is empty sync runs are not recorded.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

type ProvidersConfig struct {
	GeocodioAPIKey      string
	OpenAustraliaAPIKey string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type SyncConfig struct {
	Secret    string
	Interval  time.Duration
	OnStartup bool
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:         getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:  time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "repfinder"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "repfinder"),
		},
		Providers: ProvidersConfig{
			GeocodioAPIKey:      strings.TrimSpace(getEnv("GEOCODIO_API_KEY", "")),
			OpenAustraliaAPIKey: strings.TrimSpace(getEnv("OPENAUSTRALIA_API_KEY", "")),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", ""),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		Sync: SyncConfig{
			Secret:    getEnv("SYNC_SECRET", ""),
			Interval:  time.Duration(getEnvInt("SYNC_INTERVAL_HOURS", 168)) * time.Hour,
			OnStartup: getEnvBool("SYNC_ON_STARTUP", false),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.Redis.Enabled() && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		return fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port)
	}
	if c.Sync.Interval < 0 {
		return fmt.Errorf("SYNC_INTERVAL_HOURS must not be negative")
	}
	if c.Postgres.Enabled() && c.Postgres.Database == "" {
		return fmt.Errorf("POSTGRES_DB is required when POSTGRES_HOST is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// ParseCommaSeparated splits a comma list, dropping blanks.
func ParseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
