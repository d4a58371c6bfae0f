package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port             string
	LogLevel         string
	StoreDriver      string // memory | redis | sqlite
	RedisURL         string
	DatabasePath     string
	KeyPrefix        string // namespace for every backend key
	ClientOrigin     string
	WordsFile        string // optional dictionary override
	CreateRateLimit  int    // new games per client per window; 0 disables
	CreateRateWindow time.Duration
	RequestTimeout   time.Duration
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "5021"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		StoreDriver:      getEnv("STORE_DRIVER", "memory"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/5"),
		DatabasePath:     getEnv("DB_PATH", "./data/neologisms.db"),
		KeyPrefix:        getEnv("KEY_PREFIX", "neologisms:"),
		ClientOrigin:     getEnv("CLIENT_ORIGIN", "*"),
		WordsFile:        os.Getenv("WORDS_FILE"),
		CreateRateLimit:  getEnvInt("CREATE_RATE_LIMIT", 30),
		CreateRateWindow: getEnvDuration("CREATE_RATE_WINDOW", time.Minute),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
