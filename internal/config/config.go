package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port         string
	DatabasePath string

	// APIKey is the shared secret expected in the X-API-Key header.
	APIKey string

	CacheBackend   string // "memory" or "redis"
	RedisURL       string
	RedisKeyPrefix string

	// ResponseMaxAge is the client cache lifetime in seconds advertised on
	// cacheable API responses.
	ResponseMaxAge int

	LogLevel  string
	LogPretty bool

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	AdminUsername     string
	AdminPasswordHash string

	SeedFile string
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8008"),
		DatabasePath:      getEnv("DATABASE_PATH", "translations.db"),
		APIKey:            os.Getenv("TRANSLATION_API_KEY"),
		CacheBackend:      strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisKeyPrefix:    getEnv("REDIS_KEY_PREFIX", "translation_api:"),
		ResponseMaxAge:    getEnvInt("RESPONSE_MAX_AGE", 900),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogPretty:         getEnvBool("LOG_PRETTY", false),
		JWTSecret:         getEnv("JWT_SECRET", "development-insecure-secret-change-me"),
		JWTIssuer:         getEnv("JWT_ISSUER", "translation-api"),
		JWTAudience:       getEnv("JWT_AUDIENCE", "translation-api-admin"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SeedFile:          os.Getenv("SEED_FILE"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
