package main

import (
	"context"
	"translation-api/internal/auth"
	"translation-api/internal/cache"
	"translation-api/internal/config"
	"translation-api/internal/database"
	"translation-api/internal/invalidation"
	"translation-api/internal/logging"
	"translation-api/internal/realtime"
	"translation-api/internal/routes"
	"translation-api/internal/translation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg := config.Load()
	root := logging.Setup(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger := logging.NewLogger("server")
	ctx := context.Background()

	if logging.ParseLevel(cfg.LogLevel) > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// Init database
	db, err := database.Open(cfg.DatabasePath, gormLogLevel(cfg.LogLevel))
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to open database")
	}
	logger.Info().Str("path", cfg.DatabasePath).Msg("Database connected and migrated")

	backend := newCacheBackend(ctx, cfg, root, logger)

	hub := realtime.NewHub()
	invalidator := invalidation.NewService(backend, hub, root)
	if err := database.RegisterInvalidation(db, invalidator, root); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register cache invalidation callbacks")
	}

	if cfg.SeedFile != "" {
		n, err := database.SeedFromFile(ctx, db, cfg.SeedFile)
		if err != nil {
			logger.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("Failed to seed translations")
		}
		logger.Info().Int("records", n).Str("file", cfg.SeedFile).Msg("Seeded translations")
	}

	if cfg.APIKey == "" {
		logger.Warn().Msg("TRANSLATION_API_KEY is not set; every API request will be rejected")
	}
	if cfg.AdminPasswordHash == "" {
		logger.Warn().Msg("ADMIN_PASSWORD_HASH is not set; admin login is disabled")
	}

	store := database.NewTranslationStore(db)

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(routes.Dependencies{
		Gate:         auth.NewGate(cfg.APIKey),
		Issuer:       auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
		Credentials:  auth.NewAdminCredentials(cfg.AdminUsername, cfg.AdminPasswordHash),
		Translations: translation.NewService(store, backend, cfg.ResponseMaxAge, root),
		Store:        store,
		Invalidator:  invalidator,
		Hub:          hub,
		Logger:       root,
	})

	// Start server
	port := ":" + cfg.Port
	logger.Info().Str("port", port).Str("cache_backend", cfg.CacheBackend).Msg("Server starting")
	logger.Info().Strs("endpoints", []string{
		"GET    /translations",
		"GET    /translations/:key",
		"POST   /admin/login",
		"GET    /admin/translations",
		"POST   /admin/cache/invalidate",
		"GET    /admin/invalidations",
		"GET    /health",
		"GET    /metrics",
	}).Msg("API endpoints")

	if err := ginRoutes.Run(port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

func newCacheBackend(ctx context.Context, cfg config.Config, root, logger zerolog.Logger) cache.TagCache {
	switch cfg.CacheBackend {
	case "redis":
		backend, err := cache.NewRedisBackend(ctx, cfg.RedisURL, cfg.RedisKeyPrefix, root)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("prefix", cfg.RedisKeyPrefix).Msg("Using Redis cache backend")
		return backend
	case "memory", "":
		logger.Info().Msg("Using in-memory cache backend")
		return cache.NewMemoryBackend()
	default:
		logger.Fatal().Str("backend", cfg.CacheBackend).Msg("Unknown CACHE_BACKEND, expected memory or redis")
		return nil
	}
}

// gormLogLevel maps the service log level onto gorm's SQL logger.
func gormLogLevel(level string) gormlogger.LogLevel {
	switch logging.ParseLevel(level) {
	case zerolog.DebugLevel:
		return gormlogger.Info
	case zerolog.ErrorLevel:
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
