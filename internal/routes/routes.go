package routes

import (
	"net/http"
	"translation-api/internal/auth"
	"translation-api/internal/database"
	"translation-api/internal/handlers"
	"translation-api/internal/middleware"
	"translation-api/internal/realtime"
	"translation-api/internal/translation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Gate         *auth.Gate
	Issuer       *auth.TokenIssuer
	Credentials  *auth.AdminCredentials
	Translations *translation.Service
	Store        translation.RecordStore
	Invalidator  database.Invalidator
	Hub          *realtime.Hub
	Logger       zerolog.Logger
}

func SetupRoutes(deps Dependencies) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestLogger(deps.Logger.With().Str("component", "http").Logger()))

	// CORS middleware (for frontend integration)
	ginRouter.Use(middleware.CORS())

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Translation API is running",
		})
	})
	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	translationHandler := handlers.NewTranslationHandler(deps.Translations, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.Store, deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Credentials, deps.Issuer)
	cacheHandler := handlers.NewCacheHandler(deps.Invalidator, deps.Logger)
	streamHandler := handlers.NewStreamHandler(deps.Hub, deps.Logger)

	// API routes (shared secret in X-API-Key)
	api := ginRouter.Group("/translations")
	api.Use(middleware.APIKeyMiddleware(deps.Gate))
	{
		api.GET("", translationHandler.ListTranslations)
		api.GET("/:key", translationHandler.GetTranslation)
	}

	// Public admin routes (no authentication required)
	admin := ginRouter.Group("/admin")
	{
		admin.POST("/login", authHandler.Login)
	}

	// Protected admin routes (authentication required)
	protectedAdmin := admin.Group("")
	protectedAdmin.Use(middleware.JWTAuthMiddleware(deps.Issuer))
	{
		protectedAdmin.GET("/translations", adminHandler.Overview)
		protectedAdmin.POST("/cache/invalidate", cacheHandler.Invalidate)
		protectedAdmin.GET("/invalidations", streamHandler.Subscribe)
	}

	return ginRouter
}
