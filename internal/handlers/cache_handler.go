package handlers

import (
	"net/http"
	"translation-api/internal/database"
	"translation-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// InvalidateRequest lists the tags to drop.
type InvalidateRequest struct {
	Tags []string `json:"tags" binding:"required,min=1,dive,required"`
}

// CacheHandler exposes manual cache purges to operators.
type CacheHandler struct {
	invalidator database.Invalidator
	logger      zerolog.Logger
}

// NewCacheHandler creates a CacheHandler.
func NewCacheHandler(invalidator database.Invalidator, logger zerolog.Logger) *CacheHandler {
	return &CacheHandler{invalidator: invalidator, logger: logger}
}

// Invalidate handles POST /admin/cache/invalidate
func (h *CacheHandler) Invalidate(c *gin.Context) {
	var req InvalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.invalidator.InvalidateTags(c.Request.Context(), req.Tags...); err != nil {
		h.logger.Error().Err(err).Strs("tags", req.Tags).Msg("Manual invalidation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache tags"})
		return
	}

	h.logger.Info().Str("admin", c.GetString(middleware.AdminUserKey)).Strs("tags", req.Tags).Msg("Cache tags invalidated")
	c.JSON(http.StatusOK, gin.H{
		"message": "Cache tags invalidated",
		"tags":    req.Tags,
	})
}
