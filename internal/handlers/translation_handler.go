package handlers

import (
	"net/http"
	"translation-api/internal/middleware"
	"translation-api/internal/translation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ItemsResponse is the body of every successful translation response.
type ItemsResponse struct {
	Items []translation.Item `json:"items"`
}

// TranslationHandler serves the public translation API.
type TranslationHandler struct {
	svc    *translation.Service
	logger zerolog.Logger
}

// NewTranslationHandler creates a TranslationHandler.
func NewTranslationHandler(svc *translation.Service, logger zerolog.Logger) *TranslationHandler {
	return &TranslationHandler{svc: svc, logger: logger}
}

// ListTranslations handles GET /translations
// Optional query param: category to filter by category name.
func (h *TranslationHandler) ListTranslations(c *gin.Context) {
	category := c.Query("category")

	session := h.svc.NewSession()
	items, err := session.ListAll(c.Request.Context(), category)
	if err != nil {
		h.logger.Error().Err(err).Str("category", category).Msg("Failed to list translations")
		h.fail(c)
		return
	}
	if items == nil {
		items = []translation.Item{}
	}

	middleware.ApplyCacheHeaders(c, session.ResponseCacheMetadata())
	c.JSON(http.StatusOK, ItemsResponse{Items: items})
}

// GetTranslation handles GET /translations/:key
// A missing key is an empty, uncacheable success.
func (h *TranslationHandler) GetTranslation(c *gin.Context) {
	key := c.Param("key")

	session := h.svc.NewSession()
	item, err := session.GetByKey(c.Request.Context(), key)
	if err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to get translation")
		h.fail(c)
		return
	}

	meta := session.ResponseCacheMetadata()
	if item == nil {
		// Not-found results are never stored, so they must not be advertised
		// as cacheable either.
		meta.AddDependency(translation.Uncacheable())
		middleware.ApplyCacheHeaders(c, meta)
		c.JSON(http.StatusOK, ItemsResponse{Items: []translation.Item{}})
		return
	}

	middleware.ApplyCacheHeaders(c, meta)
	c.JSON(http.StatusOK, ItemsResponse{Items: []translation.Item{*item}})
}

func (h *TranslationHandler) fail(c *gin.Context) {
	middleware.ApplyCacheHeaders(c, translation.Uncacheable())
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to load translations",
	})
}
