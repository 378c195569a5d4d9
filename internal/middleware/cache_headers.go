package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheTagsHeader lists the cache tags of a response for fronting caches,
// space separated.
const CacheTagsHeader = "Cache-Tags"

// CacheMetadata is what a response advertises to HTTP caches.
type CacheMetadata interface {
	MaxAge() int
	Tags() []string
}

// ApplyCacheHeaders sets Cache-Control from the metadata's max-age (seconds)
// and exposes its tags. A max-age of 0 disables client caching and omits the
// tags.
func ApplyCacheHeaders(c *gin.Context, meta CacheMetadata) {
	maxAge := meta.MaxAge()
	if maxAge <= 0 {
		c.Header("Cache-Control", "max-age=0, must-revalidate, no-cache, private")
		return
	}
	c.Header("Cache-Control", "max-age="+strconv.Itoa(maxAge)+", public")
	if tags := meta.Tags(); len(tags) > 0 {
		c.Header(CacheTagsHeader, strings.Join(tags, " "))
	}
}
