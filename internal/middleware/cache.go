package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey  = "response_meta"
	responseStartKey = "response_meta_start"
)

// WithResponseMeta stores a metadata map on the request context. Handlers
// that serve availability or calendar queries from Redis add a cache flag to
// the map before responding.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit marks whether the current response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)["cache_hit"] = hit
}

// ExtractMeta returns the metadata map stored on the context, or nil when
// WithResponseMeta is not installed. The processing time is stamped here,
// at read, so it serializes into the response envelope rather than being
// written after the body has gone out.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	typed, ok := meta.(map[string]interface{})
	if !ok {
		return nil
	}
	if _, stamped := typed["processing_time_ms"]; !stamped {
		if raw, ok := c.Get(responseStartKey); ok {
			if start, ok := raw.(time.Time); ok {
				typed["processing_time_ms"] = time.Since(start).Milliseconds()
			}
		}
	}
	return typed
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := make(map[string]interface{})
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
