package webhook

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the plaintext webhook key on inbound requests.
const APIKeyHeader = "X-Webhook-API-Key"

const contextAPIKeyName = "webhook_api_key_name"

// KeyStore looks up active API keys by hash.
type KeyStore interface {
	GetByHash(ctx context.Context, keyHash string) (APIKey, error)
}

// APIKeyAuthMiddleware authenticates requests by the X-Webhook-API-Key
// header. Keys are compared by sha256 hash, so a database dump never reveals
// a usable key.
func APIKeyAuthMiddleware(store KeyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		plaintext := c.GetHeader(APIKeyHeader)
		if plaintext == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		key, err := store.GetByHash(c.Request.Context(), HashKey(plaintext))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Set(contextAPIKeyName, key.Name)
		c.Next()
	}
}
