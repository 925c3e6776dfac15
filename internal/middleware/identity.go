package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/productcube/workspace-service/internal/models"
	"github.com/productcube/workspace-service/pkg/response"
)

const (
	// ContextCaller is the key for the resolved caller in gin context.
	ContextCaller = "caller"
	// HeaderSessionToken carries the end-user session credential.
	HeaderSessionToken = "Session-Token"
	// HeaderServiceAuth carries the inter-service shared secret.
	HeaderServiceAuth = "Auth"
)

// TokenResolver turns a session token into a user id via the auth service.
type TokenResolver interface {
	Resolve(ctx context.Context, sessionToken string) (string, error)
}

// Identity returns a middleware that resolves the caller for every request.
// A missing session token resolves to the anonymous caller rather than
// rejecting: each operation decides for itself whether anonymous is allowed.
// A matching Auth header marks the caller as an inter-service peer.
func Identity(resolver TokenResolver, serviceKey string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := models.Caller{}

		if serviceKey != "" && c.GetHeader(HeaderServiceAuth) == serviceKey {
			caller.IsService = true
		}

		if token := c.GetHeader(HeaderSessionToken); token != "" {
			userID, err := resolver.Resolve(c.Request.Context(), token)
			if err != nil {
				logger.Warn("session resolution failed", zap.Error(err))
				response.ServiceUnavailable(c, "identity service unavailable")
				c.Abort()
				return
			}
			caller.UserID = userID
		}

		c.Set(ContextCaller, caller)
		c.Next()
	}
}

// CallerFrom returns the caller stored by Identity; the zero (anonymous)
// caller when absent.
func CallerFrom(c *gin.Context) models.Caller {
	if v, ok := c.Get(ContextCaller); ok {
		if caller, ok := v.(models.Caller); ok {
			return caller
		}
	}
	return models.Caller{}
}
