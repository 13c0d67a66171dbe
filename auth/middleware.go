package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MiddlewareConfig controls auth enforcement.
type MiddlewareConfig struct {
	// Disabled injects a local claim set with every scope, for local runs.
	Disabled bool
	Logger   *slog.Logger
}

// localClaims stand in for a real token when auth is disabled.
var localClaims = &Claims{Subject: "local", Issuer: "local", Scopes: []string{ScopeRead, ScopeWrite}}

// Middleware verifies the bearer token and stores its claims on the request context.
func Middleware(verifier *Verifier, cfg MiddlewareConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth")

	return func(c *gin.Context) {
		if cfg.Disabled {
			c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), localClaims))
			c.Next()
			return
		}

		if verifier == nil {
			respondUnauthorized(c, "auth verifier not configured")
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			logger.Info("missing Authorization header", "path", c.Request.URL.Path)
			respondUnauthorized(c, "missing authorization header")
			return
		}

		token, ok := extractBearerToken(header)
		if !ok {
			logger.Info("malformed Authorization header", "path", c.Request.URL.Path)
			respondUnauthorized(c, "invalid authorization header")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			logger.Info("token rejected", "path", c.Request.URL.Path, "err", err)
			respondUnauthorized(c, "invalid token")
			return
		}

		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// RequireScopes rejects requests whose claims lack any of scopes. It must run
// after Middleware.
func RequireScopes(scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c.Request.Context())
		if !ok {
			respondUnauthorized(c, "missing claims")
			return
		}
		if !claims.HasScopes(scopes...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope"})
			return
		}
		c.Next()
	}
}

func extractBearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
