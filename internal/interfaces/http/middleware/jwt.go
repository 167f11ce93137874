package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/auth"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenValidator parses and verifies access tokens
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// TokenChecker reports whether validated claims were revoked
type TokenChecker interface {
	CheckToken(ctx context.Context, claims *auth.Claims) error
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Tokens TokenValidator
	// Checker is optional and consults the token blacklist
	Checker TokenChecker
	// SkipPaths are exact paths served without a token
	SkipPaths []string
	// SkipPathPrefixes are path prefixes served without a token
	SkipPathPrefixes []string
	// QueryTokenPaths accept the token as a ?token= query parameter, for
	// clients such as browsers opening a WebSocket that cannot set headers
	QueryTokenPaths []string
	Logger          *zap.Logger
}

// JWTAuth validates the bearer token and stores its claims on the context
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip[path] || hasAnyPrefix(path, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && contains(cfg.QueryTokenPaths, path) {
			token = c.Query("token")
		}
		if token == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authorization token is required")
			return
		}

		claims, err := cfg.Tokens.ValidateAccessToken(token)
		if err != nil {
			handleAuthError(c, err)
			return
		}

		if cfg.Checker != nil {
			if err := cfg.Checker.CheckToken(c.Request.Context(), claims); err != nil {
				if de, ok := shared.AsDomainError(err); ok {
					abortWithError(c, dto.ErrCodeTokenRevoked, de.Message)
					return
				}
				// blacklist outage: the signature is still valid, so let it through
				cfg.Logger.Error("Failed to check token revocation",
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			}
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		abortWithError(c, dto.ErrCodeTokenExpired, "Token has expired")
	case errors.Is(err, auth.ErrTokenRevoked):
		abortWithError(c, dto.ErrCodeTokenRevoked, "Token has been revoked")
	default:
		abortWithError(c, dto.ErrCodeTokenInvalid, "Invalid token")
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
