package middleware

import (
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/auth"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// gin context keys
const (
	ClaimsKey    = "jwt_claims"
	PrincipalKey = "principal"
)

// RequestIDFrom returns the id set by RequestID, falling back to the header
func RequestIDFrom(c *gin.Context) string {
	if id := c.GetString(logger.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

// GetClaims returns the validated token claims
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// SetPrincipal stores the caller for the handlers
func SetPrincipal(c *gin.Context, p identity.Principal) {
	c.Set(PrincipalKey, p)
}

// GetPrincipal returns the caller resolved by TenantContext
func GetPrincipal(c *gin.Context) (identity.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return identity.Principal{}, false
	}
	p, ok := v.(identity.Principal)
	return p, ok
}
