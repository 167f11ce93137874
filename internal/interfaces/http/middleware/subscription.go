package middleware

import (
	"context"
	"net/http"

	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WriteChecker reports whether an organization may still change data
type WriteChecker interface {
	IsWritable(ctx context.Context, tenantID uuid.UUID) (bool, error)
}

// SubscriptionGuard makes organizations whose subscription lapsed past the
// grace period read-only. Safe methods and the exempt path prefixes (billing,
// logout) always pass so an organization can still pay and sign out.
func SubscriptionGuard(checker WriteChecker, exemptPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if hasAnyPrefix(c.Request.URL.Path, exemptPrefixes) {
			c.Next()
			return
		}
		principal, ok := GetPrincipal(c)
		if !ok {
			c.Next()
			return
		}
		writable, err := checker.IsWritable(c.Request.Context(), principal.TenantID)
		if err != nil {
			// billing outages never lock an organization out
			logger.L(c.Request.Context()).Warn("Subscription check failed, allowing write", zap.Error(err))
			c.Next()
			return
		}
		if !writable {
			abortWithError(c, dto.ErrCodeSubscriptionLapsed,
				"The organization subscription is inactive; the workspace is read-only")
			return
		}
		c.Next()
	}
}
