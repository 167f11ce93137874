package middleware

import (
	"context"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PrincipalResolver loads the caller's membership and current roles
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, tenantID, userID uuid.UUID) (identity.Principal, error)
}

// TenantContext binds the request to the organization in the token. It puts
// the organization and user ids on the request context, where repositories
// scope their queries, and resolves the principal from user_roles so role
// changes apply without waiting for a new token.
func TenantContext(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			// public route
			c.Next()
			return
		}
		tenantID, err := claims.TenantUUID()
		if err != nil {
			abortWithError(c, dto.ErrCodeTokenInvalid, "Token carries an invalid organization")
			return
		}
		userID, err := claims.UserUUID()
		if err != nil {
			abortWithError(c, dto.ErrCodeTokenInvalid, "Token carries an invalid user")
			return
		}

		ctx := c.Request.Context()
		ctx = logger.WithTenantID(ctx, tenantID.String())
		ctx = logger.WithUserID(ctx, userID.String())
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(
			zap.String("tenant_id", tenantID.String()),
			zap.String("user_id", userID.String()),
		))
		c.Request = c.Request.WithContext(ctx)

		principal, err := resolver.ResolvePrincipal(ctx, tenantID, userID)
		if err != nil {
			status, resp := dto.FromError(err, RequestIDFrom(c))
			if status >= 500 {
				logger.L(ctx).Error("Failed to resolve principal", zap.Error(err))
			}
			c.AbortWithStatusJSON(status, resp)
			return
		}
		SetPrincipal(c, principal)
		c.Next()
	}
}
