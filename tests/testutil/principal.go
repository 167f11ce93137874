package testutil

import (
	"context"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/google/uuid"
)

// Principal builds a caller of the organization with the given roles
func Principal(tenantID, userID, memberID uuid.UUID, roles ...identity.Role) identity.Principal {
	return identity.Principal{
		TenantID: tenantID,
		UserID:   userID,
		MemberID: memberID,
		Roles:    identity.RoleSetOf(roles...),
	}
}

// SeniorPrincipal is Principal with the senior flag set
func SeniorPrincipal(tenantID, userID, memberID uuid.UUID, roles ...identity.Role) identity.Principal {
	p := Principal(tenantID, userID, memberID, roles...)
	p.Roles = p.Roles.WithSenior()
	return p
}

// TenantContext binds ctx to the organization the way the tenant middleware
// does, so scoped repositories filter on it
func TenantContext(ctx context.Context, tenantID uuid.UUID) context.Context {
	return logger.WithTenantID(ctx, tenantID.String())
}
