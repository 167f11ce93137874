package identity

import (
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Principal is the authenticated caller of a use case, resolved from the
// session token and the user_roles table.
type Principal struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	MemberID uuid.UUID
	Roles    RoleSet
}

// AtLeast reports whether the caller holds the role or a higher one
func (p Principal) AtLeast(role Role) bool {
	return p.Roles.AtLeast(role)
}

// IsSelf reports whether the user id is the caller
func (p Principal) IsSelf(userID uuid.UUID) bool {
	return p.UserID == userID
}

// Require returns ErrForbidden unless the caller holds at least role
func (p Principal) Require(role Role) error {
	if !p.AtLeast(role) {
		return shared.NewDomainError(shared.CodeForbidden, "This action requires the "+string(role)+" role")
	}
	return nil
}

// RequireSelfOr allows the owner of a resource or holders of role
func (p Principal) RequireSelfOr(userID uuid.UUID, role Role) error {
	if p.IsSelf(userID) || p.AtLeast(role) {
		return nil
	}
	return shared.ErrForbidden
}
