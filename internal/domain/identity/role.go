package identity

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Role is an HR role within an organization
type Role string

const (
	RoleEmployee      Role = "employee"
	RoleHR            Role = "hr"
	RoleAdmin         Role = "admin"
	RoleAdministrator Role = "administrator"
)

var roleLevels = map[Role]int{
	RoleEmployee:      1,
	RoleHR:            2,
	RoleAdmin:         3,
	RoleAdministrator: 4,
}

// AllRoles lists roles from lowest to highest privilege
func AllRoles() []Role {
	return []Role{RoleEmployee, RoleHR, RoleAdmin, RoleAdministrator}
}

// ParseRole validates a role name
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Unknown role: "+s)
	}
	return r, nil
}

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the privilege rank, 0 for unknown roles
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether r grants at least the privileges of other
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// UserRole is a row of user_roles. Senior marks hr/admin holders who may
// perform the delegated senior approval step.
type UserRole struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	UserID    uuid.UUID
	Role      Role
	Senior    bool
	GrantedBy *uuid.UUID
	CreatedAt time.Time
}

// NewUserRole creates a role grant
func NewUserRole(tenantID, userID uuid.UUID, role Role, senior bool, grantedBy *uuid.UUID) (*UserRole, error) {
	if !role.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown role: "+string(role))
	}
	if senior && !(role == RoleHR || role == RoleAdmin) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Only hr and admin roles can be senior")
	}
	return &UserRole{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		Senior:    senior,
		GrantedBy: grantedBy,
		CreatedAt: time.Now(),
	}, nil
}

// RoleSet is the set of roles a user holds in one organization
type RoleSet struct {
	roles  map[Role]bool
	senior bool
}

// NewRoleSet builds a RoleSet from user_roles rows
func NewRoleSet(rows []UserRole) RoleSet {
	rs := RoleSet{roles: make(map[Role]bool, len(rows))}
	for _, r := range rows {
		rs.roles[r.Role] = true
		if r.Senior {
			rs.senior = true
		}
	}
	return rs
}

// RoleSetOf builds a RoleSet from role names
func RoleSetOf(roles ...Role) RoleSet {
	rs := RoleSet{roles: make(map[Role]bool, len(roles))}
	for _, r := range roles {
		rs.roles[r] = true
	}
	return rs
}

// WithSenior returns a copy marked as senior
func (rs RoleSet) WithSenior() RoleSet {
	cp := RoleSet{roles: make(map[Role]bool, len(rs.roles)), senior: true}
	for r := range rs.roles {
		cp.roles[r] = true
	}
	return cp
}

// Has reports whether the exact role is held
func (rs RoleSet) Has(role Role) bool {
	return rs.roles[role]
}

// Highest returns the most privileged role, or employee when empty
func (rs RoleSet) Highest() Role {
	best := RoleEmployee
	for r := range rs.roles {
		if r.Level() > best.Level() {
			best = r
		}
	}
	return best
}

// AtLeast reports whether any held role reaches the given level
func (rs RoleSet) AtLeast(role Role) bool {
	return rs.Highest().AtLeast(role)
}

// IsSenior reports whether the holder may perform senior approvals
func (rs RoleSet) IsSenior() bool {
	return rs.senior || rs.Has(RoleAdministrator)
}

// Strings returns the held roles ordered by privilege
func (rs RoleSet) Strings() []string {
	out := make([]string, 0, len(rs.roles))
	for _, r := range AllRoles() {
		if rs.roles[r] {
			out = append(out, string(r))
		}
	}
	return out
}
