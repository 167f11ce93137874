package identity

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository persists organizations. Organizations are not tenant scoped.
type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	Update(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*Organization, error)
	FindActive(ctx context.Context) ([]*Organization, error)
}

// UserRepository persists login accounts
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// MemberFilter contains filter options for listing members
type MemberFilter struct {
	Keyword    string
	Status     *MemberStatus
	Department string
	ManagerID  *uuid.UUID
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// MemberRepository persists organization members
type MemberRepository interface {
	Create(ctx context.Context, m *Member) error
	Update(ctx context.Context, m *Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Member, error)
	// FindByUserIDAcrossOrganizations ignores the tenant scope and is used at login
	FindByUserIDAcrossOrganizations(ctx context.Context, userID uuid.UUID) ([]*Member, error)
	FindAll(ctx context.Context, filter MemberFilter) ([]*Member, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Member, error)
	FindActive(ctx context.Context) ([]*Member, error)
}

// UserRoleRepository persists user_roles rows
type UserRoleRepository interface {
	Grant(ctx context.Context, role *UserRole) error
	Revoke(ctx context.Context, tenantID, userID uuid.UUID, role Role) error
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]UserRole, error)
	FindUserIDsWithRole(ctx context.Context, tenantID uuid.UUID, roles ...Role) ([]uuid.UUID, error)
	CountWithRole(ctx context.Context, tenantID uuid.UUID, role Role) (int64, error)
}

// InvitationRepository persists invitations
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	Update(ctx context.Context, inv *Invitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invitation, error)
	// FindByTokenHash ignores the tenant scope since the token is the credential
	FindByTokenHash(ctx context.Context, hash string) (*Invitation, error)
	FindPendingByEmail(ctx context.Context, email string) (*Invitation, error)
	FindAll(ctx context.Context, status *InvitationStatus, page, pageSize int) ([]*Invitation, int64, error)
	// FindExpirable returns pending invitations of every organization whose expiry passed
	FindExpirable(ctx context.Context, limit int) ([]*Invitation, error)
}

// ProfileRepository persists profiles
type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*Profile, error)
}

// DeviceTokenRepository persists push tokens
type DeviceTokenRepository interface {
	// Upsert inserts the token or moves an existing token to the user
	Upsert(ctx context.Context, t *DeviceToken) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID uuid.UUID, token string) error
	FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]DeviceToken, error)
}

// PreferenceRepository persists user preferences
type PreferenceRepository interface {
	Save(ctx context.Context, p *UserPreference) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*UserPreference, error)
	FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*UserPreference, error)
}
