package identity

import (
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeOrganization = "Organization"
	AggregateTypeMember       = "Member"
	AggregateTypeInvitation   = "Invitation"
)

// Identity domain event types
const (
	EventTypeOrganizationCreated = "OrganizationCreated"
	EventTypeMemberJoined        = "MemberJoined"
	EventTypeMemberStatusChanged = "MemberStatusChanged"
	EventTypeInvitationCreated   = "InvitationCreated"
	EventTypeRoleAssigned        = "RoleAssigned"
	EventTypeRoleRevoked         = "RoleRevoked"
)

// OrganizationCreatedEvent is published when an organization registers
type OrganizationCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewOrganizationCreatedEvent creates a new OrganizationCreatedEvent
func NewOrganizationCreatedEvent(org *Organization) *OrganizationCreatedEvent {
	return &OrganizationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrganizationCreated, AggregateTypeOrganization, org.ID, org.ID),
		Name:            org.Name,
		Slug:            org.Slug,
	}
}

// MemberJoinedEvent is published when a user becomes a member
type MemberJoinedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewMemberJoinedEvent creates a new MemberJoinedEvent
func NewMemberJoinedEvent(m *Member) *MemberJoinedEvent {
	return &MemberJoinedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberJoined, AggregateTypeMember, m.ID, m.TenantID),
		UserID:          m.UserID,
	}
}

// MemberStatusChangedEvent is published on suspend, reactivate or leave
type MemberStatusChangedEvent struct {
	shared.BaseDomainEvent
	UserID    uuid.UUID    `json:"user_id"`
	OldStatus MemberStatus `json:"old_status"`
	NewStatus MemberStatus `json:"new_status"`
}

// NewMemberStatusChangedEvent creates a new MemberStatusChangedEvent
func NewMemberStatusChangedEvent(m *Member, old MemberStatus) *MemberStatusChangedEvent {
	return &MemberStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberStatusChanged, AggregateTypeMember, m.ID, m.TenantID),
		UserID:          m.UserID,
		OldStatus:       old,
		NewStatus:       m.Status,
	}
}

// InvitationCreatedEvent is published when an invitation is issued
type InvitationCreatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewInvitationCreatedEvent creates a new InvitationCreatedEvent
func NewInvitationCreatedEvent(inv *Invitation) *InvitationCreatedEvent {
	return &InvitationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvitationCreated, AggregateTypeInvitation, inv.ID, inv.TenantID),
		Email:           inv.Email,
		Role:            inv.Role,
	}
}

// RoleChangedEvent is published when a role is granted or revoked
type RoleChangedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

// NewRoleAssignedEvent creates a RoleAssigned event
func NewRoleAssignedEvent(tenantID, userID uuid.UUID, role Role) *RoleChangedEvent {
	return &RoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoleAssigned, AggregateTypeMember, userID, tenantID),
		UserID:          userID,
		Role:            role,
	}
}

// NewRoleRevokedEvent creates a RoleRevoked event
func NewRoleRevokedEvent(tenantID, userID uuid.UUID, role Role) *RoleChangedEvent {
	return &RoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoleRevoked, AggregateTypeMember, userID, tenantID),
		UserID:          userID,
		Role:            role,
	}
}
