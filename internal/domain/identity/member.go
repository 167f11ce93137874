package identity

import (
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// MemberStatus represents a membership state
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusSuspended MemberStatus = "suspended"
	MemberStatusLeft      MemberStatus = "left"
)

// Member is a user's employment record inside an organization.
// Leave, payroll, documents and tasks reference members.
type Member struct {
	shared.TenantAggregateRoot
	UserID         uuid.UUID
	EmployeeNumber string
	Department     string
	Position       string
	ManagerID      *uuid.UUID
	HiredAt        *time.Time
	Status         MemberStatus
	LeftAt         *time.Time
}

// NewMember creates an active member
func NewMember(tenantID, userID uuid.UUID, employeeNumber string) (*Member, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "User ID is required")
	}
	employeeNumber = strings.TrimSpace(employeeNumber)
	if len(employeeNumber) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Employee number cannot exceed 50 characters")
	}
	m := &Member{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		EmployeeNumber:      employeeNumber,
		Status:              MemberStatusActive,
	}
	m.AddDomainEvent(NewMemberJoinedEvent(m))
	return m, nil
}

// MemberUpdate carries optional changes to employment details
type MemberUpdate struct {
	EmployeeNumber *string
	Department     *string
	Position       *string
	ManagerID      *uuid.UUID
	ClearManager   bool
	HiredAt        *time.Time
}

// Update applies employment detail changes
func (m *Member) Update(u MemberUpdate) error {
	if u.ManagerID != nil && *u.ManagerID == m.ID {
		return shared.NewDomainError(shared.CodeInvalidInput, "A member cannot be their own manager")
	}
	if u.EmployeeNumber != nil {
		m.EmployeeNumber = strings.TrimSpace(*u.EmployeeNumber)
	}
	if u.Department != nil {
		m.Department = strings.TrimSpace(*u.Department)
	}
	if u.Position != nil {
		m.Position = strings.TrimSpace(*u.Position)
	}
	if u.ClearManager {
		m.ManagerID = nil
	} else if u.ManagerID != nil {
		id := *u.ManagerID
		m.ManagerID = &id
	}
	if u.HiredAt != nil {
		h := shared.DateOnly(*u.HiredAt)
		m.HiredAt = &h
	}
	m.IncrementVersion()
	return nil
}

// Suspend blocks the member from signing in
func (m *Member) Suspend() error {
	if m.Status != MemberStatusActive {
		return shared.NewDomainError(shared.CodeInvalidState, "Only active members can be suspended")
	}
	m.Status = MemberStatusSuspended
	m.IncrementVersion()
	m.AddDomainEvent(NewMemberStatusChangedEvent(m, MemberStatusActive))
	return nil
}

// Reactivate restores a suspended member
func (m *Member) Reactivate() error {
	if m.Status != MemberStatusSuspended {
		return shared.NewDomainError(shared.CodeInvalidState, "Only suspended members can be reactivated")
	}
	m.Status = MemberStatusActive
	m.IncrementVersion()
	m.AddDomainEvent(NewMemberStatusChangedEvent(m, MemberStatusSuspended))
	return nil
}

// MarkLeft ends the employment
func (m *Member) MarkLeft(at time.Time) error {
	if m.Status == MemberStatusLeft {
		return shared.NewDomainError(shared.CodeInvalidState, "Member has already left")
	}
	prev := m.Status
	m.Status = MemberStatusLeft
	m.LeftAt = &at
	m.IncrementVersion()
	m.AddDomainEvent(NewMemberStatusChangedEvent(m, prev))
	return nil
}

// IsActive reports whether the member is active
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}

// TenureDays returns whole days since hire, or since the membership was created
func (m *Member) TenureDays(now time.Time) int {
	start := m.CreatedAt
	if m.HiredAt != nil {
		start = *m.HiredAt
	}
	if now.Before(start) {
		return 0
	}
	return int(shared.DateOnly(now).Sub(shared.DateOnly(start)).Hours() / 24)
}
