package models

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/google/uuid"
)

// OrganizationModel is the persistence model for the Organization aggregate.
type OrganizationModel struct {
	AggregateModel
	Name                 string                        `gorm:"type:varchar(200);not null"`
	Slug                 string                        `gorm:"type:varchar(64);not null;uniqueIndex"`
	Status               identity.OrganizationStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	Plan                 identity.Plan                 `gorm:"type:varchar(20);not null;default:'free'"`
	Settings             identity.OrganizationSettings `gorm:"type:jsonb;serializer:json"`
	StripeCustomerID     string                        `gorm:"type:varchar(100);index"`
	StripeSubscriptionID string                        `gorm:"type:varchar(100)"`
	SubscriptionStatus   identity.SubscriptionStatus   `gorm:"type:varchar(20);not null;default:'none'"`
	CurrentPeriodEnd     *time.Time
	SubscriptionSyncedAt *time.Time
}

// TableName returns the table name for GORM
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ToDomain converts the persistence model to a domain Organization.
func (m *OrganizationModel) ToDomain() *identity.Organization {
	return &identity.Organization{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		Name:                 m.Name,
		Slug:                 m.Slug,
		Status:               m.Status,
		Plan:                 m.Plan,
		Settings:             m.Settings,
		StripeCustomerID:     m.StripeCustomerID,
		StripeSubscriptionID: m.StripeSubscriptionID,
		SubscriptionStatus:   m.SubscriptionStatus,
		CurrentPeriodEnd:     m.CurrentPeriodEnd,
		SubscriptionSyncedAt: m.SubscriptionSyncedAt,
	}
}

// FromDomain populates the persistence model from a domain Organization.
func (m *OrganizationModel) FromDomain(o *identity.Organization) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Name = o.Name
	m.Slug = o.Slug
	m.Status = o.Status
	m.Plan = o.Plan
	m.Settings = o.Settings
	m.StripeCustomerID = o.StripeCustomerID
	m.StripeSubscriptionID = o.StripeSubscriptionID
	m.SubscriptionStatus = o.SubscriptionStatus
	m.CurrentPeriodEnd = o.CurrentPeriodEnd
	m.SubscriptionSyncedAt = o.SubscriptionSyncedAt
}

// OrganizationModelFromDomain creates a persistence model from a domain Organization.
func OrganizationModelFromDomain(o *identity.Organization) *OrganizationModel {
	m := &OrganizationModel{}
	m.FromDomain(o)
	return m
}

// UserModel is the persistence model for the global User account.
type UserModel struct {
	AggregateModel
	Email          string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string              `gorm:"type:varchar(255);not null"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt    *time.Time
	FailedAttempts int `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Status:            m.Status,
		LastLoginAt:       m.LastLoginAt,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
	}
}

// FromDomain populates the persistence model from a domain User.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Status = u.Status
	m.LastLoginAt = u.LastLoginAt
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
}

// UserModelFromDomain creates a persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// MemberModel is the persistence model for organization_members.
type MemberModel struct {
	TenantAggregateModel
	UserID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	EmployeeNumber string                `gorm:"type:varchar(50)"`
	Department     string                `gorm:"type:varchar(100)"`
	Position       string                `gorm:"type:varchar(100)"`
	ManagerID      *uuid.UUID            `gorm:"type:uuid;index"`
	HiredAt        *time.Time            `gorm:"type:date"`
	Status         identity.MemberStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LeftAt         *time.Time
}

// TableName returns the table name for GORM
func (MemberModel) TableName() string {
	return "organization_members"
}

// ToDomain converts the persistence model to a domain Member.
func (m *MemberModel) ToDomain() *identity.Member {
	return &identity.Member{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		UserID:              m.UserID,
		EmployeeNumber:      m.EmployeeNumber,
		Department:          m.Department,
		Position:            m.Position,
		ManagerID:           m.ManagerID,
		HiredAt:             asDatePtr(m.HiredAt),
		Status:              m.Status,
		LeftAt:              m.LeftAt,
	}
}

// FromDomain populates the persistence model from a domain Member.
func (m *MemberModel) FromDomain(d *identity.Member) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.UserID = d.UserID
	m.EmployeeNumber = d.EmployeeNumber
	m.Department = d.Department
	m.Position = d.Position
	m.ManagerID = d.ManagerID
	m.HiredAt = d.HiredAt
	m.Status = d.Status
	m.LeftAt = d.LeftAt
}

// MemberModelFromDomain creates a persistence model from a domain Member.
func MemberModelFromDomain(d *identity.Member) *MemberModel {
	m := &MemberModel{}
	m.FromDomain(d)
	return m
}

// UserRoleModel is a row of user_roles.
type UserRoleModel struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_user_role,priority:1"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_user_role,priority:2"`
	Role      identity.Role `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_role,priority:3"`
	Senior    bool          `gorm:"not null;default:false"`
	GrantedBy *uuid.UUID    `gorm:"type:uuid"`
	CreatedAt time.Time     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}

// ToDomain converts the row to a domain UserRole.
func (m *UserRoleModel) ToDomain() identity.UserRole {
	return identity.UserRole{
		ID:        m.ID,
		TenantID:  m.TenantID,
		UserID:    m.UserID,
		Role:      m.Role,
		Senior:    m.Senior,
		GrantedBy: m.GrantedBy,
		CreatedAt: m.CreatedAt,
	}
}

// UserRoleModelFromDomain creates a row from a domain UserRole.
func UserRoleModelFromDomain(r *identity.UserRole) *UserRoleModel {
	return &UserRoleModel{
		ID:        r.ID,
		TenantID:  r.TenantID,
		UserID:    r.UserID,
		Role:      r.Role,
		Senior:    r.Senior,
		GrantedBy: r.GrantedBy,
		CreatedAt: r.CreatedAt,
	}
}

// InvitationModel is the persistence model for invitations.
type InvitationModel struct {
	TenantAggregateModel
	Email          string                    `gorm:"type:varchar(200);not null;index"`
	Role           identity.Role             `gorm:"type:varchar(20);not null"`
	TokenHash      string                    `gorm:"type:char(64);not null;uniqueIndex"`
	Status         identity.InvitationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ExpiresAt      time.Time                 `gorm:"not null;index"`
	InvitedBy      uuid.UUID                 `gorm:"type:uuid;not null"`
	AcceptedAt     *time.Time
	AcceptedUserID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InvitationModel) TableName() string {
	return "invitations"
}

// ToDomain converts the persistence model to a domain Invitation.
func (m *InvitationModel) ToDomain() *identity.Invitation {
	return &identity.Invitation{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Email:               m.Email,
		Role:                m.Role,
		TokenHash:           m.TokenHash,
		Status:              m.Status,
		ExpiresAt:           m.ExpiresAt,
		InvitedBy:           m.InvitedBy,
		AcceptedAt:          m.AcceptedAt,
		AcceptedUserID:      m.AcceptedUserID,
	}
}

// FromDomain populates the persistence model from a domain Invitation.
func (m *InvitationModel) FromDomain(i *identity.Invitation) {
	m.FromDomainTenantAggregateRoot(i.TenantAggregateRoot)
	m.Email = i.Email
	m.Role = i.Role
	m.TokenHash = i.TokenHash
	m.Status = i.Status
	m.ExpiresAt = i.ExpiresAt
	m.InvitedBy = i.InvitedBy
	m.AcceptedAt = i.AcceptedAt
	m.AcceptedUserID = i.AcceptedUserID
}

// InvitationModelFromDomain creates a persistence model from a domain Invitation.
func InvitationModelFromDomain(i *identity.Invitation) *InvitationModel {
	m := &InvitationModel{}
	m.FromDomain(i)
	return m
}

// ProfileModel is the persistence model for profiles.
type ProfileModel struct {
	TenantAggregateModel
	UserID                uuid.UUID  `gorm:"type:uuid;not null;index"`
	FullName              string     `gorm:"type:varchar(200);not null"`
	PreferredName         string     `gorm:"type:varchar(200)"`
	Phone                 string     `gorm:"type:varchar(50)"`
	Address               string     `gorm:"type:text"`
	DateOfBirth           *time.Time `gorm:"type:date"`
	EmergencyContactName  string     `gorm:"type:varchar(200)"`
	EmergencyContactPhone string     `gorm:"type:varchar(50)"`
	AvatarKey             string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "profiles"
}

// ToDomain converts the persistence model to a domain Profile.
func (m *ProfileModel) ToDomain() *identity.Profile {
	return &identity.Profile{
		TenantAggregateRoot:   m.ToTenantAggregateRoot(),
		UserID:                m.UserID,
		FullName:              m.FullName,
		PreferredName:         m.PreferredName,
		Phone:                 m.Phone,
		Address:               m.Address,
		DateOfBirth:           asDatePtr(m.DateOfBirth),
		EmergencyContactName:  m.EmergencyContactName,
		EmergencyContactPhone: m.EmergencyContactPhone,
		AvatarKey:             m.AvatarKey,
	}
}

// FromDomain populates the persistence model from a domain Profile.
func (m *ProfileModel) FromDomain(p *identity.Profile) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.UserID = p.UserID
	m.FullName = p.FullName
	m.PreferredName = p.PreferredName
	m.Phone = p.Phone
	m.Address = p.Address
	m.DateOfBirth = p.DateOfBirth
	m.EmergencyContactName = p.EmergencyContactName
	m.EmergencyContactPhone = p.EmergencyContactPhone
	m.AvatarKey = p.AvatarKey
}

// ProfileModelFromDomain creates a persistence model from a domain Profile.
func ProfileModelFromDomain(p *identity.Profile) *ProfileModel {
	m := &ProfileModel{}
	m.FromDomain(p)
	return m
}

// DeviceTokenModel is a row of device_tokens. Token is globally unique so a
// device that changes hands moves to the new user.
type DeviceTokenModel struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	Platform   identity.Platform `gorm:"type:varchar(20);not null"`
	Token      string            `gorm:"type:text;not null;uniqueIndex"`
	LastSeenAt time.Time         `gorm:"not null"`
	CreatedAt  time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeviceTokenModel) TableName() string {
	return "device_tokens"
}

// ToDomain converts the row to a domain DeviceToken.
func (m *DeviceTokenModel) ToDomain() identity.DeviceToken {
	return identity.DeviceToken{
		ID:         m.ID,
		TenantID:   m.TenantID,
		UserID:     m.UserID,
		Platform:   m.Platform,
		Token:      m.Token,
		LastSeenAt: m.LastSeenAt,
		CreatedAt:  m.CreatedAt,
	}
}

// DeviceTokenModelFromDomain creates a row from a domain DeviceToken.
func DeviceTokenModelFromDomain(t *identity.DeviceToken) *DeviceTokenModel {
	return &DeviceTokenModel{
		ID:         t.ID,
		TenantID:   t.TenantID,
		UserID:     t.UserID,
		Platform:   t.Platform,
		Token:      t.Token,
		LastSeenAt: t.LastSeenAt,
		CreatedAt:  t.CreatedAt,
	}
}

// UserPreferenceModel is a row of user_preferences.
type UserPreferenceModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pref_tenant_user,priority:1"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pref_tenant_user,priority:2"`
	Locale        string    `gorm:"type:varchar(20);not null;default:'en'"`
	Timezone      string    `gorm:"type:varchar(64);not null;default:'UTC'"`
	PushLeave     bool      `gorm:"not null;default:true"`
	PushPayroll   bool      `gorm:"not null;default:true"`
	PushTasks     bool      `gorm:"not null;default:true"`
	PushChat      bool      `gorm:"not null;default:true"`
	PushDocuments bool      `gorm:"not null;default:true"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserPreferenceModel) TableName() string {
	return "user_preferences"
}

// ToDomain converts the row to a domain UserPreference.
func (m *UserPreferenceModel) ToDomain() *identity.UserPreference {
	return &identity.UserPreference{
		ID:            m.ID,
		TenantID:      m.TenantID,
		UserID:        m.UserID,
		Locale:        m.Locale,
		Timezone:      m.Timezone,
		PushLeave:     m.PushLeave,
		PushPayroll:   m.PushPayroll,
		PushTasks:     m.PushTasks,
		PushChat:      m.PushChat,
		PushDocuments: m.PushDocuments,
		UpdatedAt:     m.UpdatedAt,
	}
}

// UserPreferenceModelFromDomain creates a row from a domain UserPreference.
func UserPreferenceModelFromDomain(p *identity.UserPreference) *UserPreferenceModel {
	return &UserPreferenceModel{
		ID:            p.ID,
		TenantID:      p.TenantID,
		UserID:        p.UserID,
		Locale:        p.Locale,
		Timezone:      p.Timezone,
		PushLeave:     p.PushLeave,
		PushPayroll:   p.PushPayroll,
		PushTasks:     p.PushTasks,
		PushChat:      p.PushChat,
		PushDocuments: p.PushDocuments,
		UpdatedAt:     p.UpdatedAt,
	}
}
