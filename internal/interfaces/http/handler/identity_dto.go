package handler

import (
	"time"

	appidentity "github.com/We2399/idea-launcher-pro-sub001/internal/application/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterRequest opens a new organization
type RegisterRequest struct {
	OrganizationName string `json:"organization_name" binding:"required,min=2,max=200"`
	Slug             string `json:"slug" binding:"omitempty,min=3,max=63"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8,max=128"`
	FullName         string `json:"full_name" binding:"required,max=200"`
	Locale           string `json:"locale" binding:"omitempty,max=10"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// OrganizationSlug picks the organization when the user belongs to several
	OrganizationSlug string `json:"organization_slug" binding:"omitempty,max=63"`
}

// RefreshTokenRequest represents the refresh token request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally signs out every session
type LogoutRequest struct {
	AllSessions bool `json:"all_sessions"`
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// SessionResponse is returned by register, login and refresh
type SessionResponse struct {
	AccessToken           string              `json:"access_token"`
	RefreshToken          string              `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time           `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time           `json:"refresh_token_expires_at"`
	TokenType             string              `json:"token_type"`
	User                  SessionUserResponse `json:"user"`
}

// SessionUserResponse describes the signed in user
type SessionUserResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	MemberID         uuid.UUID `json:"member_id"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	Email            string    `json:"email"`
	DisplayName      string    `json:"display_name"`
	Roles            []string  `json:"roles"`
	Senior           bool      `json:"senior"`
	Locale           string    `json:"locale"`
}

func toSessionResponse(r *appidentity.SessionResult) SessionResponse {
	return SessionResponse{
		AccessToken:           r.AccessToken,
		RefreshToken:          r.RefreshToken,
		AccessTokenExpiresAt:  r.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
		TokenType:             r.TokenType,
		User:                  toSessionUserResponse(&r.User),
	}
}

func toSessionUserResponse(u *appidentity.SessionUser) SessionUserResponse {
	return SessionUserResponse{
		UserID:           u.UserID,
		MemberID:         u.MemberID,
		OrganizationID:   u.OrganizationID,
		OrganizationName: u.OrganizationName,
		Email:            u.Email,
		DisplayName:      u.DisplayName,
		Roles:            u.Roles,
		Senior:           u.Senior,
		Locale:           u.Locale,
	}
}

// UpdateOrganizationRequest changes organization settings
type UpdateOrganizationRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=2,max=200"`
	DefaultLocale *string `json:"default_locale" binding:"omitempty,max=10"`
	Timezone      *string `json:"timezone" binding:"omitempty,max=64"`
	// WorkWeek lists working days, 0 for Sunday through 6 for Saturday
	WorkWeek []int   `json:"work_week" binding:"omitempty,max=7,dive,gte=0,lte=6"`
	Currency *string `json:"currency" binding:"omitempty,len=3"`
}

// OrganizationResponse represents an organization
type OrganizationResponse struct {
	ID                 uuid.UUID                     `json:"id"`
	Name               string                        `json:"name"`
	Slug               string                        `json:"slug"`
	Status             identity.OrganizationStatus   `json:"status"`
	Plan               identity.Plan                 `json:"plan"`
	Settings           identity.OrganizationSettings `json:"settings"`
	SubscriptionStatus identity.SubscriptionStatus   `json:"subscription_status"`
	CurrentPeriodEnd   *time.Time                    `json:"current_period_end,omitempty"`
	CreatedAt          time.Time                     `json:"created_at"`
}

func toOrganizationResponse(o *identity.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:                 o.ID,
		Name:               o.Name,
		Slug:               o.Slug,
		Status:             o.Status,
		Plan:               o.Plan,
		Settings:           o.Settings,
		SubscriptionStatus: o.SubscriptionStatus,
		CurrentPeriodEnd:   o.CurrentPeriodEnd,
		CreatedAt:          o.CreatedAt,
	}
}

// ListMembersQuery filters the member directory
type ListMembersQuery struct {
	Keyword    string `form:"keyword" binding:"omitempty,max=100"`
	Status     string `form:"status" binding:"omitempty,oneof=active suspended left"`
	Department string `form:"department" binding:"omitempty,max=100"`
	ManagerID  string `form:"manager_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy     string `form:"sort_by" binding:"omitempty,max=50"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// UpdateMemberRequest changes employment details
type UpdateMemberRequest struct {
	EmployeeNumber *string `json:"employee_number" binding:"omitempty,max=50"`
	Department     *string `json:"department" binding:"omitempty,max=100"`
	Position       *string `json:"position" binding:"omitempty,max=100"`
	ManagerID      *string `json:"manager_id" binding:"omitempty,uuid"`
	ClearManager   bool    `json:"clear_manager"`
	HiredAt        *string `json:"hired_at" binding:"omitempty,datetime=2006-01-02"`
}

// AssignRoleRequest grants a role to a user
type AssignRoleRequest struct {
	Role   string `json:"role" binding:"required,oneof=employee hr admin administrator"`
	Senior bool   `json:"senior"`
}

// RolesResponse lists a user's roles after a change
type RolesResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Roles  []string  `json:"roles"`
}

// MemberResponse is a directory entry
type MemberResponse struct {
	ID             uuid.UUID             `json:"id"`
	UserID         uuid.UUID             `json:"user_id"`
	Email          string                `json:"email"`
	FullName       string                `json:"full_name"`
	PreferredName  string                `json:"preferred_name,omitempty"`
	EmployeeNumber string                `json:"employee_number,omitempty"`
	Department     string                `json:"department,omitempty"`
	Position       string                `json:"position,omitempty"`
	ManagerID      *uuid.UUID            `json:"manager_id,omitempty"`
	HiredAt        *string               `json:"hired_at,omitempty"`
	Status         identity.MemberStatus `json:"status"`
	LeftAt         *time.Time            `json:"left_at,omitempty"`
	Roles          []string              `json:"roles"`
	Senior         bool                  `json:"senior"`
	Profile        *ProfileResponse      `json:"profile,omitempty"`
}

func toMemberResponse(v appidentity.MemberView) MemberResponse {
	m := v.Member
	resp := MemberResponse{
		ID:             m.ID,
		UserID:         m.UserID,
		Email:          v.Email,
		EmployeeNumber: m.EmployeeNumber,
		Department:     m.Department,
		Position:       m.Position,
		ManagerID:      m.ManagerID,
		HiredAt:        formatDate(m.HiredAt),
		Status:         m.Status,
		LeftAt:         m.LeftAt,
		Roles:          v.Roles,
		Senior:         v.Senior,
	}
	if v.Profile != nil {
		resp.FullName = v.Profile.FullName
		resp.PreferredName = v.Profile.PreferredName
		profile := toProfileResponse(v.Profile)
		resp.Profile = &profile
	}
	if resp.Roles == nil {
		resp.Roles = []string{}
	}
	return resp
}

// MemberStatusResponse is returned by suspend and reactivate
type MemberStatusResponse struct {
	ID     uuid.UUID             `json:"id"`
	UserID uuid.UUID             `json:"user_id"`
	Status identity.MemberStatus `json:"status"`
	LeftAt *time.Time            `json:"left_at,omitempty"`
}

func toMemberStatusResponse(m *identity.Member) MemberStatusResponse {
	return MemberStatusResponse{ID: m.ID, UserID: m.UserID, Status: m.Status, LeftAt: m.LeftAt}
}

// InviteRequest invites someone by email
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=employee hr admin administrator"`
}

// AcceptInvitationRequest redeems an invitation token
type AcceptInvitationRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"omitempty,min=8,max=128"`
	FullName string `json:"full_name" binding:"omitempty,max=200"`
	Locale   string `json:"locale" binding:"omitempty,max=10"`
}

// InvitationResponse represents an invitation
type InvitationResponse struct {
	ID         uuid.UUID                 `json:"id"`
	Email      string                    `json:"email"`
	Role       identity.Role             `json:"role"`
	Status     identity.InvitationStatus `json:"status"`
	ExpiresAt  time.Time                 `json:"expires_at"`
	InvitedBy  uuid.UUID                 `json:"invited_by"`
	AcceptedAt *time.Time                `json:"accepted_at,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
}

func toInvitationResponse(inv *identity.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:         inv.ID,
		Email:      inv.Email,
		Role:       inv.Role,
		Status:     inv.Status,
		ExpiresAt:  inv.ExpiresAt,
		InvitedBy:  inv.InvitedBy,
		AcceptedAt: inv.AcceptedAt,
		CreatedAt:  inv.CreatedAt,
	}
}

// InviteResponse is returned to the inviter
type InviteResponse struct {
	Invitation InvitationResponse `json:"invitation"`
	AcceptURL  string             `json:"accept_url"`
	Reissued   bool               `json:"reissued"`
	MailSent   bool               `json:"mail_sent"`
}

// AcceptInvitationResponse tells the client where to sign in
type AcceptInvitationResponse struct {
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationSlug string    `json:"organization_slug"`
	UserID           uuid.UUID `json:"user_id"`
	MemberID         uuid.UUID `json:"member_id"`
	NewUser          bool      `json:"new_user"`
}

// UpdateProfileRequest changes profile fields
type UpdateProfileRequest struct {
	FullName              *string `json:"full_name" binding:"omitempty,min=1,max=200"`
	PreferredName         *string `json:"preferred_name" binding:"omitempty,max=100"`
	Phone                 *string `json:"phone" binding:"omitempty,max=50"`
	Address               *string `json:"address" binding:"omitempty,max=500"`
	DateOfBirth           *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	EmergencyContactName  *string `json:"emergency_contact_name" binding:"omitempty,max=200"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" binding:"omitempty,max=50"`
}

// ProfileResponse represents a profile
type ProfileResponse struct {
	UserID                uuid.UUID `json:"user_id"`
	FullName              string    `json:"full_name"`
	PreferredName         string    `json:"preferred_name"`
	Phone                 string    `json:"phone"`
	Address               string    `json:"address"`
	DateOfBirth           *string   `json:"date_of_birth,omitempty"`
	EmergencyContactName  string    `json:"emergency_contact_name"`
	EmergencyContactPhone string    `json:"emergency_contact_phone"`
	HasAvatar             bool      `json:"has_avatar"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func toProfileResponse(p *identity.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:                p.UserID,
		FullName:              p.FullName,
		PreferredName:         p.PreferredName,
		Phone:                 p.Phone,
		Address:               p.Address,
		DateOfBirth:           formatDate(p.DateOfBirth),
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		HasAvatar:             p.AvatarKey != "",
		UpdatedAt:             p.UpdatedAt,
	}
}

// AvatarUploadRequest asks for a presigned avatar upload
type AvatarUploadRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/png image/jpeg image/webp"`
}

// AvatarUploadResponse is a presigned avatar upload
type AvatarUploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ConfirmAvatarRequest attaches an uploaded avatar
type ConfirmAvatarRequest struct {
	StorageKey string `json:"storage_key" binding:"required"`
}

// RegisterDeviceRequest registers a push token
type RegisterDeviceRequest struct {
	Platform string `json:"platform" binding:"required,oneof=android ios web"`
	Token    string `json:"token" binding:"required,max=4096"`
}

// UnregisterDeviceRequest removes a push token
type UnregisterDeviceRequest struct {
	Token string `json:"token" binding:"required"`
}

// DeviceResponse represents a registered device
type DeviceResponse struct {
	ID         uuid.UUID         `json:"id"`
	Platform   identity.Platform `json:"platform"`
	LastSeenAt time.Time         `json:"last_seen_at"`
	CreatedAt  time.Time         `json:"created_at"`
}

// UpdatePreferencesRequest changes preferences
type UpdatePreferencesRequest struct {
	Locale        *string `json:"locale" binding:"omitempty,max=10"`
	Timezone      *string `json:"timezone" binding:"omitempty,max=64"`
	PushLeave     *bool   `json:"push_leave"`
	PushPayroll   *bool   `json:"push_payroll"`
	PushTasks     *bool   `json:"push_tasks"`
	PushChat      *bool   `json:"push_chat"`
	PushDocuments *bool   `json:"push_documents"`
}

// PreferencesResponse represents the caller's preferences
type PreferencesResponse struct {
	Locale        string `json:"locale"`
	Timezone      string `json:"timezone"`
	PushLeave     bool   `json:"push_leave"`
	PushPayroll   bool   `json:"push_payroll"`
	PushTasks     bool   `json:"push_tasks"`
	PushChat      bool   `json:"push_chat"`
	PushDocuments bool   `json:"push_documents"`
}

func toPreferencesResponse(p *identity.UserPreference) PreferencesResponse {
	return PreferencesResponse{
		Locale:        p.Locale,
		Timezone:      p.Timezone,
		PushLeave:     p.PushLeave,
		PushPayroll:   p.PushPayroll,
		PushTasks:     p.PushTasks,
		PushChat:      p.PushChat,
		PushDocuments: p.PushDocuments,
	}
}
