package identity

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterInput contains the input for creating an organization and its first administrator
type RegisterInput struct {
	OrganizationName string
	Slug             string
	Email            string
	Password         string
	FullName         string
	Locale           string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email            string
	Password         string
	OrganizationSlug string
}

// SessionResult contains the token pair and the session identity
type SessionResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  SessionUser
}

// SessionUser describes who the session belongs to
type SessionUser struct {
	UserID           uuid.UUID
	MemberID         uuid.UUID
	OrganizationID   uuid.UUID
	OrganizationName string
	Email            string
	DisplayName      string
	Roles            []string
	Senior           bool
	Locale           string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	// TokenTTL is how long the access token would still be valid
	TokenTTL time.Duration
	// AllSessions revokes every token issued to the user so far
	AllSessions bool
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

// OrganizationSettingsInput carries optional organization settings changes
type OrganizationSettingsInput struct {
	Name          *string
	DefaultLocale *string
	Timezone      *string
	WorkWeek      []time.Weekday
	Currency      *string
}

// MemberView is a member joined with the profile
type MemberView struct {
	Member  *identity.Member
	Profile *identity.Profile
	Email   string
	Roles   []string
	Senior  bool
}

// ListMembersInput filters the member directory
type ListMembersInput struct {
	Keyword    string
	Status     string
	Department string
	ManagerID  *uuid.UUID
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// UpdateMemberInput carries employment detail changes
type UpdateMemberInput struct {
	EmployeeNumber *string
	Department     *string
	Position       *string
	ManagerID      *uuid.UUID
	ClearManager   bool
	HiredAt        *time.Time
}

// AssignRoleInput grants a role
type AssignRoleInput struct {
	UserID uuid.UUID
	Role   string
	Senior bool
}

// InviteInput creates an invitation
type InviteInput struct {
	Email string
	Role  string
}

// InvitationResult is returned to the inviter
type InvitationResult struct {
	Invitation *identity.Invitation
	AcceptURL  string
	Reissued   bool
	MailSent   bool
}

// AcceptInvitationInput accepts an invitation
type AcceptInvitationInput struct {
	Token    string
	Password string
	FullName string
	Locale   string
}

// UpdateProfileInput carries profile changes
type UpdateProfileInput struct {
	FullName              *string
	PreferredName         *string
	Phone                 *string
	Address               *string
	DateOfBirth           *time.Time
	EmergencyContactName  *string
	EmergencyContactPhone *string
}

// AvatarUpload is a presigned avatar upload
type AvatarUpload struct {
	UploadURL  string
	StorageKey string
	ExpiresAt  time.Time
}

// RegisterDeviceInput registers an FCM token
type RegisterDeviceInput struct {
	Platform string
	Token    string
}

// UpdatePreferencesInput carries preference changes
type UpdatePreferencesInput struct {
	Locale        *string
	Timezone      *string
	PushLeave     *bool
	PushPayroll   *bool
	PushTasks     *bool
	PushChat      *bool
	PushDocuments *bool
}
