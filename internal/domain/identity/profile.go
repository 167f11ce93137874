package identity

import (
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Profile holds the personal details of a user within an organization
type Profile struct {
	shared.TenantAggregateRoot
	UserID                uuid.UUID
	FullName              string
	PreferredName         string
	Phone                 string
	Address               string
	DateOfBirth           *time.Time
	EmergencyContactName  string
	EmergencyContactPhone string
	AvatarKey             string
}

// NewProfile creates a profile for a user
func NewProfile(tenantID, userID uuid.UUID, fullName string) (*Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Full name cannot be empty")
	}
	if len(fullName) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Full name cannot exceed 200 characters")
	}
	return &Profile{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		FullName:            fullName,
	}, nil
}

// ProfileUpdate carries optional profile changes
type ProfileUpdate struct {
	FullName              *string
	PreferredName         *string
	Phone                 *string
	Address               *string
	DateOfBirth           *time.Time
	EmergencyContactName  *string
	EmergencyContactPhone *string
}

// Apply applies the changes
func (p *Profile) Apply(u ProfileUpdate) error {
	if u.FullName != nil {
		name := strings.TrimSpace(*u.FullName)
		if name == "" || len(name) > 200 {
			return shared.NewDomainError(shared.CodeInvalidInput, "Full name must be 1-200 characters")
		}
		p.FullName = name
	}
	if u.Phone != nil {
		if len(*u.Phone) > 50 {
			return shared.NewDomainError(shared.CodeInvalidInput, "Phone cannot exceed 50 characters")
		}
		p.Phone = strings.TrimSpace(*u.Phone)
	}
	if u.DateOfBirth != nil {
		dob := shared.DateOnly(*u.DateOfBirth)
		if dob.After(time.Now()) {
			return shared.NewDomainError(shared.CodeInvalidInput, "Date of birth cannot be in the future")
		}
		p.DateOfBirth = &dob
	}
	if u.PreferredName != nil {
		p.PreferredName = strings.TrimSpace(*u.PreferredName)
	}
	if u.Address != nil {
		p.Address = strings.TrimSpace(*u.Address)
	}
	if u.EmergencyContactName != nil {
		p.EmergencyContactName = strings.TrimSpace(*u.EmergencyContactName)
	}
	if u.EmergencyContactPhone != nil {
		p.EmergencyContactPhone = strings.TrimSpace(*u.EmergencyContactPhone)
	}
	p.IncrementVersion()
	return nil
}

// SetAvatar records the storage key of the avatar image
func (p *Profile) SetAvatar(key string) {
	p.AvatarKey = key
	p.IncrementVersion()
}

// DisplayName returns the preferred name when set
func (p *Profile) DisplayName() string {
	if p.PreferredName != "" {
		return p.PreferredName
	}
	return p.FullName
}
