package identity

import (
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Platform is the client platform of a push token
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// DeviceToken is an FCM registration token of one device
type DeviceToken struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	UserID     uuid.UUID
	Platform   Platform
	Token      string
	LastSeenAt time.Time
	CreatedAt  time.Time
}

// NewDeviceToken validates and creates a device token
func NewDeviceToken(tenantID, userID uuid.UUID, platform Platform, token string) (*DeviceToken, error) {
	switch platform {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
	default:
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Platform must be ios, android or web")
	}
	token = strings.TrimSpace(token)
	if token == "" || len(token) > 4096 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Device token must be 1-4096 characters")
	}
	now := time.Now()
	return &DeviceToken{
		ID:         uuid.New(),
		TenantID:   tenantID,
		UserID:     userID,
		Platform:   platform,
		Token:      token,
		LastSeenAt: now,
		CreatedAt:  now,
	}, nil
}

// NotificationCategory groups push notifications for preference toggles
type NotificationCategory string

const (
	CategoryLeave    NotificationCategory = "leave"
	CategoryPayroll  NotificationCategory = "payroll"
	CategoryTasks    NotificationCategory = "tasks"
	CategoryChat     NotificationCategory = "chat"
	CategoryDocument NotificationCategory = "documents"
	CategoryGeneral  NotificationCategory = "general"
)

// UserPreference stores per-user locale and notification settings
type UserPreference struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	UserID        uuid.UUID
	Locale        string
	Timezone      string
	PushLeave     bool
	PushPayroll   bool
	PushTasks     bool
	PushChat      bool
	PushDocuments bool
	UpdatedAt     time.Time
}

// DefaultUserPreference enables every push category
func DefaultUserPreference(tenantID, userID uuid.UUID, locale string) *UserPreference {
	return &UserPreference{
		ID:            uuid.New(),
		TenantID:      tenantID,
		UserID:        userID,
		Locale:        locale,
		Timezone:      "UTC",
		PushLeave:     true,
		PushPayroll:   true,
		PushTasks:     true,
		PushChat:      true,
		PushDocuments: true,
		UpdatedAt:     time.Now(),
	}
}

// Allows reports whether a push in the category should be delivered
func (p *UserPreference) Allows(category NotificationCategory) bool {
	switch category {
	case CategoryLeave:
		return p.PushLeave
	case CategoryPayroll:
		return p.PushPayroll
	case CategoryTasks:
		return p.PushTasks
	case CategoryChat:
		return p.PushChat
	case CategoryDocument:
		return p.PushDocuments
	}
	return true
}
