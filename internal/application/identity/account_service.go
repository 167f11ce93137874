package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const avatarURLTTL = 15 * time.Minute

var avatarContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AccountService manages profiles, avatars, devices and preferences
type AccountService struct {
	profiles    identity.ProfileRepository
	devices     identity.DeviceTokenRepository
	preferences identity.PreferenceRepository
	avatars     AvatarStorage
	locales     *LocaleMatcher
	logger      *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	dir Directory,
	devices identity.DeviceTokenRepository,
	avatars AvatarStorage,
	locales *LocaleMatcher,
	logger *zap.Logger,
) *AccountService {
	if locales == nil {
		locales = NewLocaleMatcher(nil)
	}
	return &AccountService{
		profiles:    dir.Profiles,
		devices:     devices,
		preferences: dir.Preferences,
		avatars:     avatars,
		locales:     locales,
		logger:      logger,
	}
}

// GetProfile returns a profile. Employees may only read their own.
func (s *AccountService) GetProfile(ctx context.Context, p identity.Principal, userID uuid.UUID) (*identity.Profile, error) {
	if err := p.RequireSelfOr(userID, identity.RoleHR); err != nil {
		return nil, err
	}
	return s.profiles.FindByUserID(ctx, userID)
}

// UpdateProfile changes a profile (self, or hr+ for others)
func (s *AccountService) UpdateProfile(ctx context.Context, p identity.Principal, userID uuid.UUID, input UpdateProfileInput) (*identity.Profile, error) {
	if err := p.RequireSelfOr(userID, identity.RoleHR); err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := profile.Apply(identity.ProfileUpdate{
		FullName:              input.FullName,
		PreferredName:         input.PreferredName,
		Phone:                 input.Phone,
		Address:               input.Address,
		DateOfBirth:           input.DateOfBirth,
		EmergencyContactName:  input.EmergencyContactName,
		EmergencyContactPhone: input.EmergencyContactPhone,
	}); err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	s.logger.Info("Profile updated",
		zap.String("user_id", userID.String()),
		zap.String("updated_by", p.UserID.String()))
	return profile, nil
}

// AvatarUploadURL issues a presigned URL for a new avatar of the caller
func (s *AccountService) AvatarUploadURL(ctx context.Context, p identity.Principal, contentType string) (*AvatarUpload, error) {
	if s.avatars == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Avatar storage is not configured")
	}
	ext, ok := avatarContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Avatar must be a JPEG, PNG or WebP image")
	}
	key := fmt.Sprintf("%s%s.%s", avatarPrefix(p), uuid.New().String(), ext)
	url, expiresAt, err := s.avatars.GenerateUploadURL(ctx, key, contentType, avatarURLTTL)
	if err != nil {
		return nil, err
	}
	return &AvatarUpload{UploadURL: url, StorageKey: key, ExpiresAt: expiresAt}, nil
}

// ConfirmAvatar points the caller's profile at an uploaded avatar
func (s *AccountService) ConfirmAvatar(ctx context.Context, p identity.Principal, storageKey string) (*identity.Profile, error) {
	if s.avatars == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Avatar storage is not configured")
	}
	if !strings.HasPrefix(storageKey, avatarPrefix(p)) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Storage key does not belong to this account")
	}
	exists, err := s.avatars.ObjectExists(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Avatar has not been uploaded yet")
	}
	profile, err := s.profiles.FindByUserID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	profile.SetAvatar(storageKey)
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// AvatarURL returns a short-lived download URL for a user's avatar, or
// an empty string when none is set
func (s *AccountService) AvatarURL(ctx context.Context, p identity.Principal, userID uuid.UUID) (string, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile.AvatarKey == "" || s.avatars == nil {
		return "", nil
	}
	url, _, err := s.avatars.GenerateDownloadURL(ctx, profile.AvatarKey, avatarURLTTL)
	return url, err
}

func avatarPrefix(p identity.Principal) string {
	return fmt.Sprintf("tenants/%s/avatars/%s/", p.TenantID, p.UserID)
}

// RegisterDevice stores a push token for the caller. A token seen on
// another account moves to the caller.
func (s *AccountService) RegisterDevice(ctx context.Context, p identity.Principal, input RegisterDeviceInput) (*identity.DeviceToken, error) {
	device, err := identity.NewDeviceToken(p.TenantID, p.UserID, identity.Platform(strings.ToLower(input.Platform)), input.Token)
	if err != nil {
		return nil, err
	}
	if err := s.devices.Upsert(ctx, device); err != nil {
		return nil, err
	}
	s.logger.Debug("Device registered",
		zap.String("user_id", p.UserID.String()),
		zap.String("platform", string(device.Platform)))
	return device, nil
}

// UnregisterDevice removes one of the caller's push tokens
func (s *AccountService) UnregisterDevice(ctx context.Context, p identity.Principal, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Device token is required")
	}
	return s.devices.DeleteForUser(ctx, p.UserID, token)
}

// GetPreferences returns the caller's preferences, falling back to the
// defaults when none were saved
func (s *AccountService) GetPreferences(ctx context.Context, p identity.Principal) (*identity.UserPreference, error) {
	pref, err := s.preferences.FindByUserID(ctx, p.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		return identity.DefaultUserPreference(p.TenantID, p.UserID, s.locales.Locales()[0]), nil
	}
	return pref, err
}

// UpdatePreferences changes the caller's locale, timezone and push toggles
func (s *AccountService) UpdatePreferences(ctx context.Context, p identity.Principal, input UpdatePreferencesInput) (*identity.UserPreference, error) {
	pref, err := s.GetPreferences(ctx, p)
	if err != nil {
		return nil, err
	}
	if input.Locale != nil {
		pref.Locale = s.locales.Match(*input.Locale)
	}
	if input.Timezone != nil {
		tz := strings.TrimSpace(*input.Timezone)
		if _, err := time.LoadLocation(tz); err != nil || tz == "" {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown timezone: "+tz)
		}
		pref.Timezone = tz
	}
	setBool(&pref.PushLeave, input.PushLeave)
	setBool(&pref.PushPayroll, input.PushPayroll)
	setBool(&pref.PushTasks, input.PushTasks)
	setBool(&pref.PushChat, input.PushChat)
	setBool(&pref.PushDocuments, input.PushDocuments)
	pref.UpdatedAt = time.Now()

	if err := s.preferences.Save(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
