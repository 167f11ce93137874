package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAccountService() (*AccountService, *directoryMocks, *MockDeviceTokenRepository, *MockAvatarStorage) {
	mocks, dir := newDirectoryMocks()
	devices := new(MockDeviceTokenRepository)
	avatars := new(MockAvatarStorage)
	return NewAccountService(dir, devices, avatars, nil, zap.NewNop()), mocks, devices, avatars
}

func TestAccountService_UpdateProfile(t *testing.T) {
	tenantID := uuid.New()
	svc, m, _, _ := newAccountService()
	owner := principal(tenantID, identity.RoleEmployee)
	profile, err := identity.NewProfile(tenantID, owner.UserID, "Old Name")
	require.NoError(t, err)
	m.profiles.On("FindByUserID", mock.Anything, owner.UserID).Return(profile, nil)
	m.profiles.On("Update", mock.Anything, profile).Return(nil)

	name := "New Name"
	got, err := svc.UpdateProfile(context.Background(), owner, owner.UserID, UpdateProfileInput{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.FullName)

	_, err = svc.UpdateProfile(context.Background(), principal(tenantID, identity.RoleEmployee), owner.UserID, UpdateProfileInput{FullName: &name})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.UpdateProfile(context.Background(), principal(tenantID, identity.RoleHR), owner.UserID, UpdateProfileInput{FullName: &name})
	assert.NoError(t, err)
}

func TestAccountService_Avatar(t *testing.T) {
	tenantID := uuid.New()
	svc, m, _, avatars := newAccountService()
	p := principal(tenantID, identity.RoleEmployee)

	_, err := svc.AvatarUploadURL(context.Background(), p, "application/pdf")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	expires := time.Now().Add(15 * time.Minute)
	avatars.On("GenerateUploadURL", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "tenants/"+tenantID.String()+"/avatars/"+p.UserID.String()+"/") &&
			strings.HasSuffix(key, ".png")
	}), "image/png", avatarURLTTL).Return("https://s3/upload", expires, nil)

	upload, err := svc.AvatarUploadURL(context.Background(), p, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://s3/upload", upload.UploadURL)

	_, err = svc.ConfirmAvatar(context.Background(), p, "tenants/other/avatars/x.png")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	profile, _ := identity.NewProfile(tenantID, p.UserID, "Me")
	avatars.On("ObjectExists", mock.Anything, upload.StorageKey).Return(true, nil)
	m.profiles.On("FindByUserID", mock.Anything, p.UserID).Return(profile, nil)
	m.profiles.On("Update", mock.Anything, profile).Return(nil)

	got, err := svc.ConfirmAvatar(context.Background(), p, upload.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, upload.StorageKey, got.AvatarKey)
}

func TestAccountService_Devices(t *testing.T) {
	svc, _, devices, _ := newAccountService()
	p := principal(uuid.New(), identity.RoleEmployee)

	_, err := svc.RegisterDevice(context.Background(), p, RegisterDeviceInput{Platform: "blackberry", Token: "abc"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	devices.On("Upsert", mock.Anything, mock.MatchedBy(func(d *identity.DeviceToken) bool {
		return d.Platform == identity.PlatformIOS && d.UserID == p.UserID
	})).Return(nil)
	_, err = svc.RegisterDevice(context.Background(), p, RegisterDeviceInput{Platform: "iOS", Token: "fcm-token"})
	require.NoError(t, err)

	devices.On("DeleteForUser", mock.Anything, p.UserID, "fcm-token").Return(nil)
	require.NoError(t, svc.UnregisterDevice(context.Background(), p, " fcm-token "))
	assert.ErrorIs(t, svc.UnregisterDevice(context.Background(), p, ""), shared.ErrInvalidInput)
}

func TestAccountService_Preferences(t *testing.T) {
	svc, m, _, _ := newAccountService()
	p := principal(uuid.New(), identity.RoleEmployee)
	m.prefs.On("FindByUserID", mock.Anything, p.UserID).Return(nil, shared.ErrNotFound)
	m.prefs.On("Save", mock.Anything, mock.AnythingOfType("*identity.UserPreference")).Return(nil)

	off := false
	locale := "id-ID"
	tz := "Asia/Jakarta"
	pref, err := svc.UpdatePreferences(context.Background(), p, UpdatePreferencesInput{
		Locale: &locale, Timezone: &tz, PushChat: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, "id", pref.Locale)
	assert.Equal(t, "Asia/Jakarta", pref.Timezone)
	assert.False(t, pref.Allows(identity.CategoryChat))
	assert.True(t, pref.Allows(identity.CategoryLeave))

	bad := "Mars/Olympus"
	_, err = svc.UpdatePreferences(context.Background(), p, UpdatePreferencesInput{Timezone: &bad})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestLocaleMatcher(t *testing.T) {
	m := NewLocaleMatcher(nil)
	assert.Equal(t, "en", m.Match(""))
	assert.Equal(t, "en", m.Match("en-GB,en;q=0.8"))
	assert.Equal(t, "zh-Hant", m.Match("zh-Hant"))
	assert.Equal(t, "fil", m.Match("fil-PH"))
	assert.Equal(t, "en", m.Match("not a locale!!"))
	assert.True(t, m.Supported("id"))
	assert.False(t, m.Supported("fr"))
	assert.Len(t, m.Locales(), 5)
}
