package handler

import (
	"context"
	"net/http"

	appidentity "github.com/We2399/idea-launcher-pro-sub001/internal/application/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountUseCases is what the account handler needs from the account service
type AccountUseCases interface {
	GetProfile(ctx context.Context, p identity.Principal, userID uuid.UUID) (*identity.Profile, error)
	UpdateProfile(ctx context.Context, p identity.Principal, userID uuid.UUID, input appidentity.UpdateProfileInput) (*identity.Profile, error)
	AvatarUploadURL(ctx context.Context, p identity.Principal, contentType string) (*appidentity.AvatarUpload, error)
	ConfirmAvatar(ctx context.Context, p identity.Principal, storageKey string) (*identity.Profile, error)
	AvatarURL(ctx context.Context, p identity.Principal, userID uuid.UUID) (string, error)
	RegisterDevice(ctx context.Context, p identity.Principal, input appidentity.RegisterDeviceInput) (*identity.DeviceToken, error)
	UnregisterDevice(ctx context.Context, p identity.Principal, token string) error
	GetPreferences(ctx context.Context, p identity.Principal) (*identity.UserPreference, error)
	UpdatePreferences(ctx context.Context, p identity.Principal, input appidentity.UpdatePreferencesInput) (*identity.UserPreference, error)
}

// AccountHandler serves profiles, avatars, push devices and preferences
type AccountHandler struct {
	BaseHandler
	accounts AccountUseCases
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts AccountUseCases) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// targetUser resolves a :user_id path parameter, or the caller on /me routes
func (h *AccountHandler) targetUser(c *gin.Context, p identity.Principal) (uuid.UUID, bool) {
	if c.Param("user_id") == "" {
		return p.UserID, true
	}
	return h.uuidParam(c, "user_id")
}

// GetProfile returns a profile. Employees may only read their own.
func (h *AccountHandler) GetProfile(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	userID, ok := h.targetUser(c, p)
	if !ok {
		return
	}
	profile, err := h.accounts.GetProfile(c.Request.Context(), p, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// UpdateProfile edits a profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	userID, ok := h.targetUser(c, p)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.bind(c, &req) {
		return
	}
	input := appidentity.UpdateProfileInput{
		FullName:              req.FullName,
		PreferredName:         req.PreferredName,
		Phone:                 req.Phone,
		Address:               req.Address,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
	}
	if req.DateOfBirth != nil {
		dob, err := parseOptionalDate(*req.DateOfBirth)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		input.DateOfBirth = dob
	}
	profile, err := h.accounts.UpdateProfile(c.Request.Context(), p, userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// AvatarUpload presigns an avatar upload for the caller
func (h *AccountHandler) AvatarUpload(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req AvatarUploadRequest
	if !h.bind(c, &req) {
		return
	}
	upload, err := h.accounts.AvatarUploadURL(c.Request.Context(), p, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, AvatarUploadResponse{
		UploadURL:  upload.UploadURL,
		StorageKey: upload.StorageKey,
		ExpiresAt:  upload.ExpiresAt,
	})
}

// ConfirmAvatar attaches an uploaded avatar to the caller's profile
func (h *AccountHandler) ConfirmAvatar(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req ConfirmAvatarRequest
	if !h.bind(c, &req) {
		return
	}
	profile, err := h.accounts.ConfirmAvatar(c.Request.Context(), p, req.StorageKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// Avatar redirects to a short lived download URL of a user's avatar
func (h *AccountHandler) Avatar(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	userID, ok := h.targetUser(c, p)
	if !ok {
		return
	}
	url, err := h.accounts.AvatarURL(c.Request.Context(), p, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// RegisterDevice stores a push token for the caller
func (h *AccountHandler) RegisterDevice(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req RegisterDeviceRequest
	if !h.bind(c, &req) {
		return
	}
	device, err := h.accounts.RegisterDevice(c.Request.Context(), p, appidentity.RegisterDeviceInput{
		Platform: req.Platform,
		Token:    req.Token,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, DeviceResponse{
		ID:         device.ID,
		Platform:   device.Platform,
		LastSeenAt: device.LastSeenAt,
		CreatedAt:  device.CreatedAt,
	})
}

// UnregisterDevice drops a push token, typically on sign out
func (h *AccountHandler) UnregisterDevice(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req UnregisterDeviceRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.accounts.UnregisterDevice(c.Request.Context(), p, req.Token); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetPreferences returns the caller's preferences
func (h *AccountHandler) GetPreferences(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	prefs, err := h.accounts.GetPreferences(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPreferencesResponse(prefs))
}

// UpdatePreferences changes locale, timezone and push opt-ins
func (h *AccountHandler) UpdatePreferences(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req UpdatePreferencesRequest
	if !h.bind(c, &req) {
		return
	}
	prefs, err := h.accounts.UpdatePreferences(c.Request.Context(), p, appidentity.UpdatePreferencesInput{
		Locale:        req.Locale,
		Timezone:      req.Timezone,
		PushLeave:     req.PushLeave,
		PushPayroll:   req.PushPayroll,
		PushTasks:     req.PushTasks,
		PushChat:      req.PushChat,
		PushDocuments: req.PushDocuments,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPreferencesResponse(prefs))
}
