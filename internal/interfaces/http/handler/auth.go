package handler

import (
	"context"

	appidentity "github.com/We2399/idea-launcher-pro-sub001/internal/application/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthUseCases is what the auth handler needs from the auth service
type AuthUseCases interface {
	Register(ctx context.Context, input appidentity.RegisterInput) (*appidentity.SessionResult, error)
	Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.SessionResult, error)
	Refresh(ctx context.Context, refreshToken string) (*appidentity.SessionResult, error)
	Logout(ctx context.Context, input appidentity.LogoutInput) error
	ChangePassword(ctx context.Context, p identity.Principal, input appidentity.ChangePasswordInput) error
	Me(ctx context.Context, p identity.Principal) (*appidentity.SessionUser, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	auth AuthUseCases
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthUseCases) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register opens an organization and signs its first administrator in
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.auth.Register(c.Request.Context(), appidentity.RegisterInput{
		OrganizationName: req.OrganizationName,
		Slug:             req.Slug,
		Email:            req.Email,
		Password:         req.Password,
		FullName:         req.FullName,
		Locale:           req.Locale,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSessionResponse(result))
}

// Login authenticates with email and password
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.auth.Login(c.Request.Context(), appidentity.LoginInput{
		Email:            req.Email,
		Password:         req.Password,
		OrganizationSlug: req.OrganizationSlug,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(result))
}

// Refresh exchanges a refresh token for a new pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(result))
}

// Logout revokes the current access token, or every session on request
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req LogoutRequest
	if c.Request.ContentLength > 0 && !h.bind(c, &req) {
		return
	}
	input := appidentity.LogoutInput{UserID: p.UserID, AllSessions: req.AllSessions}
	if claims, ok := middleware.GetClaims(c); ok {
		input.TokenJTI = claims.ID
		input.TokenTTL = claims.RemainingTTL()
	}
	if err := h.auth.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Signed out"})
}

// Me returns the signed in user
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	user, err := h.auth.Me(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionUserResponse(user))
}

// ChangePassword changes the caller's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}
	err := h.auth.ChangePassword(c.Request.Context(), p, appidentity.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Password changed, please sign in again"})
}
