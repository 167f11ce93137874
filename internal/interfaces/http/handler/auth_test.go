package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	appidentity "github.com/We2399/idea-launcher-pro-sub001/internal/application/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/auth"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/dto"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthUseCases struct {
	mock.Mock
}

func (m *MockAuthUseCases) Register(ctx context.Context, input appidentity.RegisterInput) (*appidentity.SessionResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.SessionResult), args.Error(1)
}

func (m *MockAuthUseCases) Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.SessionResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.SessionResult), args.Error(1)
}

func (m *MockAuthUseCases) Refresh(ctx context.Context, refreshToken string) (*appidentity.SessionResult, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.SessionResult), args.Error(1)
}

func (m *MockAuthUseCases) Logout(ctx context.Context, input appidentity.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthUseCases) ChangePassword(ctx context.Context, p identity.Principal, input appidentity.ChangePasswordInput) error {
	return m.Called(ctx, p, input).Error(0)
}

func (m *MockAuthUseCases) Me(ctx context.Context, p identity.Principal) (*appidentity.SessionUser, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.SessionUser), args.Error(1)
}

func newSessionResult() *appidentity.SessionResult {
	return &appidentity.SessionResult{
		AccessToken:           "access-token",
		RefreshToken:          "refresh-token",
		AccessTokenExpiresAt:  time.Now().Add(15 * time.Minute),
		RefreshTokenExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		TokenType:             "Bearer",
		User: appidentity.SessionUser{
			UserID:           uuid.New(),
			MemberID:         uuid.New(),
			OrganizationID:   uuid.New(),
			OrganizationName: "Harbour Clinic",
			Email:            "amira@example.com",
			DisplayName:      "Amira",
			Roles:            []string{"administrator"},
			Locale:           "en",
		},
	}
}

func setupAuthRouter(p *identity.Principal) (*gin.Engine, *MockAuthUseCases) {
	svc := new(MockAuthUseCases)
	h := NewAuthHandler(svc)
	r := newRouter(p)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/me", h.Me)
	r.PUT("/auth/password", h.ChangePassword)
	return r, svc
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, svc := setupAuthRouter(nil)
		session := newSessionResult()
		svc.On("Login", mock.Anything, appidentity.LoginInput{
			Email:    "amira@example.com",
			Password: "s3cret-pass",
		}).Return(session, nil)

		rec := doRequest(t, r, http.MethodPost, "/auth/login", LoginRequest{
			Email:    "amira@example.com",
			Password: "s3cret-pass",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		data := dataMap(t, decodeResponse(t, rec))
		assert.Equal(t, "access-token", data["access_token"])
		user := data["user"].(map[string]any)
		assert.Equal(t, "Harbour Clinic", user["organization_name"])
		svc.AssertExpectations(t)
	})

	t.Run("invalid email is rejected before the service", func(t *testing.T) {
		r, svc := setupAuthRouter(nil)

		rec := doRequest(t, r, http.MethodPost, "/auth/login", LoginRequest{Email: "nope", Password: "x"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, rec).Error.Code)
		svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		r, svc := setupAuthRouter(nil)
		svc.On("Login", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid email or password"))

		rec := doRequest(t, r, http.MethodPost, "/auth/login", LoginRequest{Email: "amira@example.com", Password: "wrong"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeResponse(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid email or password", resp.Error.Message)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	r, svc := setupAuthRouter(nil)
	svc.On("Register", mock.Anything, mock.MatchedBy(func(in appidentity.RegisterInput) bool {
		return in.OrganizationName == "Harbour Clinic" && in.Email == "amira@example.com"
	})).Return(newSessionResult(), nil)

	rec := doRequest(t, r, http.MethodPost, "/auth/register", RegisterRequest{
		OrganizationName: "Harbour Clinic",
		Email:            "amira@example.com",
		Password:         "long-enough-pass",
		FullName:         "Amira Haddad",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes the presented token", func(t *testing.T) {
		p := newPrincipal(identity.RoleEmployee)
		svc := new(MockAuthUseCases)
		h := NewAuthHandler(svc)
		r := gin.New()
		r.POST("/auth/logout", func(c *gin.Context) {
			middleware.SetPrincipal(c, *p)
			c.Set(middleware.ClaimsKey, &auth.Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ID:        "jti-1",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
				},
			})
		}, h.Logout)

		svc.On("Logout", mock.Anything, mock.MatchedBy(func(in appidentity.LogoutInput) bool {
			return in.UserID == p.UserID && in.TokenJTI == "jti-1" && in.TokenTTL > 9*time.Minute && !in.AllSessions
		})).Return(nil)

		rec := doRequest(t, r, http.MethodPost, "/auth/logout", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("all sessions", func(t *testing.T) {
		p := newPrincipal(identity.RoleEmployee)
		r, svc := setupAuthRouter(p)
		svc.On("Logout", mock.Anything, mock.MatchedBy(func(in appidentity.LogoutInput) bool {
			return in.AllSessions
		})).Return(nil)

		rec := doRequest(t, r, http.MethodPost, "/auth/logout", LogoutRequest{AllSessions: true})

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	p := newPrincipal(identity.RoleHR)
	r, svc := setupAuthRouter(p)
	session := newSessionResult()
	svc.On("Me", mock.Anything, *p).Return(&session.User, nil)

	rec := doRequest(t, r, http.MethodGet, "/auth/me", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "amira@example.com", dataMap(t, decodeResponse(t, rec))["email"])
}

func TestAuthHandler_MeRequiresPrincipal(t *testing.T) {
	r, svc := setupAuthRouter(nil)

	rec := doRequest(t, r, http.MethodGet, "/auth/me", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Me", mock.Anything, mock.Anything)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	p := newPrincipal(identity.RoleEmployee)
	r, svc := setupAuthRouter(p)
	svc.On("ChangePassword", mock.Anything, *p, appidentity.ChangePasswordInput{
		OldPassword: "old-password",
		NewPassword: "new-password-1",
	}).Return(nil)

	rec := doRequest(t, r, http.MethodPut, "/auth/password", ChangePasswordRequest{
		OldPassword: "old-password",
		NewPassword: "new-password-1",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
