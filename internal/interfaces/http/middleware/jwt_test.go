package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/auth"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/config"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func newTestSession() auth.Session {
	return auth.Session{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		MemberID: uuid.New(),
		Email:    "ana@example.com",
		Roles:    []string{"employee"},
	}
}

func issueAccessToken(t *testing.T, svc *auth.JWTService, session auth.Session) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(session)
	require.NoError(t, err)
	return pair.AccessToken
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

type stubChecker struct {
	err   error
	calls int
}

func (s *stubChecker) CheckToken(_ context.Context, _ *auth.Claims) error {
	s.calls++
	return s.err
}

func newJWTRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(cfg))
	handler := func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if ok {
			c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"public": true})
	}
	router.GET("/api/v1/me", handler)
	router.GET("/api/v1/chat/ws", handler)
	router.GET("/health", handler)
	router.POST("/api/v1/auth/login", handler)
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	session := newTestSession()
	token := issueAccessToken(t, svc, session)
	router := newJWTRouter(JWTMiddlewareConfig{Tokens: svc})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), session.UserID.String())
}

func TestJWTAuth_MissingToken(t *testing.T) {
	router := newJWTRouter(JWTMiddlewareConfig{Tokens: newTestJWTService(time.Minute)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
}

func TestJWTAuth_WrongScheme(t *testing.T) {
	svc := newTestJWTService(time.Minute)
	router := newJWTRouter(JWTMiddlewareConfig{Tokens: svc})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Basic "+issueAccessToken(t, svc, newTestSession()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	router := newJWTRouter(JWTMiddlewareConfig{Tokens: newTestJWTService(time.Minute)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, decodeResponse(t, rec).Error.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	svc := newTestJWTService(-time.Minute)
	token := issueAccessToken(t, svc, newTestSession())
	router := newJWTRouter(JWTMiddlewareConfig{Tokens: svc})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeTokenExpired, decodeResponse(t, rec).Error.Code)
}

func TestJWTAuth_SkipPaths(t *testing.T) {
	router := newJWTRouter(JWTMiddlewareConfig{
		Tokens:           newTestJWTService(time.Minute),
		SkipPaths:        []string{"/health"},
		SkipPathPrefixes: []string{"/api/v1/auth/"},
	})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/health"},
		{http.MethodPost, "/api/v1/auth/login"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, tc.path)
		assert.Contains(t, rec.Body.String(), "public")
	}
}

func TestJWTAuth_QueryTokenOnlyOnConfiguredPaths(t *testing.T) {
	svc := newTestJWTService(time.Minute)
	token := issueAccessToken(t, svc, newTestSession())
	router := newJWTRouter(JWTMiddlewareConfig{
		Tokens:          svc,
		QueryTokenPaths: []string{"/api/v1/chat/ws"},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me?token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	svc := newTestJWTService(time.Minute)
	token := issueAccessToken(t, svc, newTestSession())
	checker := &stubChecker{err: shared.NewDomainError(shared.CodeUnauthorized, "Session has been signed out")}
	router := newJWTRouter(JWTMiddlewareConfig{Tokens: svc, Checker: checker})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, dto.ErrCodeTokenRevoked, resp.Error.Code)
	assert.Equal(t, "Session has been signed out", resp.Error.Message)
	assert.Equal(t, 1, checker.calls)
}

func TestJWTAuth_CheckerOutageLetsRequestThrough(t *testing.T) {
	svc := newTestJWTService(time.Minute)
	token := issueAccessToken(t, svc, newTestSession())
	router := newJWTRouter(JWTMiddlewareConfig{Tokens: svc, Checker: &stubChecker{err: errors.New("redis down")}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken("abc"))
	assert.Empty(t, bearerToken("Token abc"))
	assert.Empty(t, bearerToken(""))
}
