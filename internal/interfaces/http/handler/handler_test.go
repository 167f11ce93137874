package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/dto"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newPrincipal(roles ...identity.Role) *identity.Principal {
	return &identity.Principal{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		MemberID: uuid.New(),
		Roles:    identity.RoleSetOf(roles...),
	}
}

// newRouter returns an engine that authenticates every request as p. A nil
// principal leaves the request anonymous.
func newRouter(p *identity.Principal) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if p != nil {
			middleware.SetPrincipal(c, *p)
		}
		c.Next()
	})
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func dataMap(t *testing.T, resp dto.Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}
	r := newRouter(nil)
	r.GET("/domain", func(c *gin.Context) { h.HandleError(c, shared.ErrLeaveOverlap) })
	r.GET("/internal", func(c *gin.Context) { h.HandleError(c, errors.New("pq: connection refused")) })

	rec := doRequest(t, r, http.MethodGet, "/domain", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, dto.ErrCodeLeaveOverlap, decodeResponse(t, rec).Error.Code)

	rec = doRequest(t, r, http.MethodGet, "/internal", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "pq")
}

func TestBaseHandler_PrincipalRequired(t *testing.T) {
	h := &BaseHandler{}
	r := newRouter(nil)
	r.GET("/me", func(c *gin.Context) {
		if _, ok := h.principal(c); ok {
			c.Status(http.StatusOK)
		}
	})

	rec := doRequest(t, r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, rec).Error.Code)
}

func TestBaseHandler_UUIDParam(t *testing.T) {
	h := &BaseHandler{}
	r := newRouter(nil)
	r.GET("/things/:id", func(c *gin.Context) {
		if _, ok := h.uuidParam(c, "id"); ok {
			c.Status(http.StatusOK)
		}
	})

	rec := doRequest(t, r, http.MethodGet, "/things/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid id", decodeResponse(t, rec).Error.Message)

	rec = doRequest(t, r, http.MethodGet, "/things/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPaginate(t *testing.T) {
	h := &BaseHandler{}
	r := newRouter(nil)
	r.GET("/numbers", func(c *gin.Context) {
		page := shared.NewPaginated([]int{1, 2, 3}, 23, 2, 10)
		paginate(h, c, &page, func(n int) int { return n * 10 })
	})

	rec := doRequest(t, r, http.MethodGet, "/numbers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, []any{10.0, 20.0, 30.0}, resp.Data)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(23), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestMapSlice_NeverNil(t *testing.T) {
	out := mapSlice([]int(nil), func(n int) string { return "x" })
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"pending", "approved"}, splitList("pending, approved,,"))
}

func TestParseOptionalHelpers(t *testing.T) {
	id, err := parseOptionalUUID("")
	assert.NoError(t, err)
	assert.Nil(t, id)

	_, err = parseOptionalUUID("nope")
	assert.Error(t, err)

	d, err := parseOptionalDate("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", *formatDate(d))

	_, err = parseOptionalDate("02/03/2026")
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, shared.CodeInvalidInput, de.Code)

	assert.Nil(t, formatDate(nil))
}
