package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	appdocument "github.com/We2399/idea-launcher-pro-sub001/internal/application/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDocumentUseCases struct {
	mock.Mock
}

func (m *MockDocumentUseCases) ticket(args mock.Arguments) (*appdocument.UploadTicket, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appdocument.UploadTicket), args.Error(1)
}

func (m *MockDocumentUseCases) document(args mock.Arguments) (*document.Document, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentUseCases) InitiateUpload(ctx context.Context, p identity.Principal, input appdocument.InitiateUploadInput) (*appdocument.UploadTicket, error) {
	return m.ticket(m.Called(ctx, p, input))
}

func (m *MockDocumentUseCases) InitiateReplacement(ctx context.Context, p identity.Principal, id uuid.UUID, input appdocument.InitiateUploadInput) (*appdocument.UploadTicket, error) {
	return m.ticket(m.Called(ctx, p, id, input))
}

func (m *MockDocumentUseCases) ConfirmUpload(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.Document, error) {
	return m.document(m.Called(ctx, p, id))
}

func (m *MockDocumentUseCases) GetDocument(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.Document, error) {
	return m.document(m.Called(ctx, p, id))
}

func (m *MockDocumentUseCases) GetDownloadURL(ctx context.Context, p identity.Principal, id uuid.UUID) (*appdocument.DownloadLink, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appdocument.DownloadLink), args.Error(1)
}

func (m *MockDocumentUseCases) ListDocuments(ctx context.Context, p identity.Principal, input appdocument.ListDocumentsInput) (*shared.Paginated[*document.Document], error) {
	args := m.Called(ctx, p, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*document.Document]), args.Error(1)
}

func (m *MockDocumentUseCases) ListVersions(ctx context.Context, p identity.Principal, id uuid.UUID) ([]*document.Document, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*document.Document), args.Error(1)
}

func (m *MockDocumentUseCases) Approve(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.Document, error) {
	return m.document(m.Called(ctx, p, id))
}

func (m *MockDocumentUseCases) Reject(ctx context.Context, p identity.Principal, id uuid.UUID, reason string) (*document.Document, error) {
	return m.document(m.Called(ctx, p, id, reason))
}

func (m *MockDocumentUseCases) AddComment(ctx context.Context, p identity.Principal, id uuid.UUID, body string) (*document.Comment, error) {
	args := m.Called(ctx, p, id, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Comment), args.Error(1)
}

func (m *MockDocumentUseCases) ListComments(ctx context.Context, p identity.Principal, id uuid.UUID) ([]document.Comment, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.Comment), args.Error(1)
}

func (m *MockDocumentUseCases) ListPendingDiscussions(ctx context.Context, p identity.Principal, mode appdocument.DiscussionMode) ([]appdocument.PendingDiscussion, error) {
	args := m.Called(ctx, p, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appdocument.PendingDiscussion), args.Error(1)
}

func (m *MockDocumentUseCases) ExportZIP(ctx context.Context, p identity.Principal, input appdocument.ExportInput, w io.Writer) (*appdocument.ExportResult, error) {
	args := m.Called(ctx, p, input, w)
	if fn, ok := args.Get(0).(func(io.Writer) (*appdocument.ExportResult, error)); ok {
		return fn(w)
	}
	return nil, args.Error(1)
}

type MockProfileDocumentUseCases struct {
	mock.Mock
}

func (m *MockProfileDocumentUseCases) CreateProfileDocument(ctx context.Context, p identity.Principal, userID uuid.UUID, input document.ProfileDocumentInput) (*document.ProfileDocument, error) {
	args := m.Called(ctx, p, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.ProfileDocument), args.Error(1)
}

func (m *MockProfileDocumentUseCases) UpdateProfileDocument(ctx context.Context, p identity.Principal, id uuid.UUID, input document.ProfileDocumentInput) (*document.ProfileDocument, error) {
	args := m.Called(ctx, p, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.ProfileDocument), args.Error(1)
}

func (m *MockProfileDocumentUseCases) DeleteProfileDocument(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *MockProfileDocumentUseCases) ListProfileDocuments(ctx context.Context, p identity.Principal, userID uuid.UUID) ([]*document.ProfileDocument, error) {
	args := m.Called(ctx, p, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*document.ProfileDocument), args.Error(1)
}

func (m *MockProfileDocumentUseCases) ListExpiringProfileDocuments(ctx context.Context, p identity.Principal, days int) ([]appdocument.ExpiringProfileDocument, error) {
	args := m.Called(ctx, p, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appdocument.ExpiringProfileDocument), args.Error(1)
}

func setupDocumentRouter(p *identity.Principal) (*gin.Engine, *MockDocumentUseCases, *MockProfileDocumentUseCases) {
	documents := new(MockDocumentUseCases)
	profiles := new(MockProfileDocumentUseCases)
	h := NewDocumentHandler(documents, profiles)
	h.now = func() time.Time { return time.Date(2026, 7, 1, 8, 30, 0, 0, time.UTC) }
	r := newRouter(p)
	r.POST("/documents", h.InitiateUpload)
	r.GET("/documents", h.List)
	r.GET("/documents/export", h.Export)
	r.GET("/documents/discussions", h.PendingDiscussions)
	r.GET("/documents/:id", h.Get)
	r.POST("/documents/:id/comments", h.AddComment)
	r.GET("/me/profile-documents", h.ProfileDocuments)
	r.POST("/users/:user_id/profile-documents", h.CreateProfileDocument)
	r.GET("/profile-documents/expiring", h.ExpiringProfileDocuments)
	return r, documents, profiles
}

func newDocument(owner *identity.Principal, status document.Status) *document.Document {
	d := &document.Document{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(owner.TenantID),
		OwnerMemberID:       owner.MemberID,
		OwnerUserID:         owner.UserID,
		Category:            document.CategoryContract,
		Title:               "Employment contract",
		FileName:            "contract.pdf",
		ContentType:         "application/pdf",
		FileSize:            2048,
		StorageKey:          "tenants/x/documents/y/contract.pdf",
		DocVersion:          1,
		Status:              status,
	}
	d.RootID = d.ID
	return d
}

func TestDocumentHandler_InitiateUpload(t *testing.T) {
	p := newPrincipal(identity.RoleEmployee)
	r, documents, _ := setupDocumentRouter(p)
	documents.On("InitiateUpload", mock.Anything, *p, appdocument.InitiateUploadInput{
		Category:    document.CategoryContract,
		Title:       "Employment contract",
		FileName:    "contract.pdf",
		ContentType: "application/pdf",
		FileSize:    2048,
	}).Return(&appdocument.UploadTicket{
		Document:  newDocument(p, document.StatusPendingUpload),
		UploadURL: "https://storage.example.com/put?sig=abc",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil)

	rec := doRequest(t, r, http.MethodPost, "/documents", InitiateUploadRequest{
		Category:    "contract",
		Title:       "Employment contract",
		FileName:    "contract.pdf",
		ContentType: "application/pdf",
		FileSize:    2048,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := dataMap(t, decodeResponse(t, rec))
	assert.Equal(t, "https://storage.example.com/put?sig=abc", data["upload_url"])
	doc := data["document"].(map[string]any)
	assert.Equal(t, "pending_upload", doc["status"])
	assert.NotContains(t, rec.Body.String(), "storage_key")
	assert.NotContains(t, rec.Body.String(), "tenants/x")
	documents.AssertExpectations(t)
}

func TestDocumentHandler_InitiateUploadUnknownCategory(t *testing.T) {
	r, documents, _ := setupDocumentRouter(newPrincipal(identity.RoleEmployee))

	rec := doRequest(t, r, http.MethodPost, "/documents", InitiateUploadRequest{
		Category:    "receipts",
		Title:       "x",
		FileName:    "x.pdf",
		ContentType: "application/pdf",
		FileSize:    10,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	documents.AssertNotCalled(t, "InitiateUpload", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentHandler_ListFilters(t *testing.T) {
	p := newPrincipal(identity.RoleHR)
	r, documents, _ := setupDocumentRouter(p)
	page := shared.NewPaginated([]*document.Document{newDocument(p, document.StatusApproved)}, 1, 1, 20)
	documents.On("ListDocuments", mock.Anything, *p, mock.MatchedBy(func(in appdocument.ListDocumentsInput) bool {
		return in.Category != nil && *in.Category == document.CategoryTax &&
			assert.ObjectsAreEqual([]document.Status{document.StatusApproved, document.StatusRejected}, in.Statuses) &&
			in.IncludeOld && in.Search == "2025"
	})).Return(&page, nil)

	rec := doRequest(t, r, http.MethodGet, "/documents?category=tax&status=approved,rejected&include_old=true&search=2025", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	documents.AssertExpectations(t)
}

func TestDocumentHandler_AddComment(t *testing.T) {
	p := newPrincipal(identity.RoleEmployee)
	r, documents, _ := setupDocumentRouter(p)
	id := uuid.New()
	documents.On("AddComment", mock.Anything, *p, id, "Signed copy attached").Return(&document.Comment{
		ID:           uuid.New(),
		DocumentID:   id,
		AuthorUserID: p.UserID,
		Type:         document.CommentTypeUser,
		Body:         "Signed copy attached",
		CreatedAt:    time.Now(),
	}, nil)

	rec := doRequest(t, r, http.MethodPost, "/documents/"+id.String()+"/comments", CommentRequest{Body: "Signed copy attached"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user", dataMap(t, decodeResponse(t, rec))["type"])
}

func TestDocumentHandler_PendingDiscussions(t *testing.T) {
	p := newPrincipal(identity.RoleHR)
	r, documents, _ := setupDocumentRouter(p)
	documents.On("ListPendingDiscussions", mock.Anything, *p, appdocument.ModeAwaitingAdmin).Return([]appdocument.PendingDiscussion{{
		Document:       newDocument(newPrincipal(identity.RoleEmployee), document.StatusPendingReview),
		State:          document.DiscussionAwaitingAdmin,
		WaitingSeconds: 3600,
	}}, nil)

	rec := doRequest(t, r, http.MethodGet, "/documents/discussions?mode=awaiting_admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeResponse(t, rec).Data.([]any)
	require.Len(t, items, 1)
	assert.Equal(t, 3600.0, items[0].(map[string]any)["waiting_seconds"])

	rec = doRequest(t, r, http.MethodGet, "/documents/discussions?mode=someone", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Export(t *testing.T) {
	p := newPrincipal(identity.RoleHR)
	r, documents, _ := setupDocumentRouter(p)
	documents.On("ExportZIP", mock.Anything, *p, appdocument.ExportInput{ApprovedOnly: true}, mock.Anything).
		Return(func(w io.Writer) (*appdocument.ExportResult, error) {
			_, err := io.WriteString(w, "PK\x05\x06")
			return &appdocument.ExportResult{Selected: 2, Written: 2}, err
		}, nil)

	rec := doRequest(t, r, http.MethodGet, "/documents/export?approved_only=true", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="documents-20260701-083000.zip"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestDocumentHandler_ExportForbiddenBeforeStreaming(t *testing.T) {
	p := newPrincipal(identity.RoleEmployee)
	r, documents, _ := setupDocumentRouter(p)
	other := uuid.New()
	documents.On("ExportZIP", mock.Anything, *p, appdocument.ExportInput{OwnerMemberID: &other}, mock.Anything).
		Return(nil, shared.ErrForbidden)

	rec := doRequest(t, r, http.MethodGet, "/documents/export?owner_member_id="+other.String(), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestDocumentHandler_ExportFailsMidStream(t *testing.T) {
	p := newPrincipal(identity.RoleHR)
	r, documents, _ := setupDocumentRouter(p)
	documents.On("ExportZIP", mock.Anything, *p, mock.Anything, mock.Anything).
		Return(func(w io.Writer) (*appdocument.ExportResult, error) {
			_, _ = io.WriteString(w, "PK\x03\x04")
			return nil, errors.New("storage: connection reset")
		}, nil)

	rec := doRequest(t, r, http.MethodGet, "/documents/export", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PK\x03\x04", rec.Body.String())
}

func TestDocumentHandler_CreateProfileDocument(t *testing.T) {
	p := newPrincipal(identity.RoleHR)
	r, _, profiles := setupDocumentRouter(p)
	userID := uuid.New()
	expires := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)
	profiles.On("CreateProfileDocument", mock.Anything, *p, userID, mock.MatchedBy(func(in document.ProfileDocumentInput) bool {
		return in.Kind == document.ProfileDocumentPassport && in.ExpiresOn != nil && in.ExpiresOn.Equal(expires) && in.IssuedOn == nil
	})).Return(&document.ProfileDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(p.TenantID),
		UserID:              userID,
		Kind:                document.ProfileDocumentPassport,
		Number:              "X1234567",
		ExpiresOn:           &expires,
	}, nil)

	rec := doRequest(t, r, http.MethodPost, "/users/"+userID.String()+"/profile-documents", ProfileDocumentRequest{
		Kind:      "passport",
		Number:    "X1234567",
		ExpiresOn: "2030-01-31",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := dataMap(t, decodeResponse(t, rec))
	assert.Equal(t, "2030-01-31", data["expires_on"])
	assert.NotContains(t, data, "issued_on")
	profiles.AssertExpectations(t)
}

func TestDocumentHandler_OwnProfileDocuments(t *testing.T) {
	p := newPrincipal(identity.RoleEmployee)
	r, _, profiles := setupDocumentRouter(p)
	profiles.On("ListProfileDocuments", mock.Anything, *p, p.UserID).Return([]*document.ProfileDocument{}, nil)

	rec := doRequest(t, r, http.MethodGet, "/me/profile-documents", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	profiles.AssertExpectations(t)
}

func TestDocumentHandler_ExpiringProfileDocuments(t *testing.T) {
	p := newPrincipal(identity.RoleHR)
	r, _, profiles := setupDocumentRouter(p)
	profiles.On("ListExpiringProfileDocuments", mock.Anything, *p, 30).Return([]appdocument.ExpiringProfileDocument{}, nil)
	profiles.On("ListExpiringProfileDocuments", mock.Anything, *p, 90).Return([]appdocument.ExpiringProfileDocument{}, nil)

	assert.Equal(t, http.StatusOK, doRequest(t, r, http.MethodGet, "/profile-documents/expiring", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(t, r, http.MethodGet, "/profile-documents/expiring?days=90", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, r, http.MethodGet, "/profile-documents/expiring?days=0", nil).Code)
	profiles.AssertExpectations(t)
}
