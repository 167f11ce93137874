package handler

import (
	"context"
	"fmt"
	"io"
	"time"

	appdocument "github.com/We2399/idea-launcher-pro-sub001/internal/application/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentUseCases covers uploads, review, discussion and export
type DocumentUseCases interface {
	InitiateUpload(ctx context.Context, p identity.Principal, input appdocument.InitiateUploadInput) (*appdocument.UploadTicket, error)
	InitiateReplacement(ctx context.Context, p identity.Principal, id uuid.UUID, input appdocument.InitiateUploadInput) (*appdocument.UploadTicket, error)
	ConfirmUpload(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.Document, error)
	GetDocument(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.Document, error)
	GetDownloadURL(ctx context.Context, p identity.Principal, id uuid.UUID) (*appdocument.DownloadLink, error)
	ListDocuments(ctx context.Context, p identity.Principal, input appdocument.ListDocumentsInput) (*shared.Paginated[*document.Document], error)
	ListVersions(ctx context.Context, p identity.Principal, id uuid.UUID) ([]*document.Document, error)
	Approve(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.Document, error)
	Reject(ctx context.Context, p identity.Principal, id uuid.UUID, reason string) (*document.Document, error)
	AddComment(ctx context.Context, p identity.Principal, id uuid.UUID, body string) (*document.Comment, error)
	ListComments(ctx context.Context, p identity.Principal, id uuid.UUID) ([]document.Comment, error)
	ListPendingDiscussions(ctx context.Context, p identity.Principal, mode appdocument.DiscussionMode) ([]appdocument.PendingDiscussion, error)
	ExportZIP(ctx context.Context, p identity.Principal, input appdocument.ExportInput, w io.Writer) (*appdocument.ExportResult, error)
}

// ProfileDocumentUseCases manages identity documents held on profiles
type ProfileDocumentUseCases interface {
	CreateProfileDocument(ctx context.Context, p identity.Principal, userID uuid.UUID, input document.ProfileDocumentInput) (*document.ProfileDocument, error)
	UpdateProfileDocument(ctx context.Context, p identity.Principal, id uuid.UUID, input document.ProfileDocumentInput) (*document.ProfileDocument, error)
	DeleteProfileDocument(ctx context.Context, p identity.Principal, id uuid.UUID) error
	ListProfileDocuments(ctx context.Context, p identity.Principal, userID uuid.UUID) ([]*document.ProfileDocument, error)
	ListExpiringProfileDocuments(ctx context.Context, p identity.Principal, days int) ([]appdocument.ExpiringProfileDocument, error)
}

// DocumentHandler serves employee documents and profile documents
type DocumentHandler struct {
	BaseHandler
	documents DocumentUseCases
	profiles  ProfileDocumentUseCases
	now       func() time.Time
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents DocumentUseCases, profiles ProfileDocumentUseCases) *DocumentHandler {
	return &DocumentHandler{documents: documents, profiles: profiles, now: time.Now}
}

// InitiateUpload creates a pending document and returns its upload URL
func (h *DocumentHandler) InitiateUpload(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req InitiateUploadRequest
	if !h.bind(c, &req) {
		return
	}
	ticket, err := h.documents.InitiateUpload(c.Request.Context(), p, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toUploadTicketResponse(ticket))
}

// InitiateReplacement starts a new version of an existing document
func (h *DocumentHandler) InitiateReplacement(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req InitiateUploadRequest
	if !h.bind(c, &req) {
		return
	}
	ticket, err := h.documents.InitiateReplacement(c.Request.Context(), p, id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toUploadTicketResponse(ticket))
}

// ConfirmUpload checks the stored object and queues the version for review
func (h *DocumentHandler) ConfirmUpload(c *gin.Context) {
	h.document(c, h.documents.ConfirmUpload)
}

// Get returns one document version
func (h *DocumentHandler) Get(c *gin.Context) {
	h.document(c, h.documents.GetDocument)
}

// Approve accepts a version under review
func (h *DocumentHandler) Approve(c *gin.Context) {
	h.document(c, h.documents.Approve)
}

// Reject declines a version under review
func (h *DocumentHandler) Reject(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if !h.bind(c, &req) {
		return
	}
	d, err := h.documents.Reject(c.Request.Context(), p, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDocumentResponse(d))
}

func (h *DocumentHandler) document(c *gin.Context, fn func(context.Context, identity.Principal, uuid.UUID) (*document.Document, error)) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	d, err := fn(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDocumentResponse(d))
}

// Download returns a short lived link to the stored file
func (h *DocumentHandler) Download(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	link, err := h.documents.GetDownloadURL(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}

// List returns current document versions unless include_old is set
func (h *DocumentHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q ListDocumentsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	input := appdocument.ListDocumentsInput{
		IncludeOld: q.IncludeOld,
		Search:     q.Search,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	input.OwnerMemberID, _ = parseOptionalUUID(q.OwnerMemberID)
	if q.Category != "" {
		category := document.Category(q.Category)
		input.Category = &category
	}
	for _, s := range splitList(q.Status) {
		input.Statuses = append(input.Statuses, document.Status(s))
	}
	page, err := h.documents.ListDocuments(c.Request.Context(), p, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginate(&h.BaseHandler, c, page, toDocumentResponse)
}

// Versions returns every version of a document, newest first
func (h *DocumentHandler) Versions(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	versions, err := h.documents.ListVersions(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapSlice(versions, toDocumentResponse))
}

// AddComment posts to a document's discussion
func (h *DocumentHandler) AddComment(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if !h.bind(c, &req) {
		return
	}
	comment, err := h.documents.AddComment(c.Request.Context(), p, id, req.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCommentResponse(*comment))
}

// Comments returns a document's discussion, oldest first
func (h *DocumentHandler) Comments(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	comments, err := h.documents.ListComments(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapSlice(comments, toCommentResponse))
}

// PendingDiscussions lists threads waiting on a reply
func (h *DocumentHandler) PendingDiscussions(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	mode, valid := appdocument.ParseDiscussionMode(c.Query("mode"))
	if !valid {
		h.BadRequest(c, "mode must be awaiting_employee, awaiting_admin or all")
		return
	}
	pending, err := h.documents.ListPendingDiscussions(c.Request.Context(), p, mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapSlice(pending, toPendingDiscussionResponse))
}

// Export streams a ZIP of the selected documents. Errors raised before the
// first byte is written still produce a JSON error.
func (h *DocumentHandler) Export(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q ExportQuery
	if !h.bindQuery(c, &q) {
		return
	}
	input := appdocument.ExportInput{ApprovedOnly: q.ApprovedOnly}
	input.OwnerMemberID, _ = parseOptionalUUID(q.OwnerMemberID)
	if q.Category != "" {
		category := document.Category(q.Category)
		input.Category = &category
	}

	filename := fmt.Sprintf("documents-%s.zip", h.now().UTC().Format("20060102-150405"))
	header := c.Writer.Header()
	header.Set("Content-Type", "application/zip")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	header.Set("Cache-Control", "no-store")

	result, err := h.documents.ExportZIP(c.Request.Context(), p, input, c.Writer)
	if err != nil {
		if !c.Writer.Written() {
			header.Del("Content-Disposition")
			header.Del("Content-Type")
			h.HandleError(c, err)
			return
		}
		logger.L(c.Request.Context()).Error("ZIP export aborted mid-stream", zap.Error(err))
		c.Abort()
		return
	}
	if result.Written < result.Selected {
		logger.L(c.Request.Context()).Warn("ZIP export skipped documents",
			zap.Int("selected", result.Selected),
			zap.Int("written", result.Written))
	}
}

// ProfileDocuments lists the identity documents on a profile
func (h *DocumentHandler) ProfileDocuments(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	userID, ok := h.profileUser(c, p)
	if !ok {
		return
	}
	docs, err := h.profiles.ListProfileDocuments(c.Request.Context(), p, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapSlice(docs, toProfileDocumentResponse))
}

// CreateProfileDocument records an identity document on a profile
func (h *DocumentHandler) CreateProfileDocument(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	userID, ok := h.profileUser(c, p)
	if !ok {
		return
	}
	input, ok := h.profileInput(c)
	if !ok {
		return
	}
	d, err := h.profiles.CreateProfileDocument(c.Request.Context(), p, userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProfileDocumentResponse(d))
}

// UpdateProfileDocument replaces the fields of a profile document
func (h *DocumentHandler) UpdateProfileDocument(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	input, ok := h.profileInput(c)
	if !ok {
		return
	}
	d, err := h.profiles.UpdateProfileDocument(c.Request.Context(), p, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProfileDocumentResponse(d))
}

// DeleteProfileDocument removes a profile document
func (h *DocumentHandler) DeleteProfileDocument(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.profiles.DeleteProfileDocument(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ExpiringProfileDocuments lists documents expiring within ?days, 30 by default
func (h *DocumentHandler) ExpiringProfileDocuments(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", 30)
	if !ok || days < 1 || days > 365 {
		h.BadRequest(c, "days must be between 1 and 365")
		return
	}
	expiring, err := h.profiles.ListExpiringProfileDocuments(c.Request.Context(), p, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapSlice(expiring, toExpiringProfileDocumentResponse))
}

func (h *DocumentHandler) profileUser(c *gin.Context, p identity.Principal) (uuid.UUID, bool) {
	if c.Param("user_id") == "" {
		return p.UserID, true
	}
	return h.uuidParam(c, "user_id")
}

func (h *DocumentHandler) profileInput(c *gin.Context) (document.ProfileDocumentInput, bool) {
	var req ProfileDocumentRequest
	if !h.bind(c, &req) {
		return document.ProfileDocumentInput{}, false
	}
	input, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return input, false
	}
	return input, true
}
