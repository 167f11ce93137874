package handler

import (
	"time"

	appdocument "github.com/We2399/idea-launcher-pro-sub001/internal/application/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/google/uuid"
)

// InitiateUploadRequest starts a document upload
type InitiateUploadRequest struct {
	OwnerMemberID string `json:"owner_member_id" binding:"omitempty,uuid"`
	Category      string `json:"category" binding:"required,oneof=contract identity certificate medical tax other"`
	Title         string `json:"title" binding:"required,max=200"`
	FileName      string `json:"file_name" binding:"required,max=255"`
	ContentType   string `json:"content_type" binding:"required,max=100"`
	FileSize      int64  `json:"file_size" binding:"required,gt=0"`
}

func (r InitiateUploadRequest) input() appdocument.InitiateUploadInput {
	owner, _ := parseOptionalUUID(r.OwnerMemberID)
	return appdocument.InitiateUploadInput{
		OwnerMemberID: owner,
		Category:      document.Category(r.Category),
		Title:         r.Title,
		FileName:      r.FileName,
		ContentType:   r.ContentType,
		FileSize:      r.FileSize,
	}
}

// ListDocumentsQuery filters documents
type ListDocumentsQuery struct {
	OwnerMemberID string `form:"owner_member_id" binding:"omitempty,uuid"`
	Category      string `form:"category" binding:"omitempty,oneof=contract identity certificate medical tax other"`
	// Status is a comma separated list
	Status     string `form:"status"`
	IncludeOld bool   `form:"include_old"`
	Search     string `form:"search" binding:"omitempty,max=100"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ExportQuery selects the documents of a ZIP export
type ExportQuery struct {
	OwnerMemberID string `form:"owner_member_id" binding:"omitempty,uuid"`
	Category      string `form:"category" binding:"omitempty,oneof=contract identity certificate medical tax other"`
	ApprovedOnly  bool   `form:"approved_only"`
}

// CommentRequest adds to a document's discussion
type CommentRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}

// DocumentResponse represents one document version
type DocumentResponse struct {
	ID              uuid.UUID         `json:"id"`
	OwnerMemberID   uuid.UUID         `json:"owner_member_id"`
	OwnerUserID     uuid.UUID         `json:"owner_user_id"`
	RootID          uuid.UUID         `json:"root_id"`
	ReplacesID      *uuid.UUID        `json:"replaces_id,omitempty"`
	Category        document.Category `json:"category"`
	Title           string            `json:"title"`
	FileName        string            `json:"file_name"`
	ContentType     string            `json:"content_type"`
	FileSize        int64             `json:"file_size"`
	Version         int               `json:"version"`
	Status          document.Status   `json:"status"`
	UploadedAt      *time.Time        `json:"uploaded_at,omitempty"`
	ReviewedBy      *uuid.UUID        `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	CreatedBy       *uuid.UUID        `json:"created_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// toDocumentResponse never exposes the storage key; downloads go through
// presigned links.
func toDocumentResponse(d *document.Document) DocumentResponse {
	return DocumentResponse{
		ID:              d.ID,
		OwnerMemberID:   d.OwnerMemberID,
		OwnerUserID:     d.OwnerUserID,
		RootID:          d.RootID,
		ReplacesID:      d.ReplacesID,
		Category:        d.Category,
		Title:           d.Title,
		FileName:        d.FileName,
		ContentType:     d.ContentType,
		FileSize:        d.FileSize,
		Version:         d.DocVersion,
		Status:          d.Status,
		UploadedAt:      d.UploadedAt,
		ReviewedBy:      d.ReviewedBy,
		ReviewedAt:      d.ReviewedAt,
		RejectionReason: d.RejectionReason,
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// UploadTicketResponse carries the presigned PUT for a new version
type UploadTicketResponse struct {
	Document  DocumentResponse `json:"document"`
	UploadURL string           `json:"upload_url"`
	ExpiresAt time.Time        `json:"expires_at"`
}

func toUploadTicketResponse(t *appdocument.UploadTicket) UploadTicketResponse {
	return UploadTicketResponse{
		Document:  toDocumentResponse(t.Document),
		UploadURL: t.UploadURL,
		ExpiresAt: t.ExpiresAt,
	}
}

// CommentResponse represents a discussion comment
type CommentResponse struct {
	ID           uuid.UUID            `json:"id"`
	DocumentID   uuid.UUID            `json:"document_id"`
	AuthorUserID uuid.UUID            `json:"author_user_id"`
	Type         document.CommentType `json:"type"`
	Body         string               `json:"body"`
	CreatedAt    time.Time            `json:"created_at"`
}

func toCommentResponse(c document.Comment) CommentResponse {
	return CommentResponse{
		ID:           c.ID,
		DocumentID:   c.DocumentID,
		AuthorUserID: c.AuthorUserID,
		Type:         c.Type,
		Body:         c.Body,
		CreatedAt:    c.CreatedAt,
	}
}

// PendingDiscussionResponse is a thread waiting on a reply
type PendingDiscussionResponse struct {
	Document       DocumentResponse         `json:"document"`
	State          document.DiscussionState `json:"state"`
	LastCommentAt  *time.Time               `json:"last_comment_at,omitempty"`
	WaitingSeconds int64                    `json:"waiting_seconds"`
}

func toPendingDiscussionResponse(d appdocument.PendingDiscussion) PendingDiscussionResponse {
	return PendingDiscussionResponse{
		Document:       toDocumentResponse(d.Document),
		State:          d.State,
		LastCommentAt:  d.LastCommentAt,
		WaitingSeconds: d.WaitingSeconds,
	}
}

// ProfileDocumentRequest creates or replaces a profile document
type ProfileDocumentRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=passport visa id_card work_permit licence other"`
	Number     string `json:"number" binding:"omitempty,max=100"`
	IssuedOn   string `json:"issued_on" binding:"omitempty,datetime=2006-01-02"`
	ExpiresOn  string `json:"expires_on" binding:"omitempty,datetime=2006-01-02"`
	DocumentID string `json:"document_id" binding:"omitempty,uuid"`
	Notes      string `json:"notes" binding:"omitempty,max=2000"`
}

func (r ProfileDocumentRequest) input() (document.ProfileDocumentInput, error) {
	in := document.ProfileDocumentInput{
		Kind:   document.ProfileDocumentKind(r.Kind),
		Number: r.Number,
		Notes:  r.Notes,
	}
	var err error
	if in.IssuedOn, err = parseOptionalDate(r.IssuedOn); err != nil {
		return in, err
	}
	if in.ExpiresOn, err = parseOptionalDate(r.ExpiresOn); err != nil {
		return in, err
	}
	in.DocumentID, err = parseOptionalUUID(r.DocumentID)
	return in, err
}

// ProfileDocumentResponse represents a profile document
type ProfileDocumentResponse struct {
	ID         uuid.UUID                    `json:"id"`
	UserID     uuid.UUID                    `json:"user_id"`
	Kind       document.ProfileDocumentKind `json:"kind"`
	Number     string                       `json:"number,omitempty"`
	IssuedOn   *string                      `json:"issued_on,omitempty"`
	ExpiresOn  *string                      `json:"expires_on,omitempty"`
	DocumentID *uuid.UUID                   `json:"document_id,omitempty"`
	Notes      string                       `json:"notes,omitempty"`
	CreatedAt  time.Time                    `json:"created_at"`
	UpdatedAt  time.Time                    `json:"updated_at"`
}

func toProfileDocumentResponse(d *document.ProfileDocument) ProfileDocumentResponse {
	return ProfileDocumentResponse{
		ID:         d.ID,
		UserID:     d.UserID,
		Kind:       d.Kind,
		Number:     d.Number,
		IssuedOn:   formatDate(d.IssuedOn),
		ExpiresOn:  formatDate(d.ExpiresOn),
		DocumentID: d.DocumentID,
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// ExpiringProfileDocumentResponse is a profile document close to expiry
type ExpiringProfileDocumentResponse struct {
	Document   ProfileDocumentResponse `json:"document"`
	HolderName string                  `json:"holder_name"`
	DaysLeft   int                     `json:"days_left"`
}

func toExpiringProfileDocumentResponse(e appdocument.ExpiringProfileDocument) ExpiringProfileDocumentResponse {
	return ExpiringProfileDocumentResponse{
		Document:   toProfileDocumentResponse(e.Document),
		HolderName: e.HolderName,
		DaysLeft:   e.DaysLeft,
	}
}
