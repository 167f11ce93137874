package models

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/google/uuid"
)

// DocumentModel is the persistence model for document_storage. Each row is
// one version; versions of a document share root_id.
type DocumentModel struct {
	TenantAggregateModel
	OwnerMemberID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	OwnerUserID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	RootID          uuid.UUID         `gorm:"type:uuid;not null;index"`
	ReplacesID      *uuid.UUID        `gorm:"type:uuid"`
	Category        document.Category `gorm:"type:varchar(20);not null"`
	Title           string            `gorm:"type:varchar(200);not null"`
	FileName        string            `gorm:"type:varchar(255);not null"`
	ContentType     string            `gorm:"type:varchar(100);not null"`
	FileSize        int64             `gorm:"not null"`
	StorageKey      string            `gorm:"type:varchar(500);not null;uniqueIndex"`
	DocVersion      int               `gorm:"column:doc_version;not null;default:1"`
	Status          document.Status   `gorm:"type:varchar(20);not null;default:'pending_upload';index"`
	UploadedAt      *time.Time
	ReviewedBy      *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt      *time.Time
	RejectionReason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "document_storage"
}

// ToDomain converts the persistence model to a domain Document.
func (m *DocumentModel) ToDomain() *document.Document {
	return &document.Document{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		OwnerMemberID:       m.OwnerMemberID,
		OwnerUserID:         m.OwnerUserID,
		RootID:              m.RootID,
		ReplacesID:          m.ReplacesID,
		Category:            m.Category,
		Title:               m.Title,
		FileName:            m.FileName,
		ContentType:         m.ContentType,
		FileSize:            m.FileSize,
		StorageKey:          m.StorageKey,
		DocVersion:          m.DocVersion,
		Status:              m.Status,
		UploadedAt:          m.UploadedAt,
		ReviewedBy:          m.ReviewedBy,
		ReviewedAt:          m.ReviewedAt,
		RejectionReason:     m.RejectionReason,
	}
}

// FromDomain populates the persistence model from a domain Document.
func (m *DocumentModel) FromDomain(d *document.Document) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.OwnerMemberID = d.OwnerMemberID
	m.OwnerUserID = d.OwnerUserID
	m.RootID = d.RootID
	m.ReplacesID = d.ReplacesID
	m.Category = d.Category
	m.Title = d.Title
	m.FileName = d.FileName
	m.ContentType = d.ContentType
	m.FileSize = d.FileSize
	m.StorageKey = d.StorageKey
	m.DocVersion = d.DocVersion
	m.Status = d.Status
	m.UploadedAt = d.UploadedAt
	m.ReviewedBy = d.ReviewedBy
	m.ReviewedAt = d.ReviewedAt
	m.RejectionReason = d.RejectionReason
}

// DocumentModelFromDomain creates a persistence model from a domain Document.
func DocumentModelFromDomain(d *document.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}

// DocumentCommentModel is a row of document_comments.
type DocumentCommentModel struct {
	ID           uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	DocumentID   uuid.UUID            `gorm:"type:uuid;not null;index:idx_comment_document_created,priority:1"`
	AuthorUserID uuid.UUID            `gorm:"type:uuid;not null"`
	Type         document.CommentType `gorm:"type:varchar(10);not null;default:'user'"`
	Body         string               `gorm:"type:text;not null"`
	CreatedAt    time.Time            `gorm:"not null;index:idx_comment_document_created,priority:2"`
}

// TableName returns the table name for GORM
func (DocumentCommentModel) TableName() string {
	return "document_comments"
}

// ToDomain converts the row to a domain Comment.
func (m *DocumentCommentModel) ToDomain() document.Comment {
	return document.Comment{
		ID:           m.ID,
		TenantID:     m.TenantID,
		DocumentID:   m.DocumentID,
		AuthorUserID: m.AuthorUserID,
		Type:         m.Type,
		Body:         m.Body,
		CreatedAt:    m.CreatedAt,
	}
}

// DocumentCommentModelFromDomain creates a row from a domain Comment.
func DocumentCommentModelFromDomain(c *document.Comment) *DocumentCommentModel {
	return &DocumentCommentModel{
		ID:           c.ID,
		TenantID:     c.TenantID,
		DocumentID:   c.DocumentID,
		AuthorUserID: c.AuthorUserID,
		Type:         c.Type,
		Body:         c.Body,
		CreatedAt:    c.CreatedAt,
	}
}

// ProfileDocumentModel is the persistence model for profile_documents.
type ProfileDocumentModel struct {
	TenantAggregateModel
	UserID     uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Kind       document.ProfileDocumentKind `gorm:"type:varchar(20);not null"`
	Number     string                       `gorm:"type:varchar(100)"`
	IssuedOn   *time.Time                   `gorm:"type:date"`
	ExpiresOn  *time.Time                   `gorm:"type:date;index"`
	DocumentID *uuid.UUID                   `gorm:"type:uuid"`
	Notes      string                       `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProfileDocumentModel) TableName() string {
	return "profile_documents"
}

// ToDomain converts the persistence model to a domain ProfileDocument.
func (m *ProfileDocumentModel) ToDomain() *document.ProfileDocument {
	return &document.ProfileDocument{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		UserID:              m.UserID,
		Kind:                m.Kind,
		Number:              m.Number,
		IssuedOn:            asDatePtr(m.IssuedOn),
		ExpiresOn:           asDatePtr(m.ExpiresOn),
		DocumentID:          m.DocumentID,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain ProfileDocument.
func (m *ProfileDocumentModel) FromDomain(p *document.ProfileDocument) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.UserID = p.UserID
	m.Kind = p.Kind
	m.Number = p.Number
	m.IssuedOn = p.IssuedOn
	m.ExpiresOn = p.ExpiresOn
	m.DocumentID = p.DocumentID
	m.Notes = p.Notes
}

// ProfileDocumentModelFromDomain creates a persistence model from a domain ProfileDocument.
func ProfileDocumentModelFromDomain(p *document.ProfileDocument) *ProfileDocumentModel {
	m := &ProfileDocumentModel{}
	m.FromDomain(p)
	return m
}
