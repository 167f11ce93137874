package document

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter contains filter options for listing documents
type Filter struct {
	OwnerUserID   *uuid.UUID
	OwnerMemberID *uuid.UUID
	Category      *Category
	Statuses      []Status
	// CurrentOnly hides superseded versions
	CurrentOnly bool
	// WithComments keeps only documents that have at least one user comment
	WithComments bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// Repository persists document versions
type Repository interface {
	Create(ctx context.Context, d *Document) error
	// Update saves d, failing with a concurrency conflict on a stale version
	Update(ctx context.Context, d *Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindAll(ctx context.Context, filter Filter) ([]*Document, int64, error)
	// FindVersions returns every version of a chain, oldest first
	FindVersions(ctx context.Context, rootID uuid.UUID) ([]*Document, error)
	FindInFlight(ctx context.Context, rootID uuid.UUID) (*Document, error)
	// FindLatest returns the chain's highest doc_version in any status
	FindLatest(ctx context.Context, rootID uuid.UUID) (*Document, error)
	FindApproved(ctx context.Context, rootID uuid.UUID) (*Document, error)
	CountByStatus(ctx context.Context, ownerUserID *uuid.UUID, statuses ...Status) (int64, error)
	// FindCommentedAcrossOrganizations returns current documents of every
	// organization with user comments newer than since
	FindCommentedAcrossOrganizations(ctx context.Context, since time.Time, limit int) ([]*Document, error)
}

// CommentRepository persists discussion comments
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	// FindByDocument returns the thread in creation order
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]Comment, error)
	FindByDocuments(ctx context.Context, documentIDs []uuid.UUID) (map[uuid.UUID][]Comment, error)
}

// ProfileDocumentRepository persists profile documents
type ProfileDocumentRepository interface {
	Create(ctx context.Context, p *ProfileDocument) error
	Update(ctx context.Context, p *ProfileDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*ProfileDocument, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*ProfileDocument, error)
	// FindExpiringBetween returns documents whose expiry date is within [from, to]
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*ProfileDocument, error)
	// FindExpiringAcrossOrganizations is the scheduler variant without tenant scope
	FindExpiringAcrossOrganizations(ctx context.Context, from, to time.Time) ([]*ProfileDocument, error)
}
