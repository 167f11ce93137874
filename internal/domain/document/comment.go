package document

import (
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxCommentLength bounds a discussion comment body
const MaxCommentLength = 4000

// CommentType distinguishes people from workflow-generated comments
type CommentType string

const (
	CommentTypeUser   CommentType = "user"
	CommentTypeSystem CommentType = "system"
)

// Comment is one entry of a document's discussion thread
type Comment struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	DocumentID   uuid.UUID
	AuthorUserID uuid.UUID
	Type         CommentType
	Body         string
	CreatedAt    time.Time
}

// NewUserComment creates a comment written by a person
func NewUserComment(d *Document, author uuid.UUID, body string, now time.Time) (*Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Comment cannot be empty")
	}
	if len(body) > MaxCommentLength {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Comment cannot exceed 4000 characters")
	}
	return newComment(d, author, CommentTypeUser, body, now), nil
}

// NewSystemComment records a workflow step in the thread
func NewSystemComment(d *Document, actor uuid.UUID, body string, now time.Time) *Comment {
	return newComment(d, actor, CommentTypeSystem, strings.TrimSpace(body), now)
}

func newComment(d *Document, author uuid.UUID, t CommentType, body string, now time.Time) *Comment {
	return &Comment{
		ID:           uuid.New(),
		TenantID:     d.TenantID,
		DocumentID:   d.ID,
		AuthorUserID: author,
		Type:         t,
		Body:         body,
		CreatedAt:    now,
	}
}

// IsSystem reports whether the comment was generated by the workflow
func (c Comment) IsSystem() bool {
	return c.Type == CommentTypeSystem
}
