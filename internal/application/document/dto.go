package document

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/google/uuid"
)

// InitiateUploadInput contains the input for starting an upload. HR may
// upload on behalf of another member.
type InitiateUploadInput struct {
	OwnerMemberID *uuid.UUID
	Category      document.Category
	Title         string
	FileName      string
	ContentType   string
	FileSize      int64
}

func (in InitiateUploadInput) upload() document.UploadInput {
	return document.UploadInput{
		Category:    in.Category,
		Title:       in.Title,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		FileSize:    in.FileSize,
	}
}

// UploadTicket is returned when an upload starts
type UploadTicket struct {
	Document  *document.Document `json:"document"`
	UploadURL string             `json:"upload_url"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// DownloadLink is a presigned GET for a stored version
type DownloadLink struct {
	URL       string    `json:"url"`
	FileName  string    `json:"file_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ListDocumentsInput filters the document list
type ListDocumentsInput struct {
	OwnerMemberID *uuid.UUID
	Category      *document.Category
	Statuses      []document.Status
	IncludeOld    bool
	Search        string
	Page          int
	PageSize      int
}

// DiscussionMode selects which pending threads to list
type DiscussionMode string

const (
	ModeAwaitingEmployee DiscussionMode = "awaiting_employee"
	ModeAwaitingAdmin    DiscussionMode = "awaiting_admin"
	ModeAll              DiscussionMode = "all"
)

// ParseDiscussionMode validates a mode, defaulting to all
func ParseDiscussionMode(s string) (DiscussionMode, bool) {
	switch DiscussionMode(s) {
	case "":
		return ModeAll, true
	case ModeAwaitingEmployee, ModeAwaitingAdmin, ModeAll:
		return DiscussionMode(s), true
	}
	return "", false
}

func (m DiscussionMode) matches(state document.DiscussionState) bool {
	switch m {
	case ModeAwaitingEmployee:
		return state == document.DiscussionAwaitingEmployee
	case ModeAwaitingAdmin:
		return state == document.DiscussionAwaitingAdmin
	}
	return state != document.DiscussionNone
}

// PendingDiscussion is a document whose thread waits on someone
type PendingDiscussion struct {
	Document       *document.Document       `json:"document"`
	State          document.DiscussionState `json:"state"`
	LastCommentAt  *time.Time               `json:"last_comment_at,omitempty"`
	WaitingSeconds int64                    `json:"waiting_seconds"`
}

// ExportInput selects the versions of a ZIP export
type ExportInput struct {
	OwnerMemberID *uuid.UUID
	Category      *document.Category
	ApprovedOnly  bool
}

// ExportResult reports what went into an archive
type ExportResult struct {
	Selected int
	Written  int
}

// DiscussionReminder is a thread that has waited on its owner too long
type DiscussionReminder struct {
	Document *document.Document
	Waiting  time.Duration
}

// ExpiringProfileDocument pairs a profile document with its holder's name
type ExpiringProfileDocument struct {
	Document   *document.ProfileDocument `json:"document"`
	HolderName string                    `json:"holder_name"`
	DaysLeft   int                       `json:"days_left"`
}
