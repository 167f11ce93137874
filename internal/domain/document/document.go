package document

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxFileSize is the maximum allowed upload size (50 MiB)
const MaxFileSize = 50 * 1024 * 1024

// allowedContentTypes lists the MIME types accepted for upload
var allowedContentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/heic":      ".heic",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       ".xlsx",
}

// IsAllowedContentType reports whether uploads of the MIME type are accepted
func IsAllowedContentType(contentType string) bool {
	_, ok := allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	return ok
}

// Status represents the status of a document version
type Status string

const (
	StatusPendingUpload Status = "pending_upload"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusSuperseded    Status = "superseded"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingUpload, StatusPendingReview, StatusApproved, StatusRejected, StatusSuperseded:
		return true
	}
	return false
}

// InFlight reports whether a version is still on its way to a review decision
func (s Status) InFlight() bool {
	return s == StatusPendingUpload || s == StatusPendingReview
}

// Category groups stored documents
type Category string

const (
	CategoryContract    Category = "contract"
	CategoryIdentity    Category = "identity"
	CategoryCertificate Category = "certificate"
	CategoryMedical     Category = "medical"
	CategoryTax         Category = "tax"
	CategoryOther       Category = "other"
)

// IsValid reports whether the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryContract, CategoryIdentity, CategoryCertificate, CategoryMedical, CategoryTax, CategoryOther:
		return true
	}
	return false
}

// Document is one stored version of an employee document. Versions of the
// same document share a RootID and link backwards through ReplacesID.
type Document struct {
	shared.TenantAggregateRoot
	OwnerMemberID   uuid.UUID
	OwnerUserID     uuid.UUID
	RootID          uuid.UUID
	ReplacesID      *uuid.UUID
	Category        Category
	Title           string
	FileName        string
	ContentType     string
	FileSize        int64
	StorageKey      string
	DocVersion      int
	Status          Status
	UploadedAt      *time.Time
	ReviewedBy      *uuid.UUID
	ReviewedAt      *time.Time
	RejectionReason string
}

// UploadInput holds the file metadata supplied when an upload starts
type UploadInput struct {
	Category    Category
	Title       string
	FileName    string
	ContentType string
	FileSize    int64
}

// NewDocument creates the first version of a document in pending_upload
func NewDocument(tenantID, ownerMemberID, ownerUserID, createdBy uuid.UUID, in UploadInput) (*Document, error) {
	if err := validateUpload(in); err != nil {
		return nil, err
	}
	d := &Document{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		OwnerMemberID:       ownerMemberID,
		OwnerUserID:         ownerUserID,
		Category:            in.Category,
		Title:               strings.TrimSpace(in.Title),
		FileName:            strings.TrimSpace(in.FileName),
		ContentType:         strings.ToLower(strings.TrimSpace(in.ContentType)),
		FileSize:            in.FileSize,
		DocVersion:          1,
		Status:              StatusPendingUpload,
	}
	d.RootID = d.ID
	d.StorageKey = d.buildStorageKey()
	return d, nil
}

// NewReplacement creates the next version of prev's chain. latestVersion is
// the highest doc_version already stored for the chain, which can be above
// prev when an earlier replacement of prev was rejected. Category and title
// default to the previous version when left empty.
func NewReplacement(prev *Document, latestVersion int, createdBy uuid.UUID, in UploadInput) (*Document, error) {
	if prev == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Previous version is required")
	}
	if prev.Status.InFlight() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Only reviewed versions can be replaced")
	}
	if prev.Status == StatusSuperseded {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "A newer version already replaced this document")
	}
	if in.Category == "" {
		in.Category = prev.Category
	}
	if strings.TrimSpace(in.Title) == "" {
		in.Title = prev.Title
	}
	d, err := NewDocument(prev.TenantID, prev.OwnerMemberID, prev.OwnerUserID, createdBy, in)
	if err != nil {
		return nil, err
	}
	prevID := prev.ID
	d.RootID = prev.RootID
	d.ReplacesID = &prevID
	d.DocVersion = max(prev.DocVersion, latestVersion) + 1
	d.StorageKey = d.buildStorageKey()
	return d, nil
}

// IsReplacement reports whether this version replaces an earlier one
func (d *Document) IsReplacement() bool {
	return d.ReplacesID != nil
}

// ConfirmUpload records that the object landed in storage
func (d *Document) ConfirmUpload(now time.Time) error {
	if d.Status != StatusPendingUpload {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot confirm upload of a document in %s status", d.Status))
	}
	d.Status = StatusPendingReview
	d.UploadedAt = &now
	d.IncrementVersion()
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentUploaded, d, d.OwnerUserID, ""))
	return nil
}

// Approve accepts the version. Superseding the prior approved version is
// the caller's job, inside the same transaction.
func (d *Document) Approve(reviewer uuid.UUID, now time.Time) error {
	if d.Status != StatusPendingReview {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot approve a document in %s status", d.Status))
	}
	if reviewer == d.OwnerUserID {
		return shared.NewDomainError(shared.CodeSelfApproval, "You cannot approve your own document")
	}
	d.Status = StatusApproved
	d.ReviewedBy = &reviewer
	d.ReviewedAt = &now
	d.RejectionReason = ""
	d.IncrementVersion()
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentApproved, d, reviewer, ""))
	return nil
}

// Reject declines the version with a reason
func (d *Document) Reject(reviewer uuid.UUID, reason string, now time.Time) error {
	if d.Status != StatusPendingReview {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot reject a document in %s status", d.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Rejection reason is required")
	}
	if len(reason) > 1000 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Rejection reason cannot exceed 1000 characters")
	}
	d.Status = StatusRejected
	d.ReviewedBy = &reviewer
	d.ReviewedAt = &now
	d.RejectionReason = reason
	d.IncrementVersion()
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentRejected, d, reviewer, reason))
	return nil
}

// Supersede retires an approved version after its replacement is approved
func (d *Document) Supersede() error {
	if d.Status != StatusApproved {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot supersede a document in %s status", d.Status))
	}
	d.Status = StatusSuperseded
	d.IncrementVersion()
	return nil
}

// Extension returns the file extension used for exports
func (d *Document) Extension() string {
	if ext := strings.ToLower(path.Ext(d.FileName)); ext != "" && len(ext) <= 10 {
		return ext
	}
	if ext, ok := allowedContentTypes[d.ContentType]; ok {
		return ext
	}
	return ".bin"
}

// ArchiveEntryName returns the ZIP entry path for the version:
// <employee-no>/<category>/<title>-v<version>.<ext>
func (d *Document) ArchiveEntryName(employeeNumber string) string {
	owner := sanitizeSegment(employeeNumber)
	if owner == "" {
		owner = d.OwnerMemberID.String()
	}
	title := sanitizeSegment(d.Title)
	if title == "" {
		title = "document"
	}
	return fmt.Sprintf("%s/%s/%s-v%d%s", owner, sanitizeSegment(string(d.Category)), title, d.DocVersion, d.Extension())
}

func (d *Document) buildStorageKey() string {
	return fmt.Sprintf("documents/%s/%s/%s/v%d/%s%s",
		d.TenantID, d.OwnerMemberID, d.RootID, d.DocVersion, d.ID, d.Extension())
}

func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 32 || r == 127:
			continue
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ". ")
	return strings.ReplaceAll(out, "..", "_")
}

func validateUpload(in UploadInput) error {
	if !in.Category.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid document category")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Title cannot exceed 200 characters")
	}
	name := strings.TrimSpace(in.FileName)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "File name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError(shared.CodeInvalidInput, "File name cannot exceed 255 characters")
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return shared.NewDomainError(shared.CodeInvalidInput, "File name contains invalid characters")
		}
	}
	if strings.ContainsAny(name, `/\`) {
		return shared.NewDomainError(shared.CodeInvalidInput, "File name cannot contain path separators")
	}
	if !IsAllowedContentType(in.ContentType) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unsupported file type; allowed types are PDF, PNG, JPEG, HEIC, DOCX and XLSX")
	}
	if in.FileSize <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "File size must be greater than 0")
	}
	if in.FileSize > MaxFileSize {
		return shared.NewDomainError(shared.CodeInvalidInput, "File size cannot exceed 50MB")
	}
	return nil
}
