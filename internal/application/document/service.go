package document

import (
	"context"
	"errors"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repositories groups the stores the document services read and write
type Repositories struct {
	Documents        document.Repository
	Comments         document.CommentRepository
	ProfileDocuments document.ProfileDocumentRepository
	Members          identity.MemberRepository
	Profiles         identity.ProfileRepository
}

// Config holds document workflow limits
type Config struct {
	// ExportMaxDocuments caps the versions of one ZIP export
	ExportMaxDocuments int
	// DiscussionLookback bounds how far back the reminder sweep looks for threads
	DiscussionLookback time.Duration
}

const (
	defaultExportMax          = 500
	defaultDiscussionLookback = 30 * 24 * time.Hour
)

// Service runs document uploads, reviews, discussions and exports
type Service struct {
	repos   Repositories
	storage ObjectStorage
	archive ArchiveWriter
	tx      shared.Transactor
	events  shared.EventPublisher
	metrics *telemetry.Metrics
	config  Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new document service
func NewService(
	repos Repositories,
	storage ObjectStorage,
	archive ArchiveWriter,
	tx shared.Transactor,
	events shared.EventPublisher,
	metrics *telemetry.Metrics,
	config Config,
	logger *zap.Logger,
) *Service {
	if config.ExportMaxDocuments <= 0 {
		config.ExportMaxDocuments = defaultExportMax
	}
	if config.DiscussionLookback <= 0 {
		config.DiscussionLookback = defaultDiscussionLookback
	}
	return &Service{
		repos:   repos,
		storage: storage,
		archive: archive,
		tx:      tx,
		events:  events,
		metrics: metrics,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// InitiateUpload creates a pending_upload version and presigns its PUT
func (s *Service) InitiateUpload(ctx context.Context, p identity.Principal, input InitiateUploadInput) (*UploadTicket, error) {
	owner, err := s.resolveOwner(ctx, p, input.OwnerMemberID)
	if err != nil {
		return nil, err
	}
	d, err := document.NewDocument(p.TenantID, owner.ID, owner.UserID, p.UserID, input.upload())
	if err != nil {
		return nil, err
	}
	return s.createWithTicket(ctx, d)
}

// InitiateReplacement starts version n+1 of a document chain. A chain
// holds at most one version in flight.
func (s *Service) InitiateReplacement(ctx context.Context, p identity.Principal, id uuid.UUID, input InitiateUploadInput) (*UploadTicket, error) {
	prev, err := s.visibleDocument(ctx, p, id)
	if err != nil {
		return nil, err
	}
	inFlight, err := s.repos.Documents.FindInFlight(ctx, prev.RootID)
	switch {
	case err == nil && inFlight != nil:
		return nil, shared.NewDomainError(shared.CodeInvalidState, "A replacement for this document is already in progress")
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	latest, err := s.repos.Documents.FindLatest(ctx, prev.RootID)
	if err != nil {
		return nil, err
	}
	d, err := document.NewReplacement(prev, latest.DocVersion, p.UserID, input.upload())
	if err != nil {
		return nil, err
	}
	return s.createWithTicket(ctx, d)
}

func (s *Service) createWithTicket(ctx context.Context, d *document.Document) (*UploadTicket, error) {
	if err := s.repos.Documents.Create(ctx, d); err != nil {
		return nil, err
	}
	url, expires, err := s.storage.GenerateUploadURL(ctx, d.StorageKey, d.ContentType, 0)
	if err != nil {
		s.logger.Error("Failed to presign document upload", zap.String("document_id", d.ID.String()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Document upload initiated",
		zap.String("document_id", d.ID.String()),
		zap.String("root_id", d.RootID.String()),
		zap.Int("doc_version", d.DocVersion))
	return &UploadTicket{Document: d, UploadURL: url, ExpiresAt: expires}, nil
}

// ConfirmUpload moves a version to pending_review once its object exists
func (s *Service) ConfirmUpload(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.Document, error) {
	d, err := s.visibleDocument(ctx, p, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.storage.ObjectExists(ctx, d.StorageKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "The file has not been uploaded yet")
	}
	if err := d.ConfirmUpload(s.now()); err != nil {
		return nil, err
	}
	if err := s.repos.Documents.Update(ctx, d); err != nil {
		return nil, err
	}
	s.publish(ctx, d)
	return d, nil
}

// GetDocument returns a version visible to the caller
func (s *Service) GetDocument(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.Document, error) {
	return s.visibleDocument(ctx, p, id)
}

// GetDownloadURL presigns a GET for an uploaded version
func (s *Service) GetDownloadURL(ctx context.Context, p identity.Principal, id uuid.UUID) (*DownloadLink, error) {
	d, err := s.visibleDocument(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if d.Status == document.StatusPendingUpload {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "The file has not been uploaded yet")
	}
	url, expires, err := s.storage.GenerateDownloadURL(ctx, d.StorageKey, 0)
	if err != nil {
		return nil, err
	}
	return &DownloadLink{URL: url, FileName: d.FileName, ExpiresAt: expires}, nil
}

// ListDocuments lists versions. Callers below hr only see their own.
func (s *Service) ListDocuments(ctx context.Context, p identity.Principal, input ListDocumentsInput) (*shared.Paginated[*document.Document], error) {
	for _, st := range input.Statuses {
		if !st.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid document status: "+string(st))
		}
	}
	if input.Category != nil && !input.Category.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid document category")
	}
	norm := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	filter := document.Filter{
		OwnerMemberID: input.OwnerMemberID,
		Category:      input.Category,
		Statuses:      input.Statuses,
		CurrentOnly:   !input.IncludeOld,
		Search:        input.Search,
		Page:          norm.Page,
		PageSize:      norm.PageSize,
	}
	if !p.AtLeast(identity.RoleHR) {
		self := p.UserID
		filter.OwnerUserID = &self
		filter.OwnerMemberID = nil
	}
	items, total, err := s.repos.Documents.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := shared.NewPaginated(items, total, norm.Page, norm.PageSize)
	return &out, nil
}

// ListVersions returns every version of the chain a document belongs to
func (s *Service) ListVersions(ctx context.Context, p identity.Principal, id uuid.UUID) ([]*document.Document, error) {
	d, err := s.visibleDocument(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return s.repos.Documents.FindVersions(ctx, d.RootID)
}

// resolveOwner returns the member a new upload belongs to
func (s *Service) resolveOwner(ctx context.Context, p identity.Principal, memberID *uuid.UUID) (*identity.Member, error) {
	if memberID == nil || *memberID == p.MemberID {
		if p.MemberID == uuid.Nil {
			return nil, shared.NewDomainError(shared.CodeForbidden, "Only members can upload documents")
		}
		return s.repos.Members.FindByID(ctx, p.MemberID)
	}
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	return s.repos.Members.FindByID(ctx, *memberID)
}

// visibleDocument loads a version the caller owns, or any version for hr+.
// Other versions read as missing.
func (s *Service) visibleDocument(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.Document, error) {
	d, err := s.repos.Documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.OwnerUserID != p.UserID && !p.AtLeast(identity.RoleHR) {
		return nil, shared.ErrNotFound
	}
	return d, nil
}

func (s *Service) publish(ctx context.Context, docs ...*document.Document) {
	for _, d := range docs {
		if d == nil {
			continue
		}
		if err := shared.PublishAndClear(ctx, s.events, d); err != nil {
			s.logger.Warn("Failed to publish document events",
				zap.String("document_id", d.ID.String()),
				zap.Error(err))
		}
	}
}
