package document

import (
	"context"
	"errors"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxExpiryWindowDays bounds ListExpiringProfileDocuments
const MaxExpiryWindowDays = 366

// ProfileService manages the identity documents held on profiles
type ProfileService struct {
	repos  Repositories
	logger *zap.Logger
	now    func() time.Time
}

// NewProfileService creates a new profile document service
func NewProfileService(repos Repositories, logger *zap.Logger) *ProfileService {
	return &ProfileService{repos: repos, logger: logger, now: time.Now}
}

// CreateProfileDocument adds a document to a profile. Users manage their
// own, hr+ manages everyone's.
func (s *ProfileService) CreateProfileDocument(ctx context.Context, p identity.Principal, userID uuid.UUID, input document.ProfileDocumentInput) (*document.ProfileDocument, error) {
	if err := p.RequireSelfOr(userID, identity.RoleHR); err != nil {
		return nil, err
	}
	if _, err := s.repos.Members.FindByUserID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.checkAttachment(ctx, userID, input.DocumentID); err != nil {
		return nil, err
	}
	pd, err := document.NewProfileDocument(p.TenantID, userID, p.UserID, input)
	if err != nil {
		return nil, err
	}
	if err := s.repos.ProfileDocuments.Create(ctx, pd); err != nil {
		return nil, err
	}
	s.logger.Info("Profile document created",
		zap.String("profile_document_id", pd.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("kind", string(pd.Kind)))
	return pd, nil
}

// UpdateProfileDocument replaces the fields of a profile document
func (s *ProfileService) UpdateProfileDocument(ctx context.Context, p identity.Principal, id uuid.UUID, input document.ProfileDocumentInput) (*document.ProfileDocument, error) {
	pd, err := s.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAttachment(ctx, pd.UserID, input.DocumentID); err != nil {
		return nil, err
	}
	if err := pd.Update(input); err != nil {
		return nil, err
	}
	if err := s.repos.ProfileDocuments.Update(ctx, pd); err != nil {
		return nil, err
	}
	return pd, nil
}

// DeleteProfileDocument removes a profile document
func (s *ProfileService) DeleteProfileDocument(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	pd, err := s.visible(ctx, p, id)
	if err != nil {
		return err
	}
	return s.repos.ProfileDocuments.Delete(ctx, pd.ID)
}

// ListProfileDocuments returns the documents of one profile
func (s *ProfileService) ListProfileDocuments(ctx context.Context, p identity.Principal, userID uuid.UUID) ([]*document.ProfileDocument, error) {
	if err := p.RequireSelfOr(userID, identity.RoleHR); err != nil {
		return nil, err
	}
	return s.repos.ProfileDocuments.FindByUserID(ctx, userID)
}

// ListExpiringProfileDocuments returns the organization's documents that
// expire between today and today+days, soonest first (hr+)
func (s *ProfileService) ListExpiringProfileDocuments(ctx context.Context, p identity.Principal, days int) ([]ExpiringProfileDocument, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	if days < 0 || days > MaxExpiryWindowDays {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Days must be between 0 and 366")
	}
	today := shared.DateOnly(s.now())
	docs, err := s.repos.ProfileDocuments.FindExpiringBetween(ctx, today, today.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	return s.withHolders(ctx, today, docs)
}

// FindExpiringAcrossOrganizations groups the documents of every
// organization expiring within days by tenant, for the expiry notice job
func (s *ProfileService) FindExpiringAcrossOrganizations(ctx context.Context, days int) (map[uuid.UUID][]ExpiringProfileDocument, error) {
	today := shared.DateOnly(s.now())
	docs, err := s.repos.ProfileDocuments.FindExpiringAcrossOrganizations(ctx, today, today.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	byTenant := make(map[uuid.UUID][]*document.ProfileDocument)
	for _, d := range docs {
		byTenant[d.TenantID] = append(byTenant[d.TenantID], d)
	}
	out := make(map[uuid.UUID][]ExpiringProfileDocument, len(byTenant))
	for tenantID, group := range byTenant {
		tenantCtx := logger.WithTenantID(ctx, tenantID.String())
		views, err := s.withHolders(tenantCtx, today, group)
		if err != nil {
			s.logger.Warn("Failed to resolve profile document holders",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
			continue
		}
		out[tenantID] = views
	}
	return out, nil
}

func (s *ProfileService) withHolders(ctx context.Context, today time.Time, docs []*document.ProfileDocument) ([]ExpiringProfileDocument, error) {
	out := make([]ExpiringProfileDocument, 0, len(docs))
	if len(docs) == 0 {
		return out, nil
	}
	userIDs := make([]uuid.UUID, 0, len(docs))
	for _, d := range docs {
		userIDs = append(userIDs, d.UserID)
	}
	profiles, err := s.repos.Profiles.FindByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(profiles))
	for _, pr := range profiles {
		names[pr.UserID] = pr.DisplayName()
	}
	for _, d := range docs {
		view := ExpiringProfileDocument{Document: d, HolderName: names[d.UserID]}
		if d.ExpiresOn != nil {
			view.DaysLeft = int(d.ExpiresOn.Sub(today).Hours() / 24)
		}
		out = append(out, view)
	}
	return out, nil
}

// checkAttachment verifies an attached stored document belongs to the holder
func (s *ProfileService) checkAttachment(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) error {
	if documentID == nil {
		return nil
	}
	d, err := s.repos.Documents.FindByID(ctx, *documentID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Attached document does not exist")
	}
	if err != nil {
		return err
	}
	if d.OwnerUserID != userID {
		return shared.NewDomainError(shared.CodeInvalidInput, "Attached document belongs to another member")
	}
	return nil
}

func (s *ProfileService) visible(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.ProfileDocument, error) {
	pd, err := s.repos.ProfileDocuments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pd.UserID != p.UserID && !p.AtLeast(identity.RoleHR) {
		return nil, shared.ErrNotFound
	}
	return pd, nil
}
