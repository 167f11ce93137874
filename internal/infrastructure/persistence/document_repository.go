package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// hasUserComment matches documents with at least one person-written comment
const hasUserComment = "EXISTS (SELECT 1 FROM document_comments c WHERE c.document_id = document_storage.id AND c.type = ?)"

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *tenant.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *tenant.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Create inserts a document version
func (r *GormDocumentRepository) Create(ctx context.Context, d *document.Document) error {
	if err := r.db.Conn(ctx).Create(models.DocumentModelFromDomain(d)).Error; err != nil {
		return err
	}
	d.MarkPersisted()
	return nil
}

// Update saves the document version with optimistic locking
func (r *GormDocumentRepository) Update(ctx context.Context, d *document.Document) error {
	if err := updateVersioned(r.db.Scoped(ctx), models.DocumentModelFromDomain(d), d.PersistedVersion()); err != nil {
		return err
	}
	d.MarkPersisted()
	return nil
}

// FindByID finds a document version of the current organization
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var model models.DocumentModel
	if err := r.db.Scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return loadedDocument(&model), nil
}

// FindAll lists document versions with filtering and pagination
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter document.Filter) ([]*document.Document, int64, error) {
	query := r.applyFilter(r.db.Scoped(ctx).Model(&models.DocumentModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DocumentModel
	if err := paginate(query, filter.Page, filter.PageSize).
		Order(orderBy(filter.SortBy, filter.SortOrder, DocumentSortFields, "created_at")).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return loadedDocuments(rows), total, nil
}

func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter document.Filter) *gorm.DB {
	if filter.OwnerUserID != nil {
		query = query.Where("owner_user_id = ?", *filter.OwnerUserID)
	}
	if filter.OwnerMemberID != nil {
		query = query.Where("owner_member_id = ?", *filter.OwnerMemberID)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.CurrentOnly {
		query = query.Where("status <> ?", document.StatusSuperseded)
	}
	if filter.WithComments {
		query = query.Where(hasUserComment, document.CommentTypeUser)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(file_name) LIKE ?", like, like)
	}
	return query
}

// FindVersions returns every version of a chain, oldest first
func (r *GormDocumentRepository) FindVersions(ctx context.Context, rootID uuid.UUID) ([]*document.Document, error) {
	var rows []models.DocumentModel
	if err := r.db.Scoped(ctx).
		Where("root_id = ?", rootID).
		Order("doc_version ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedDocuments(rows), nil
}

// FindInFlight finds the version of a chain still being uploaded or reviewed
func (r *GormDocumentRepository) FindInFlight(ctx context.Context, rootID uuid.UUID) (*document.Document, error) {
	return r.findInChain(ctx, rootID, document.StatusPendingUpload, document.StatusPendingReview)
}

// FindLatest finds the newest version of a chain whatever its status
func (r *GormDocumentRepository) FindLatest(ctx context.Context, rootID uuid.UUID) (*document.Document, error) {
	return r.findInChain(ctx, rootID, document.StatusPendingUpload, document.StatusPendingReview,
		document.StatusApproved, document.StatusRejected, document.StatusSuperseded)
}

// FindApproved finds the approved version of a chain
func (r *GormDocumentRepository) FindApproved(ctx context.Context, rootID uuid.UUID) (*document.Document, error) {
	return r.findInChain(ctx, rootID, document.StatusApproved)
}

func (r *GormDocumentRepository) findInChain(ctx context.Context, rootID uuid.UUID, statuses ...document.Status) (*document.Document, error) {
	var model models.DocumentModel
	if err := r.db.Scoped(ctx).
		Where("root_id = ? AND status IN ?", rootID, statuses).
		Order("doc_version DESC").
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return loadedDocument(&model), nil
}

// CountByStatus counts document versions in the statuses, optionally for one owner
func (r *GormDocumentRepository) CountByStatus(ctx context.Context, ownerUserID *uuid.UUID, statuses ...document.Status) (int64, error) {
	query := r.db.Scoped(ctx).Model(&models.DocumentModel{}).Where("status IN ?", statuses)
	if ownerUserID != nil {
		query = query.Where("owner_user_id = ?", *ownerUserID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindCommentedAcrossOrganizations returns current documents of every
// organization with user comments newer than since
func (r *GormDocumentRepository) FindCommentedAcrossOrganizations(ctx context.Context, since time.Time, limit int) ([]*document.Document, error) {
	var rows []models.DocumentModel
	if err := r.db.Unscoped(ctx).
		Where("status <> ?", document.StatusSuperseded).
		Where("EXISTS (SELECT 1 FROM document_comments c WHERE c.document_id = document_storage.id AND c.type = ? AND c.created_at > ?)",
			document.CommentTypeUser, since).
		Order("tenant_id ASC, created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedDocuments(rows), nil
}

func loadedDocument(model *models.DocumentModel) *document.Document {
	d := model.ToDomain()
	d.MarkPersisted()
	return d
}

func loadedDocuments(rows []models.DocumentModel) []*document.Document {
	out := make([]*document.Document, len(rows))
	for i := range rows {
		out[i] = loadedDocument(&rows[i])
	}
	return out
}

// GormCommentRepository implements document.CommentRepository using GORM
type GormCommentRepository struct {
	db *tenant.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *tenant.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create inserts a comment
func (r *GormCommentRepository) Create(ctx context.Context, c *document.Comment) error {
	return r.db.Conn(ctx).Create(models.DocumentCommentModelFromDomain(c)).Error
}

// FindByDocument returns the thread of a document in creation order
func (r *GormCommentRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]document.Comment, error) {
	var rows []models.DocumentCommentModel
	if err := r.db.Scoped(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]document.Comment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByDocuments returns the threads of several documents keyed by document id.
// The tenant filter is taken from the documents themselves so the scheduler
// can call it without an organization on the context.
func (r *GormCommentRepository) FindByDocuments(ctx context.Context, documentIDs []uuid.UUID) (map[uuid.UUID][]document.Comment, error) {
	out := make(map[uuid.UUID][]document.Comment, len(documentIDs))
	if len(documentIDs) == 0 {
		return out, nil
	}
	query := r.db.Conn(ctx)
	if tenantID, err := r.db.TenantID(ctx); err == nil {
		query = query.Where("tenant_id = ?", tenantID)
	}
	var rows []models.DocumentCommentModel
	if err := query.
		Where("document_id IN ?", documentIDs).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		c := rows[i].ToDomain()
		out[c.DocumentID] = append(out[c.DocumentID], c)
	}
	return out, nil
}

// GormProfileDocumentRepository implements document.ProfileDocumentRepository using GORM
type GormProfileDocumentRepository struct {
	db *tenant.DB
}

// NewGormProfileDocumentRepository creates a new GormProfileDocumentRepository
func NewGormProfileDocumentRepository(db *tenant.DB) *GormProfileDocumentRepository {
	return &GormProfileDocumentRepository{db: db}
}

// Create inserts a profile document
func (r *GormProfileDocumentRepository) Create(ctx context.Context, p *document.ProfileDocument) error {
	if err := r.db.Conn(ctx).Create(models.ProfileDocumentModelFromDomain(p)).Error; err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// Update saves a profile document with optimistic locking
func (r *GormProfileDocumentRepository) Update(ctx context.Context, p *document.ProfileDocument) error {
	if err := updateVersioned(r.db.Scoped(ctx), models.ProfileDocumentModelFromDomain(p), p.PersistedVersion()); err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// Delete removes a profile document
func (r *GormProfileDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.Scoped(ctx).Where("id = ?", id).Delete(&models.ProfileDocumentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a profile document of the current organization
func (r *GormProfileDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.ProfileDocument, error) {
	var model models.ProfileDocumentModel
	if err := r.db.Scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	p := model.ToDomain()
	p.MarkPersisted()
	return p, nil
}

// FindByUserID lists the profile documents of a user
func (r *GormProfileDocumentRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*document.ProfileDocument, error) {
	var rows []models.ProfileDocumentModel
	if err := r.db.Scoped(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedProfileDocuments(rows), nil
}

// FindExpiringBetween lists profile documents expiring within [from, to]
func (r *GormProfileDocumentRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*document.ProfileDocument, error) {
	return r.findExpiring(r.db.Scoped(ctx), from, to)
}

// FindExpiringAcrossOrganizations is FindExpiringBetween for every organization
func (r *GormProfileDocumentRepository) FindExpiringAcrossOrganizations(ctx context.Context, from, to time.Time) ([]*document.ProfileDocument, error) {
	return r.findExpiring(r.db.Unscoped(ctx), from, to)
}

func (r *GormProfileDocumentRepository) findExpiring(query *gorm.DB, from, to time.Time) ([]*document.ProfileDocument, error) {
	var rows []models.ProfileDocumentModel
	if err := query.
		Where("expires_on IS NOT NULL AND expires_on >= ? AND expires_on <= ?", shared.DateOnly(from), shared.DateOnly(to)).
		Order("expires_on ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedProfileDocuments(rows), nil
}

func loadedProfileDocuments(rows []models.ProfileDocumentModel) []*document.ProfileDocument {
	out := make([]*document.ProfileDocument, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
		out[i].MarkPersisted()
	}
	return out
}

// Ensure the document repositories implement their interfaces
var (
	_ document.Repository                = (*GormDocumentRepository)(nil)
	_ document.CommentRepository         = (*GormCommentRepository)(nil)
	_ document.ProfileDocumentRepository = (*GormProfileDocumentRepository)(nil)
)
