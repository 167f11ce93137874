package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
)

// GormInvitationRepository implements identity.InvitationRepository using GORM
type GormInvitationRepository struct {
	db *tenant.DB
}

// NewGormInvitationRepository creates a new GormInvitationRepository
func NewGormInvitationRepository(db *tenant.DB) *GormInvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create inserts a new invitation
func (r *GormInvitationRepository) Create(ctx context.Context, inv *identity.Invitation) error {
	if err := r.db.Conn(ctx).Create(models.InvitationModelFromDomain(inv)).Error; err != nil {
		return err
	}
	inv.MarkPersisted()
	return nil
}

// Update saves the invitation with optimistic locking. Acceptance runs
// before the tenant is known, so the update is keyed on id only.
func (r *GormInvitationRepository) Update(ctx context.Context, inv *identity.Invitation) error {
	if err := updateVersioned(r.db.Conn(ctx), models.InvitationModelFromDomain(inv), inv.PersistedVersion()); err != nil {
		return err
	}
	inv.MarkPersisted()
	return nil
}

// FindByID finds an invitation of the current organization
func (r *GormInvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Invitation, error) {
	var model models.InvitationModel
	if err := r.db.Scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return loadedInvitation(&model), nil
}

// FindByTokenHash finds an invitation in any organization by its token hash
func (r *GormInvitationRepository) FindByTokenHash(ctx context.Context, hash string) (*identity.Invitation, error) {
	var model models.InvitationModel
	if err := r.db.Conn(ctx).Where("token_hash = ?", hash).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return loadedInvitation(&model), nil
}

// FindPendingByEmail finds the open invitation for an email in the current organization
func (r *GormInvitationRepository) FindPendingByEmail(ctx context.Context, email string) (*identity.Invitation, error) {
	var model models.InvitationModel
	if err := r.db.Scoped(ctx).
		Where("LOWER(email) = ? AND status = ?", strings.ToLower(strings.TrimSpace(email)), identity.InvitationStatusPending).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return loadedInvitation(&model), nil
}

// FindAll lists invitations of the current organization, newest first
func (r *GormInvitationRepository) FindAll(ctx context.Context, status *identity.InvitationStatus, page, pageSize int) ([]*identity.Invitation, int64, error) {
	query := r.db.Scoped(ctx).Model(&models.InvitationModel{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InvitationModel
	if err := paginate(query, page, pageSize).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return loadedInvitations(rows), total, nil
}

// FindExpirable returns pending invitations of every organization past their expiry
func (r *GormInvitationRepository) FindExpirable(ctx context.Context, limit int) ([]*identity.Invitation, error) {
	var rows []models.InvitationModel
	if err := r.db.Unscoped(ctx).
		Where("status = ? AND expires_at < ?", identity.InvitationStatusPending, time.Now()).
		Order("expires_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedInvitations(rows), nil
}

func loadedInvitation(model *models.InvitationModel) *identity.Invitation {
	inv := model.ToDomain()
	inv.MarkPersisted()
	return inv
}

func loadedInvitations(rows []models.InvitationModel) []*identity.Invitation {
	out := make([]*identity.Invitation, len(rows))
	for i := range rows {
		out[i] = loadedInvitation(&rows[i])
	}
	return out
}

// Ensure GormInvitationRepository implements InvitationRepository
var _ identity.InvitationRepository = (*GormInvitationRepository)(nil)
