package persistence

import (
	"context"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
)

// GormProfileRepository implements identity.ProfileRepository using GORM
type GormProfileRepository struct {
	db *tenant.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *tenant.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// Create inserts a new profile
func (r *GormProfileRepository) Create(ctx context.Context, p *identity.Profile) error {
	if err := r.db.Conn(ctx).Create(models.ProfileModelFromDomain(p)).Error; err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// Update saves the profile with optimistic locking
func (r *GormProfileRepository) Update(ctx context.Context, p *identity.Profile) error {
	if err := updateVersioned(r.db.Scoped(ctx), models.ProfileModelFromDomain(p), p.PersistedVersion()); err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// FindByUserID finds the profile of a user in the current organization
func (r *GormProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	var model models.ProfileModel
	if err := r.db.Scoped(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	p := model.ToDomain()
	p.MarkPersisted()
	return p, nil
}

// FindByUserIDs finds profiles of several users in the current organization
func (r *GormProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*identity.Profile, error) {
	if len(userIDs) == 0 {
		return []*identity.Profile{}, nil
	}
	var rows []models.ProfileModel
	if err := r.db.Scoped(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*identity.Profile, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
		out[i].MarkPersisted()
	}
	return out, nil
}

// Ensure GormProfileRepository implements ProfileRepository
var _ identity.ProfileRepository = (*GormProfileRepository)(nil)
