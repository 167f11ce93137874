package persistence

import (
	"context"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// GormPreferenceRepository implements identity.PreferenceRepository using GORM
type GormPreferenceRepository struct {
	db *tenant.DB
}

// NewGormPreferenceRepository creates a new GormPreferenceRepository
func NewGormPreferenceRepository(db *tenant.DB) *GormPreferenceRepository {
	return &GormPreferenceRepository{db: db}
}

// Save inserts or replaces the preferences of a user in an organization
func (r *GormPreferenceRepository) Save(ctx context.Context, p *identity.UserPreference) error {
	return r.db.Conn(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"locale", "timezone", "push_leave", "push_payroll",
				"push_tasks", "push_chat", "push_documents", "updated_at",
			}),
		}).
		Create(models.UserPreferenceModelFromDomain(p)).Error
}

// FindByUserID finds the preferences of a user in the current organization
func (r *GormPreferenceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.UserPreference, error) {
	var model models.UserPreferenceModel
	if err := r.db.Scoped(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByUserIDs finds the preferences of several users in the current organization
func (r *GormPreferenceRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*identity.UserPreference, error) {
	if len(userIDs) == 0 {
		return []*identity.UserPreference{}, nil
	}
	var rows []models.UserPreferenceModel
	if err := r.db.Scoped(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*identity.UserPreference, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Ensure GormPreferenceRepository implements PreferenceRepository
var _ identity.PreferenceRepository = (*GormPreferenceRepository)(nil)
