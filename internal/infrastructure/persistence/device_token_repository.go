package persistence

import (
	"context"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// GormDeviceTokenRepository implements identity.DeviceTokenRepository using GORM
type GormDeviceTokenRepository struct {
	db *tenant.DB
}

// NewGormDeviceTokenRepository creates a new GormDeviceTokenRepository
func NewGormDeviceTokenRepository(db *tenant.DB) *GormDeviceTokenRepository {
	return &GormDeviceTokenRepository{db: db}
}

// Upsert registers the token, moving it to t's user and organization if it exists
func (r *GormDeviceTokenRepository) Upsert(ctx context.Context, t *identity.DeviceToken) error {
	return r.db.Conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"tenant_id", "user_id", "platform", "last_seen_at"}),
		}).
		Create(models.DeviceTokenModelFromDomain(t)).Error
}

// DeleteByToken removes a token wherever it is registered. Push dispatch
// uses it for tokens FCM reports as unregistered.
func (r *GormDeviceTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.Conn(ctx).Where("token = ?", token).Delete(&models.DeviceTokenModel{}).Error
}

// DeleteForUser removes a token registered by the user
func (r *GormDeviceTokenRepository) DeleteForUser(ctx context.Context, userID uuid.UUID, token string) error {
	result := r.db.Scoped(ctx).Where("user_id = ? AND token = ?", userID, token).Delete(&models.DeviceTokenModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByUserIDs lists device tokens of the users in the current organization
func (r *GormDeviceTokenRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]identity.DeviceToken, error) {
	if len(userIDs) == 0 {
		return []identity.DeviceToken{}, nil
	}
	var rows []models.DeviceTokenModel
	if err := r.db.Scoped(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]identity.DeviceToken, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Ensure GormDeviceTokenRepository implements DeviceTokenRepository
var _ identity.DeviceTokenRepository = (*GormDeviceTokenRepository)(nil)
