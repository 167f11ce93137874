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

// GormUserRoleRepository implements identity.UserRoleRepository using GORM.
// Methods take the organization explicitly because role lookups run in
// middleware before the tenant is on the context.
type GormUserRoleRepository struct {
	db *tenant.DB
}

// NewGormUserRoleRepository creates a new GormUserRoleRepository
func NewGormUserRoleRepository(db *tenant.DB) *GormUserRoleRepository {
	return &GormUserRoleRepository{db: db}
}

// Grant inserts the role or refreshes the senior flag of an existing grant
func (r *GormUserRoleRepository) Grant(ctx context.Context, role *identity.UserRole) error {
	return r.db.Conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "user_id"}, {Name: "role"}},
			DoUpdates: clause.AssignmentColumns([]string{"senior", "granted_by"}),
		}).
		Create(models.UserRoleModelFromDomain(role)).Error
}

// Revoke removes one role from a user
func (r *GormUserRoleRepository) Revoke(ctx context.Context, tenantID, userID uuid.UUID, role identity.Role) error {
	result := r.db.Conn(ctx).
		Where("tenant_id = ? AND user_id = ? AND role = ?", tenantID, userID, role).
		Delete(&models.UserRoleModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByUser lists the roles a user holds in an organization
func (r *GormUserRoleRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]identity.UserRole, error) {
	var rows []models.UserRoleModel
	if err := r.db.Conn(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]identity.UserRole, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindUserIDsWithRole lists users holding any of the roles
func (r *GormUserRoleRepository) FindUserIDsWithRole(ctx context.Context, tenantID uuid.UUID, roles ...identity.Role) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.Conn(ctx).
		Model(&models.UserRoleModel{}).
		Distinct("user_id").
		Where("tenant_id = ? AND role IN ?", tenantID, roles).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CountWithRole counts users holding the role
func (r *GormUserRoleRepository) CountWithRole(ctx context.Context, tenantID uuid.UUID, role identity.Role) (int64, error) {
	var count int64
	if err := r.db.Conn(ctx).
		Model(&models.UserRoleModel{}).
		Where("tenant_id = ? AND role = ?", tenantID, role).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormUserRoleRepository implements UserRoleRepository
var _ identity.UserRoleRepository = (*GormUserRoleRepository)(nil)
