package persistence

import (
	"context"
	"strings"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
)

// GormUserRepository implements UserRepository using GORM. Users are global
// login accounts, so queries are not tenant scoped.
type GormUserRepository struct {
	db *tenant.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *tenant.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	if err := r.db.Conn(ctx).Create(models.UserModelFromDomain(user)).Error; err != nil {
		return err
	}
	user.MarkPersisted()
	return nil
}

// Update updates an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	if err := updateVersioned(r.db.Conn(ctx), models.UserModelFromDomain(user), user.PersistedVersion()); err != nil {
		return err
	}
	user.MarkPersisted()
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.Conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	user := model.ToDomain()
	user.MarkPersisted()
	return user, nil
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.UserModel
	if err := r.db.Conn(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	user := model.ToDomain()
	user.MarkPersisted()
	return user, nil
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
