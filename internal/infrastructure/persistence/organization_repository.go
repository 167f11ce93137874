package persistence

import (
	"context"
	"strings"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
)

// GormOrganizationRepository implements identity.OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *tenant.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *tenant.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create inserts a new organization
func (r *GormOrganizationRepository) Create(ctx context.Context, org *identity.Organization) error {
	if err := r.db.Conn(ctx).Create(models.OrganizationModelFromDomain(org)).Error; err != nil {
		return err
	}
	org.MarkPersisted()
	return nil
}

// Update saves the organization with optimistic locking
func (r *GormOrganizationRepository) Update(ctx context.Context, org *identity.Organization) error {
	if err := updateVersioned(r.db.Conn(ctx), models.OrganizationModelFromDomain(org), org.PersistedVersion()); err != nil {
		return err
	}
	org.MarkPersisted()
	return nil
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.Conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	org := model.ToDomain()
	org.MarkPersisted()
	return org, nil
}

// FindBySlug finds an organization by its login slug
func (r *GormOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*identity.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.Conn(ctx).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	org := model.ToDomain()
	org.MarkPersisted()
	return org, nil
}

// ExistsBySlug checks whether the slug is taken
func (r *GormOrganizationRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.Conn(ctx).
		Model(&models.OrganizationModel{}).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByStripeCustomerID finds the organization billed to a Stripe customer
func (r *GormOrganizationRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*identity.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.Conn(ctx).
		Where("stripe_customer_id = ?", customerID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	org := model.ToDomain()
	org.MarkPersisted()
	return org, nil
}

// FindActive returns every active organization
func (r *GormOrganizationRepository) FindActive(ctx context.Context) ([]*identity.Organization, error) {
	var rows []models.OrganizationModel
	if err := r.db.Conn(ctx).
		Where("status = ?", string(identity.OrganizationStatusActive)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orgs := make([]*identity.Organization, len(rows))
	for i := range rows {
		orgs[i] = rows[i].ToDomain()
		orgs[i].MarkPersisted()
	}
	return orgs, nil
}

// Ensure GormOrganizationRepository implements OrganizationRepository
var _ identity.OrganizationRepository = (*GormOrganizationRepository)(nil)
