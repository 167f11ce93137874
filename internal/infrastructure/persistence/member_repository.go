package persistence

import (
	"context"
	"strings"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMemberRepository implements identity.MemberRepository using GORM
type GormMemberRepository struct {
	db *tenant.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *tenant.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// Create inserts a new member
func (r *GormMemberRepository) Create(ctx context.Context, m *identity.Member) error {
	if err := r.db.Conn(ctx).Create(models.MemberModelFromDomain(m)).Error; err != nil {
		return err
	}
	m.MarkPersisted()
	return nil
}

// Update saves the member with optimistic locking
func (r *GormMemberRepository) Update(ctx context.Context, m *identity.Member) error {
	if err := updateVersioned(r.db.Scoped(ctx), models.MemberModelFromDomain(m), m.PersistedVersion()); err != nil {
		return err
	}
	m.MarkPersisted()
	return nil
}

// FindByID finds a member of the current organization
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Member, error) {
	var model models.MemberModel
	if err := r.db.Scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return loadedMember(&model), nil
}

// FindByUserID finds the membership of a user in the current organization
func (r *GormMemberRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Member, error) {
	var model models.MemberModel
	if err := r.db.Scoped(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return loadedMember(&model), nil
}

// FindByUserIDAcrossOrganizations lists every membership of a user
func (r *GormMemberRepository) FindByUserIDAcrossOrganizations(ctx context.Context, userID uuid.UUID) ([]*identity.Member, error) {
	var rows []models.MemberModel
	if err := r.db.Conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedMembers(rows), nil
}

// FindAll returns members of the current organization with pagination
func (r *GormMemberRepository) FindAll(ctx context.Context, filter identity.MemberFilter) ([]*identity.Member, int64, error) {
	query := r.applyFilter(r.db.Scoped(ctx).Model(&models.MemberModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.MemberModel
	if err := paginate(query, filter.Page, filter.PageSize).
		Order(orderBy(filter.SortBy, filter.SortOrder, MemberSortFields, "created_at")).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return loadedMembers(rows), total, nil
}

func (r *GormMemberRepository) applyFilter(query *gorm.DB, filter identity.MemberFilter) *gorm.DB {
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		query = query.Where("LOWER(employee_number) LIKE ? OR LOWER(department) LIKE ? OR LOWER(position) LIKE ?", like, like, like)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.ManagerID != nil {
		query = query.Where("manager_id = ?", *filter.ManagerID)
	}
	return query
}

// FindByIDs finds members of the current organization by ID
func (r *GormMemberRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Member, error) {
	if len(ids) == 0 {
		return []*identity.Member{}, nil
	}
	var rows []models.MemberModel
	if err := r.db.Scoped(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedMembers(rows), nil
}

// FindActive lists the active members of the current organization
func (r *GormMemberRepository) FindActive(ctx context.Context) ([]*identity.Member, error) {
	var rows []models.MemberModel
	if err := r.db.Scoped(ctx).
		Where("status = ?", identity.MemberStatusActive).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedMembers(rows), nil
}

func loadedMember(model *models.MemberModel) *identity.Member {
	m := model.ToDomain()
	m.MarkPersisted()
	return m
}

func loadedMembers(rows []models.MemberModel) []*identity.Member {
	out := make([]*identity.Member, len(rows))
	for i := range rows {
		out[i] = loadedMember(&rows[i])
	}
	return out
}

// Ensure GormMemberRepository implements MemberRepository
var _ identity.MemberRepository = (*GormMemberRepository)(nil)
