package persistence

import (
	"context"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeaveTypeRepository implements leave.LeaveTypeRepository using GORM
type GormLeaveTypeRepository struct {
	db *tenant.DB
}

// NewGormLeaveTypeRepository creates a new GormLeaveTypeRepository
func NewGormLeaveTypeRepository(db *tenant.DB) *GormLeaveTypeRepository {
	return &GormLeaveTypeRepository{db: db}
}

// Create inserts a new leave type
func (r *GormLeaveTypeRepository) Create(ctx context.Context, t *leave.LeaveType) error {
	if err := r.db.Conn(ctx).Create(models.LeaveTypeModelFromDomain(t)).Error; err != nil {
		return err
	}
	t.MarkPersisted()
	return nil
}

// Update saves the leave type with optimistic locking
func (r *GormLeaveTypeRepository) Update(ctx context.Context, t *leave.LeaveType) error {
	if err := updateVersioned(r.db.Scoped(ctx), models.LeaveTypeModelFromDomain(t), t.PersistedVersion()); err != nil {
		return err
	}
	t.MarkPersisted()
	return nil
}

// FindByID finds a leave type of the current organization
func (r *GormLeaveTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*leave.LeaveType, error) {
	var model models.LeaveTypeModel
	if err := r.db.Scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	t := model.ToDomain()
	t.MarkPersisted()
	return t, nil
}

// FindByCode finds a leave type by its code
func (r *GormLeaveTypeRepository) FindByCode(ctx context.Context, code string) (*leave.LeaveType, error) {
	var model models.LeaveTypeModel
	if err := r.db.Scoped(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	t := model.ToDomain()
	t.MarkPersisted()
	return t, nil
}

// FindAll lists leave types ordered by name
func (r *GormLeaveTypeRepository) FindAll(ctx context.Context, activeOnly bool) ([]*leave.LeaveType, error) {
	query := r.db.Scoped(ctx)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var rows []models.LeaveTypeModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*leave.LeaveType, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
		out[i].MarkPersisted()
	}
	return out, nil
}

// GormBalanceRepository implements leave.BalanceRepository using GORM
type GormBalanceRepository struct {
	db *tenant.DB
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *tenant.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// Save inserts a new balance or updates a loaded one with optimistic locking
func (r *GormBalanceRepository) Save(ctx context.Context, b *leave.LeaveBalance) error {
	model := models.LeaveBalanceModelFromDomain(b)
	var err error
	if !b.IsPersisted() {
		err = r.db.Conn(ctx).Create(model).Error
	} else {
		err = updateVersioned(r.db.Scoped(ctx), model, b.PersistedVersion())
	}
	if err != nil {
		return err
	}
	b.MarkPersisted()
	return nil
}

// Find finds the balance of a member for a leave type and year
func (r *GormBalanceRepository) Find(ctx context.Context, memberID, leaveTypeID uuid.UUID, year int) (*leave.LeaveBalance, error) {
	var model models.LeaveBalanceModel
	if err := r.db.Scoped(ctx).
		Where("member_id = ? AND leave_type_id = ? AND year = ?", memberID, leaveTypeID, year).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	b := model.ToDomain()
	b.MarkPersisted()
	return b, nil
}

// FindForMember lists every balance of a member for a year
func (r *GormBalanceRepository) FindForMember(ctx context.Context, memberID uuid.UUID, year int) ([]*leave.LeaveBalance, error) {
	var rows []models.LeaveBalanceModel
	if err := r.db.Scoped(ctx).
		Where("member_id = ? AND year = ?", memberID, year).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*leave.LeaveBalance, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
		out[i].MarkPersisted()
	}
	return out, nil
}

// ExistsFor checks whether a balance row exists
func (r *GormBalanceRepository) ExistsFor(ctx context.Context, memberID, leaveTypeID uuid.UUID, year int) (bool, error) {
	var count int64
	if err := r.db.Scoped(ctx).
		Model(&models.LeaveBalanceModel{}).
		Where("member_id = ? AND leave_type_id = ? AND year = ?", memberID, leaveTypeID, year).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormLeaveRequestRepository implements leave.RequestRepository using GORM
type GormLeaveRequestRepository struct {
	db *tenant.DB
}

// NewGormLeaveRequestRepository creates a new GormLeaveRequestRepository
func NewGormLeaveRequestRepository(db *tenant.DB) *GormLeaveRequestRepository {
	return &GormLeaveRequestRepository{db: db}
}

// Create inserts a new leave request
func (r *GormLeaveRequestRepository) Create(ctx context.Context, req *leave.LeaveRequest) error {
	if err := r.db.Conn(ctx).Create(models.LeaveRequestModelFromDomain(req)).Error; err != nil {
		return err
	}
	req.MarkPersisted()
	return nil
}

// Update saves the leave request with optimistic locking
func (r *GormLeaveRequestRepository) Update(ctx context.Context, req *leave.LeaveRequest) error {
	if err := updateVersioned(r.db.Scoped(ctx), models.LeaveRequestModelFromDomain(req), req.PersistedVersion()); err != nil {
		return err
	}
	req.MarkPersisted()
	return nil
}

// FindByID finds a leave request of the current organization
func (r *GormLeaveRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*leave.LeaveRequest, error) {
	var model models.LeaveRequestModel
	if err := r.db.Scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	req := model.ToDomain()
	req.MarkPersisted()
	return req, nil
}

// FindAll lists leave requests with filtering and pagination
func (r *GormLeaveRequestRepository) FindAll(ctx context.Context, filter leave.RequestFilter) ([]*leave.LeaveRequest, int64, error) {
	query := r.applyFilter(r.db.Scoped(ctx).Model(&models.LeaveRequestModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.LeaveRequestModel
	if err := paginate(query, filter.Page, filter.PageSize).
		Order(orderBy(filter.SortBy, filter.SortOrder, LeaveRequestSortFields, "start_date")).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return loadedLeaveRequests(rows), total, nil
}

func (r *GormLeaveRequestRepository) applyFilter(query *gorm.DB, filter leave.RequestFilter) *gorm.DB {
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.LeaveTypeID != nil {
		query = query.Where("leave_type_id = ?", *filter.LeaveTypeID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	// A request matches the range when it intersects it
	if filter.From != nil {
		query = query.Where("end_date >= ?", shared.DateOnly(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("start_date <= ?", shared.DateOnly(*filter.To))
	}
	return query
}

// FindForMemberInRange returns requests of the member intersecting [from, to]
func (r *GormLeaveRequestRepository) FindForMemberInRange(ctx context.Context, memberID uuid.UUID, from, to time.Time) ([]*leave.LeaveRequest, error) {
	var rows []models.LeaveRequestModel
	if err := r.db.Scoped(ctx).
		Where("member_id = ? AND start_date <= ? AND end_date >= ?", memberID, shared.DateOnly(to), shared.DateOnly(from)).
		Order("start_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedLeaveRequests(rows), nil
}

// CountByStatus counts requests in the statuses, optionally for one member
func (r *GormLeaveRequestRepository) CountByStatus(ctx context.Context, memberID *uuid.UUID, statuses ...leave.Status) (int64, error) {
	query := r.db.Scoped(ctx).Model(&models.LeaveRequestModel{}).Where("status IN ?", statuses)
	if memberID != nil {
		query = query.Where("member_id = ?", *memberID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountAwaitingApproval counts open requests approver can act on now
func (r *GormLeaveRequestRepository) CountAwaitingApproval(ctx context.Context, approver uuid.UUID, senior bool) (int64, error) {
	query := r.db.Scoped(ctx).Model(&models.LeaveRequestModel{}).
		Where("status IN ?", []leave.Status{leave.StatusPending, leave.StatusSeniorApproved}).
		Where("requester_user_id <> ?", approver)
	if !senior {
		query = query.Where("NOT (status = ? AND requires_senior = ?)", leave.StatusPending, true)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func loadedLeaveRequests(rows []models.LeaveRequestModel) []*leave.LeaveRequest {
	out := make([]*leave.LeaveRequest, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
		out[i].MarkPersisted()
	}
	return out
}

// GormHolidayRepository implements leave.HolidayRepository using GORM
type GormHolidayRepository struct {
	db *tenant.DB
}

// NewGormHolidayRepository creates a new GormHolidayRepository
func NewGormHolidayRepository(db *tenant.DB) *GormHolidayRepository {
	return &GormHolidayRepository{db: db}
}

// Create inserts a holiday
func (r *GormHolidayRepository) Create(ctx context.Context, h *leave.Holiday) error {
	return r.db.Conn(ctx).Create(models.HolidayModelFromDomain(h)).Error
}

// Update saves a holiday
func (r *GormHolidayRepository) Update(ctx context.Context, h *leave.Holiday) error {
	model := models.HolidayModelFromDomain(h)
	result := r.db.Scoped(ctx).
		Model(model).
		Select("date", "name", "translations", "recurring", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a holiday
func (r *GormHolidayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.Scoped(ctx).Where("id = ?", id).Delete(&models.HolidayModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a holiday of the current organization
func (r *GormHolidayRepository) FindByID(ctx context.Context, id uuid.UUID) (*leave.Holiday, error) {
	var model models.HolidayModel
	if err := r.db.Scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindBetween returns dated holidays in [from, to] plus every recurring holiday
func (r *GormHolidayRepository) FindBetween(ctx context.Context, from, to time.Time) ([]*leave.Holiday, error) {
	var rows []models.HolidayModel
	if err := r.db.Scoped(ctx).
		Where("(date >= ? AND date <= ?) OR recurring = ?", shared.DateOnly(from), shared.DateOnly(to), true).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*leave.Holiday, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Ensure the leave repositories implement their interfaces
var (
	_ leave.LeaveTypeRepository = (*GormLeaveTypeRepository)(nil)
	_ leave.BalanceRepository   = (*GormBalanceRepository)(nil)
	_ leave.RequestRepository   = (*GormLeaveRequestRepository)(nil)
	_ leave.HolidayRepository   = (*GormHolidayRepository)(nil)
)
