package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPayrollRecordRepository implements payroll.RecordRepository using GORM
type GormPayrollRecordRepository struct {
	db *tenant.DB
}

// NewGormPayrollRecordRepository creates a new GormPayrollRecordRepository
func NewGormPayrollRecordRepository(db *tenant.DB) *GormPayrollRecordRepository {
	return &GormPayrollRecordRepository{db: db}
}

func preloadLineItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the record with its line items
func (r *GormPayrollRecordRepository) Create(ctx context.Context, p *payroll.PayrollRecord) error {
	if err := r.db.Conn(ctx).Create(models.PayrollRecordModelFromDomain(p)).Error; err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// Update saves the record with optimistic locking and replaces its line items
func (r *GormPayrollRecordRepository) Update(ctx context.Context, p *payroll.PayrollRecord) error {
	model := models.PayrollRecordModelFromDomain(p)
	err := r.db.WithinTx(ctx, func(ctx context.Context) error {
		if err := updateVersioned(r.db.Scoped(ctx), model, p.PersistedVersion()); err != nil {
			return err
		}
		if err := r.db.Scoped(ctx).
			Where("payroll_record_id = ?", p.ID).
			Delete(&models.PayrollLineItemModel{}).Error; err != nil {
			return err
		}
		if len(model.LineItems) == 0 {
			return nil
		}
		return r.db.Conn(ctx).Create(&model.LineItems).Error
	})
	if err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// Delete removes a record and its line items
func (r *GormPayrollRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.db.Scoped(ctx).
			Where("payroll_record_id = ?", id).
			Delete(&models.PayrollLineItemModel{}).Error; err != nil {
			return err
		}
		result := r.db.Scoped(ctx).Where("id = ?", id).Delete(&models.PayrollRecordModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a record of the current organization with its line items
func (r *GormPayrollRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.PayrollRecord, error) {
	var model models.PayrollRecordModel
	if err := r.db.Scoped(ctx).
		Preload("LineItems", preloadLineItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	p := model.ToDomain()
	p.MarkPersisted()
	return p, nil
}

// FindAll lists records with filtering and pagination
func (r *GormPayrollRecordRepository) FindAll(ctx context.Context, filter payroll.RecordFilter) ([]*payroll.PayrollRecord, int64, error) {
	query := r.db.Scoped(ctx).Model(&models.PayrollRecordModel{})
	if filter.EmployeeUserID != nil {
		query = query.Where("employee_user_id = ?", *filter.EmployeeUserID)
	}
	if filter.EmployeeMemberID != nil {
		query = query.Where("employee_member_id = ?", *filter.EmployeeMemberID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PayrollRecordModel
	if err := paginate(query, filter.Page, filter.PageSize).
		Preload("LineItems", preloadLineItems).
		Order(orderBy(filter.SortBy, filter.SortOrder, PayrollRecordSortFields, "created_at")).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return loadedPayrollRecords(rows), total, nil
}

// ExistsForPeriod checks whether the member already has a record for the month
func (r *GormPayrollRecordRepository) ExistsForPeriod(ctx context.Context, memberID uuid.UUID, year, month int) (bool, error) {
	var count int64
	if err := r.db.Scoped(ctx).
		Model(&models.PayrollRecordModel{}).
		Where("employee_member_id = ? AND year = ? AND month = ?", memberID, year, month).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByStatus counts records in the statuses, optionally for one employee
func (r *GormPayrollRecordRepository) CountByStatus(ctx context.Context, employeeUserID *uuid.UUID, statuses ...payroll.Status) (int64, error) {
	query := r.db.Scoped(ctx).Model(&models.PayrollRecordModel{}).Where("status IN ?", statuses)
	if employeeUserID != nil {
		query = query.Where("employee_user_id = ?", *employeeUserID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindAwaitingConfirmation returns records of every organization still
// waiting for the employee since before the cutoff
func (r *GormPayrollRecordRepository) FindAwaitingConfirmation(ctx context.Context, sentBefore time.Time, limit int) ([]*payroll.PayrollRecord, error) {
	var rows []models.PayrollRecordModel
	if err := r.db.Unscoped(ctx).
		Where("status = ? AND sent_at < ?", payroll.StatusSentToEmployee, sentBefore).
		Order("sent_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedPayrollRecords(rows), nil
}

func loadedPayrollRecords(rows []models.PayrollRecordModel) []*payroll.PayrollRecord {
	out := make([]*payroll.PayrollRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
		out[i].MarkPersisted()
	}
	return out
}

// GormPayrollNotificationRepository implements payroll.NotificationRepository using GORM
type GormPayrollNotificationRepository struct {
	db *tenant.DB
}

// NewGormPayrollNotificationRepository creates a new GormPayrollNotificationRepository
func NewGormPayrollNotificationRepository(db *tenant.DB) *GormPayrollNotificationRepository {
	return &GormPayrollNotificationRepository{db: db}
}

// Create inserts a notification
func (r *GormPayrollNotificationRepository) Create(ctx context.Context, n *payroll.Notification) error {
	return r.db.Conn(ctx).Create(models.PayrollNotificationModelFromDomain(n)).Error
}

// Update stores the read marker of a notification
func (r *GormPayrollNotificationRepository) Update(ctx context.Context, n *payroll.Notification) error {
	result := r.db.Scoped(ctx).
		Model(&models.PayrollNotificationModel{}).
		Where("id = ?", n.ID).
		Update("read_at", n.ReadAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a notification of the current organization
func (r *GormPayrollNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.Notification, error) {
	var model models.PayrollNotificationModel
	if err := r.db.Scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindForRecipient lists notifications of a user, newest first
func (r *GormPayrollNotificationRepository) FindForRecipient(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, pageSize int) ([]*payroll.Notification, int64, error) {
	query := r.db.Scoped(ctx).Model(&models.PayrollNotificationModel{}).Where("recipient_user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PayrollNotificationModel
	if err := paginate(query, page, pageSize).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*payroll.Notification, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// CountUnread counts unread notifications of a user
func (r *GormPayrollNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Scoped(ctx).
		Model(&models.PayrollNotificationModel{}).
		Where("recipient_user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LastReminderAt returns when the newest reminder for the record was created
func (r *GormPayrollNotificationRepository) LastReminderAt(ctx context.Context, recordID uuid.UUID) (*time.Time, error) {
	var model models.PayrollNotificationModel
	err := r.db.Conn(ctx).
		Where("payroll_record_id = ? AND kind = ?", recordID, payroll.NotificationReminder).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model.CreatedAt, nil
}

// Ensure the payroll repositories implement their interfaces
var (
	_ payroll.RecordRepository       = (*GormPayrollRecordRepository)(nil)
	_ payroll.NotificationRepository = (*GormPayrollNotificationRepository)(nil)
)
