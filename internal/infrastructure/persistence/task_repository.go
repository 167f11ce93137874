package persistence

import (
	"context"
	"strings"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/task"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
)

var openTaskStatuses = []task.Status{task.StatusTodo, task.StatusInProgress}

// GormTaskRepository implements task.Repository using GORM
type GormTaskRepository struct {
	db *tenant.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *tenant.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a task
func (r *GormTaskRepository) Create(ctx context.Context, t *task.Task) error {
	if err := r.db.Conn(ctx).Create(models.TaskModelFromDomain(t)).Error; err != nil {
		return err
	}
	t.MarkPersisted()
	return nil
}

// Update saves a task with optimistic locking
func (r *GormTaskRepository) Update(ctx context.Context, t *task.Task) error {
	if err := updateVersioned(r.db.Scoped(ctx), models.TaskModelFromDomain(t), t.PersistedVersion()); err != nil {
		return err
	}
	t.MarkPersisted()
	return nil
}

// FindByID finds a task of the current organization
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	var model models.TaskModel
	if err := r.db.Scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	t := model.ToDomain()
	t.MarkPersisted()
	return t, nil
}

// FindAll lists tasks with filtering and pagination
func (r *GormTaskRepository) FindAll(ctx context.Context, filter task.Filter) ([]*task.Task, int64, error) {
	query := r.db.Scoped(ctx).Model(&models.TaskModel{})
	if filter.AssigneeUserID != nil {
		query = query.Where("assignee_user_id = ?", *filter.AssigneeUserID)
	}
	if filter.AssignedBy != nil {
		query = query.Where("assigned_by = ?", *filter.AssignedBy)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.OverdueAt != nil {
		query = query.Where("due_date < ? AND status IN ?", shared.DateOnly(*filter.OverdueAt), openTaskStatuses)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TaskModel
	if err := paginate(query, filter.Page, filter.PageSize).
		Order(orderBy(filter.SortBy, filter.SortOrder, TaskSortFields, "created_at")).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*task.Task, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
		out[i].MarkPersisted()
	}
	return out, total, nil
}

// CountOpen counts todo and in-progress tasks of an assignee
func (r *GormTaskRepository) CountOpen(ctx context.Context, assigneeUserID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Scoped(ctx).
		Model(&models.TaskModel{}).
		Where("assignee_user_id = ? AND status IN ?", assigneeUserID, openTaskStatuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormTaskRepository implements task.Repository
var _ task.Repository = (*GormTaskRepository)(nil)
