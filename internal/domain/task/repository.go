package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter contains filter options for listing tasks
type Filter struct {
	AssigneeUserID *uuid.UUID
	AssignedBy     *uuid.UUID
	Statuses       []Status
	// OverdueAt keeps open tasks due before this day
	OverdueAt *time.Time
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Repository persists tasks
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindAll(ctx context.Context, filter Filter) ([]*Task, int64, error)
	CountOpen(ctx context.Context, assigneeUserID uuid.UUID) (int64, error)
}
