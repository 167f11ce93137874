package task

import (
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeTask is the aggregate type for tasks
const AggregateTypeTask = "Task"

// Task domain event types
const (
	EventTypeTaskAssigned  = "TaskAssigned"
	EventTypeTaskCompleted = "TaskCompleted"
)

// TaskEvent is published when a task is assigned or completed
type TaskEvent struct {
	shared.BaseDomainEvent
	AssigneeUserID uuid.UUID `json:"assignee_user_id"`
	AssignedBy     uuid.UUID `json:"assigned_by"`
	Title          string    `json:"title"`
	Priority       Priority  `json:"priority"`
}

// NewTaskAssignedEvent creates a TaskAssigned event
func NewTaskAssignedEvent(t *Task) *TaskEvent {
	return NewTaskStatusEvent(EventTypeTaskAssigned, t)
}

// NewTaskStatusEvent creates a task event of the given type
func NewTaskStatusEvent(eventType string, t *Task) *TaskEvent {
	return &TaskEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeTask, t.ID, t.TenantID),
		AssigneeUserID:  t.AssigneeUserID,
		AssignedBy:      t.AssignedBy,
		Title:           t.Title,
		Priority:        t.Priority,
	}
}
