package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the status of a task
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether work on the task is outstanding
func (s Status) IsOpen() bool {
	return s == StatusTodo || s == StatusInProgress
}

// Priority ranks tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether the priority is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work assigned to a member
type Task struct {
	shared.TenantAggregateRoot
	Title            string
	Description      string
	AssigneeMemberID uuid.UUID
	AssigneeUserID   uuid.UUID
	AssignedBy       uuid.UUID
	Priority         Priority
	Status           Status
	DueDate          *time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
}

// Details holds the editable fields of a task
type Details struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
}

// NewTask creates a todo task and records the assignment
func NewTask(tenantID, assigneeMemberID, assigneeUserID, assignedBy uuid.UUID, d Details) (*Task, error) {
	t := &Task{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, assignedBy),
		AssigneeMemberID:    assigneeMemberID,
		AssigneeUserID:      assigneeUserID,
		AssignedBy:          assignedBy,
		Status:              StatusTodo,
	}
	if err := t.apply(d); err != nil {
		return nil, err
	}
	t.AddDomainEvent(NewTaskAssignedEvent(t))
	return t, nil
}

// Update edits the task details. Closed tasks are read-only.
func (t *Task) Update(d Details) error {
	if !t.Status.IsOpen() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot edit a task in %s status", t.Status))
	}
	if err := t.apply(d); err != nil {
		return err
	}
	t.IncrementVersion()
	return nil
}

// Reassign moves an open task to another member
func (t *Task) Reassign(memberID, userID, by uuid.UUID) error {
	if !t.Status.IsOpen() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot reassign a task in %s status", t.Status))
	}
	if memberID == t.AssigneeMemberID {
		return nil
	}
	t.AssigneeMemberID = memberID
	t.AssigneeUserID = userID
	t.AssignedBy = by
	t.IncrementVersion()
	t.AddDomainEvent(NewTaskAssignedEvent(t))
	return nil
}

// Start moves a todo task into progress
func (t *Task) Start(now time.Time) error {
	if t.Status != StatusTodo {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot start a task in %s status", t.Status))
	}
	t.Status = StatusInProgress
	t.StartedAt = &now
	t.IncrementVersion()
	return nil
}

// Complete finishes an open task
func (t *Task) Complete(now time.Time) error {
	if !t.Status.IsOpen() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot complete a task in %s status", t.Status))
	}
	t.Status = StatusCompleted
	t.CompletedAt = &now
	t.IncrementVersion()
	t.AddDomainEvent(NewTaskStatusEvent(EventTypeTaskCompleted, t))
	return nil
}

// Cancel abandons an open task
func (t *Task) Cancel(now time.Time) error {
	if !t.Status.IsOpen() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot cancel a task in %s status", t.Status))
	}
	t.Status = StatusCancelled
	t.CancelledAt = &now
	t.IncrementVersion()
	return nil
}

// Reopen puts a completed task back in progress
func (t *Task) Reopen() error {
	if t.Status != StatusCompleted {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot reopen a task in %s status", t.Status))
	}
	t.Status = StatusInProgress
	t.CompletedAt = nil
	t.IncrementVersion()
	return nil
}

// IsOverdue reports whether an open task is past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status.IsOpen() && t.DueDate != nil && t.DueDate.Before(shared.DateOnly(now))
}

func (t *Task) apply(d Details) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Title cannot exceed 200 characters")
	}
	desc := strings.TrimSpace(d.Description)
	if len(desc) > 5000 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Description cannot exceed 5000 characters")
	}
	priority := d.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	if !priority.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid priority")
	}
	var due *time.Time
	if d.DueDate != nil {
		day := shared.DateOnly(*d.DueDate)
		due = &day
	}
	t.Title = title
	t.Description = desc
	t.Priority = priority
	t.DueDate = due
	return nil
}
