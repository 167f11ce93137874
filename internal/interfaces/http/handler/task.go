package handler

import (
	"context"
	"time"

	apptask "github.com/We2399/idea-launcher-pro-sub001/internal/application/task"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/task"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskRequest creates or edits a task
type TaskRequest struct {
	AssigneeMemberID string `json:"assignee_member_id" binding:"omitempty,uuid"`
	Title            string `json:"title" binding:"required,max=200"`
	Description      string `json:"description" binding:"omitempty,max=5000"`
	Priority         string `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	DueDate          string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

func (r TaskRequest) details() (task.Details, error) {
	due, err := parseOptionalDate(r.DueDate)
	if err != nil {
		return task.Details{}, err
	}
	return task.Details{
		Title:       r.Title,
		Description: r.Description,
		Priority:    task.Priority(r.Priority),
		DueDate:     due,
	}, nil
}

// ListTasksQuery filters tasks
type ListTasksQuery struct {
	AssigneeUserID string `form:"assignee_user_id" binding:"omitempty,uuid"`
	AssignedByMe   bool   `form:"assigned_by_me"`
	// Status is a comma separated list
	Status   string `form:"status"`
	Overdue  bool   `form:"overdue"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TaskResponse represents a task
type TaskResponse struct {
	ID               uuid.UUID     `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description,omitempty"`
	AssigneeMemberID uuid.UUID     `json:"assignee_member_id"`
	AssigneeUserID   uuid.UUID     `json:"assignee_user_id"`
	AssignedBy       uuid.UUID     `json:"assigned_by"`
	Priority         task.Priority `json:"priority"`
	Status           task.Status   `json:"status"`
	DueDate          *string       `json:"due_date,omitempty"`
	StartedAt        *time.Time    `json:"started_at,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	CancelledAt      *time.Time    `json:"cancelled_at,omitempty"`
	Version          int           `json:"version"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func toTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		AssigneeMemberID: t.AssigneeMemberID,
		AssigneeUserID:   t.AssigneeUserID,
		AssignedBy:       t.AssignedBy,
		Priority:         t.Priority,
		Status:           t.Status,
		DueDate:          formatDate(t.DueDate),
		StartedAt:        t.StartedAt,
		CompletedAt:      t.CompletedAt,
		CancelledAt:      t.CancelledAt,
		Version:          t.Version,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// TaskUseCases is what the task handler needs
type TaskUseCases interface {
	CreateTask(ctx context.Context, p identity.Principal, input apptask.CreateTaskInput) (*task.Task, error)
	UpdateTask(ctx context.Context, p identity.Principal, id uuid.UUID, input apptask.UpdateTaskInput) (*task.Task, error)
	StartTask(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error)
	CompleteTask(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error)
	CancelTask(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error)
	ReopenTask(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error)
	GetTask(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error)
	ListTasks(ctx context.Context, p identity.Principal, input apptask.ListTasksInput) (*shared.Paginated[*task.Task], error)
}

// TaskHandler serves task assignment and progress
type TaskHandler struct {
	BaseHandler
	tasks TaskUseCases
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks TaskUseCases) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create assigns a task
func (h *TaskHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req TaskRequest
	if !h.bind(c, &req) {
		return
	}
	if req.AssigneeMemberID == "" {
		h.BadRequest(c, "assignee_member_id is required")
		return
	}
	details, err := req.details()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	t, err := h.tasks.CreateTask(c.Request.Context(), p, apptask.CreateTaskInput{
		AssigneeMemberID: uuid.MustParse(req.AssigneeMemberID),
		Details:          details,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTaskResponse(t))
}

// Update edits a task, optionally reassigning it
func (h *TaskHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req TaskRequest
	if !h.bind(c, &req) {
		return
	}
	details, err := req.details()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	input := apptask.UpdateTaskInput{Details: details}
	input.AssigneeMemberID, _ = parseOptionalUUID(req.AssigneeMemberID)
	t, err := h.tasks.UpdateTask(c.Request.Context(), p, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTaskResponse(t))
}

// Get returns one task
func (h *TaskHandler) Get(c *gin.Context) { h.transition(c, h.tasks.GetTask) }

// Start moves a task to in progress
func (h *TaskHandler) Start(c *gin.Context) { h.transition(c, h.tasks.StartTask) }

// Complete finishes a task
func (h *TaskHandler) Complete(c *gin.Context) { h.transition(c, h.tasks.CompleteTask) }

// Cancel withdraws a task
func (h *TaskHandler) Cancel(c *gin.Context) { h.transition(c, h.tasks.CancelTask) }

// Reopen puts a finished task back to todo
func (h *TaskHandler) Reopen(c *gin.Context) { h.transition(c, h.tasks.ReopenTask) }

func (h *TaskHandler) transition(c *gin.Context, fn func(context.Context, identity.Principal, uuid.UUID) (*task.Task, error)) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	t, err := fn(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTaskResponse(t))
}

// List returns tasks. Employees see the tasks assigned to them.
func (h *TaskHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q ListTasksQuery
	if !h.bindQuery(c, &q) {
		return
	}
	input := apptask.ListTasksInput{
		AssignedByMe: q.AssignedByMe,
		Overdue:      q.Overdue,
		Search:       q.Search,
		Page:         q.Page,
		PageSize:     q.PageSize,
	}
	input.AssigneeUserID, _ = parseOptionalUUID(q.AssigneeUserID)
	for _, s := range splitList(q.Status) {
		input.Statuses = append(input.Statuses, task.Status(s))
	}
	page, err := h.tasks.ListTasks(c.Request.Context(), p, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginate(&h.BaseHandler, c, page, toTaskResponse)
}
