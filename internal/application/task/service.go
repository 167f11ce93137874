// Package task contains the task assignment use cases.
package task

import (
	"context"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/task"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateTaskInput contains the input for assigning a task
type CreateTaskInput struct {
	AssigneeMemberID uuid.UUID
	Details          task.Details
}

// UpdateTaskInput edits a task and optionally moves it to another member
type UpdateTaskInput struct {
	Details          task.Details
	AssigneeMemberID *uuid.UUID
}

// ListTasksInput filters the task list
type ListTasksInput struct {
	AssigneeUserID *uuid.UUID
	// AssignedByMe lists the tasks the caller handed out
	AssignedByMe bool
	Statuses     []task.Status
	Overdue      bool
	Search       string
	Page         int
	PageSize     int
}

// Service runs task assignment and progress
type Service struct {
	tasks   task.Repository
	members identity.MemberRepository
	events  shared.EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new task service
func NewService(tasks task.Repository, members identity.MemberRepository, events shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{tasks: tasks, members: members, events: events, logger: logger, now: time.Now}
}

// CreateTask assigns a task. HR may assign to anyone, managers to their
// direct reports.
func (s *Service) CreateTask(ctx context.Context, p identity.Principal, input CreateTaskInput) (*task.Task, error) {
	assignee, err := s.assignable(ctx, p, input.AssigneeMemberID)
	if err != nil {
		return nil, err
	}
	t, err := task.NewTask(p.TenantID, assignee.ID, assignee.UserID, p.UserID, input.Details)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, t)
	s.logger.Info("Task assigned",
		zap.String("task_id", t.ID.String()),
		zap.String("assignee_user_id", t.AssigneeUserID.String()),
		zap.String("by", p.UserID.String()))
	return t, nil
}

// UpdateTask edits an open task. The assignee may edit the details, only
// the assigner or hr+ may reassign.
func (s *Service) UpdateTask(ctx context.Context, p identity.Principal, id uuid.UUID, input UpdateTaskInput) (*task.Task, error) {
	t, err := s.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if input.AssigneeMemberID != nil && *input.AssigneeMemberID != t.AssigneeMemberID {
		if !s.canManage(p, t) {
			return nil, shared.ErrForbidden
		}
		assignee, err := s.assignable(ctx, p, *input.AssigneeMemberID)
		if err != nil {
			return nil, err
		}
		if err := t.Reassign(assignee.ID, assignee.UserID, p.UserID); err != nil {
			return nil, err
		}
	}
	if err := t.Update(input.Details); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, t)
	return t, nil
}

// StartTask moves the caller's todo task into progress
func (s *Service) StartTask(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error) {
	return s.asAssignee(ctx, p, id, func(t *task.Task) error { return t.Start(s.now()) })
}

// CompleteTask finishes the caller's task
func (s *Service) CompleteTask(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error) {
	return s.asAssignee(ctx, p, id, func(t *task.Task) error { return t.Complete(s.now()) })
}

// CancelTask abandons a task (the assigner or hr+)
func (s *Service) CancelTask(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error) {
	t, err := s.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(p, t) {
		return nil, shared.ErrForbidden
	}
	return s.save(ctx, t, t.Cancel(s.now()))
}

// ReopenTask moves a completed task back into progress
func (s *Service) ReopenTask(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error) {
	t, err := s.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, t, t.Reopen())
}

// GetTask returns a task the caller is involved in
func (s *Service) GetTask(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error) {
	return s.visible(ctx, p, id)
}

// ListTasks lists tasks. Below hr the caller sees the tasks assigned to
// them, or with AssignedByMe the ones they handed out.
func (s *Service) ListTasks(ctx context.Context, p identity.Principal, input ListTasksInput) (*shared.Paginated[*task.Task], error) {
	for _, st := range input.Statuses {
		if !st.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid task status: "+string(st))
		}
	}
	norm := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	filter := task.Filter{
		AssigneeUserID: input.AssigneeUserID,
		Statuses:       input.Statuses,
		Search:         input.Search,
		Page:           norm.Page,
		PageSize:       norm.PageSize,
		SortBy:         "due_date",
		SortOrder:      "asc",
	}
	if input.AssignedByMe {
		self := p.UserID
		filter.AssignedBy = &self
	}
	if !p.AtLeast(identity.RoleHR) && !input.AssignedByMe {
		self := p.UserID
		filter.AssigneeUserID = &self
	}
	if input.Overdue {
		today := shared.DateOnly(s.now())
		filter.OverdueAt = &today
	}
	items, total, err := s.tasks.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := shared.NewPaginated(items, total, norm.Page, norm.PageSize)
	return &out, nil
}

func (s *Service) asAssignee(ctx context.Context, p identity.Principal, id uuid.UUID, apply func(t *task.Task) error) (*task.Task, error) {
	t, err := s.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if t.AssigneeUserID != p.UserID {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only the assignee can change progress")
	}
	return s.save(ctx, t, apply(t))
}

func (s *Service) save(ctx context.Context, t *task.Task, applyErr error) (*task.Task, error) {
	if applyErr != nil {
		return nil, applyErr
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, t)
	return t, nil
}

// assignable loads an active member the caller may assign work to
func (s *Service) assignable(ctx context.Context, p identity.Principal, memberID uuid.UUID) (*identity.Member, error) {
	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Tasks can only be assigned to active members")
	}
	if p.AtLeast(identity.RoleHR) {
		return m, nil
	}
	if m.ManagerID == nil || *m.ManagerID != p.MemberID {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only hr or the member's manager can assign tasks")
	}
	return m, nil
}

func (s *Service) canManage(p identity.Principal, t *task.Task) bool {
	return t.AssignedBy == p.UserID || p.AtLeast(identity.RoleHR)
}

func (s *Service) visible(ctx context.Context, p identity.Principal, id uuid.UUID) (*task.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.AssigneeUserID != p.UserID && !s.canManage(p, t) {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

func (s *Service) publish(ctx context.Context, t *task.Task) {
	if err := shared.PublishAndClear(ctx, s.events, t); err != nil {
		s.logger.Warn("Failed to publish task events",
			zap.String("task_id", t.ID.String()),
			zap.Error(err))
	}
}
