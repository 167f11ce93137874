package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeaveTypeRepository persists leave types
type LeaveTypeRepository interface {
	Create(ctx context.Context, t *LeaveType) error
	Update(ctx context.Context, t *LeaveType) error
	FindByID(ctx context.Context, id uuid.UUID) (*LeaveType, error)
	FindByCode(ctx context.Context, code string) (*LeaveType, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*LeaveType, error)
}

// BalanceRepository persists leave balances
type BalanceRepository interface {
	Save(ctx context.Context, b *LeaveBalance) error
	Find(ctx context.Context, memberID, leaveTypeID uuid.UUID, year int) (*LeaveBalance, error)
	FindForMember(ctx context.Context, memberID uuid.UUID, year int) ([]*LeaveBalance, error)
	ExistsFor(ctx context.Context, memberID, leaveTypeID uuid.UUID, year int) (bool, error)
}

// RequestFilter contains filter options for listing leave requests
type RequestFilter struct {
	MemberID    *uuid.UUID
	LeaveTypeID *uuid.UUID
	Statuses    []Status
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// RequestRepository persists leave requests
type RequestRepository interface {
	Create(ctx context.Context, r *LeaveRequest) error
	Update(ctx context.Context, r *LeaveRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	FindAll(ctx context.Context, filter RequestFilter) ([]*LeaveRequest, int64, error)
	// FindForMemberInRange returns requests of the member that intersect the dates
	FindForMemberInRange(ctx context.Context, memberID uuid.UUID, from, to time.Time) ([]*LeaveRequest, error)
	CountByStatus(ctx context.Context, memberID *uuid.UUID, statuses ...Status) (int64, error)
	// CountAwaitingApproval counts open requests approver can act on now,
	// matching LeaveRequest.AwaitsApprovalFrom
	CountAwaitingApproval(ctx context.Context, approver uuid.UUID, senior bool) (int64, error)
}

// HolidayRepository persists holidays
type HolidayRepository interface {
	Create(ctx context.Context, h *Holiday) error
	Update(ctx context.Context, h *Holiday) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Holiday, error)
	// FindBetween returns dated holidays in the range plus all recurring holidays
	FindBetween(ctx context.Context, from, to time.Time) ([]*Holiday, error)
}
