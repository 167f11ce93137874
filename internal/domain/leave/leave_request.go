package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the status of a leave request
type Status string

const (
	StatusPending        Status = "pending"
	StatusSeniorApproved Status = "senior_approved"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
	StatusCancelled      Status = "cancelled"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSeniorApproved, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// BlocksOverlap reports whether a request in this status reserves its dates
func (s Status) BlocksOverlap() bool {
	return s == StatusPending || s == StatusSeniorApproved || s == StatusApproved
}

// IsOpen reports whether the request still awaits a decision
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusSeniorApproved
}

// LeaveRequest is an employee's application for time off
type LeaveRequest struct {
	shared.TenantAggregateRoot
	MemberID         uuid.UUID
	RequesterUserID  uuid.UUID
	LeaveTypeID      uuid.UUID
	StartDate        time.Time
	EndDate          time.Time
	StartHalfDay     bool
	EndHalfDay       bool
	Days             decimal.Decimal
	Reason           string
	Status           Status
	RequiresSenior   bool
	SeniorApprovedBy *uuid.UUID
	SeniorApprovedAt *time.Time
	ApprovedBy       *uuid.UUID
	ApprovedAt       *time.Time
	RejectedBy       *uuid.UUID
	RejectedAt       *time.Time
	RejectionReason  string
	CancelledBy      *uuid.UUID
	CancelledAt      *time.Time
}

// NewLeaveRequestInput holds the fields to create a leave request
type NewLeaveRequestInput struct {
	TenantID        uuid.UUID
	MemberID        uuid.UUID
	RequesterUserID uuid.UUID
	LeaveType       *LeaveType
	Range           shared.DateRange
	StartHalfDay    bool
	EndHalfDay      bool
	Days            decimal.Decimal
	Reason          string
}

// CheckSingleYear rejects ranges crossing a calendar year boundary, since
// each request draws from one year's balance.
func CheckSingleYear(r shared.DateRange) error {
	if r.Start.Year() != r.End.Year() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Leave requests cannot span calendar years; submit one request per year")
	}
	return nil
}

// NewLeaveRequest creates a pending request. Days must already be computed
// from the work calendar.
func NewLeaveRequest(in NewLeaveRequestInput) (*LeaveRequest, error) {
	if in.LeaveType == nil || !in.LeaveType.Active {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Leave type is not available")
	}
	if in.Range.End.Before(in.Range.Start) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "End date cannot be before start date")
	}
	if err := CheckSingleYear(in.Range); err != nil {
		return nil, err
	}
	if !in.Days.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "The selected dates contain no working days")
	}
	reason := strings.TrimSpace(in.Reason)
	if len(reason) > 1000 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Reason cannot exceed 1000 characters")
	}

	r := &LeaveRequest{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(in.TenantID, in.RequesterUserID),
		MemberID:            in.MemberID,
		RequesterUserID:     in.RequesterUserID,
		LeaveTypeID:         in.LeaveType.ID,
		StartDate:           in.Range.Start,
		EndDate:             in.Range.End,
		StartHalfDay:        in.StartHalfDay,
		EndHalfDay:          in.EndHalfDay,
		Days:                in.Days,
		Reason:              reason,
		Status:              StatusPending,
		RequiresSenior:      in.LeaveType.RequiresSeniorApproval,
	}
	r.AddDomainEvent(NewLeaveRequestSubmittedEvent(r))
	return r, nil
}

// Range returns the requested dates
func (r *LeaveRequest) Range() shared.DateRange {
	return shared.DateRange{Start: r.StartDate, End: r.EndDate}
}

// Year returns the balance year the request draws from
func (r *LeaveRequest) Year() int {
	return r.StartDate.Year()
}

// CanSeniorApprove reports whether the delegated approval step applies
func (r *LeaveRequest) CanSeniorApprove() bool {
	return r.Status == StatusPending && r.RequiresSenior
}

// AwaitsApprovalFrom reports whether approver, holding the senior role or
// not, can act on the request now. Requesters never act on their own.
func (r *LeaveRequest) AwaitsApprovalFrom(approver uuid.UUID, senior bool) bool {
	if !r.Status.IsOpen() || r.RequesterUserID == approver {
		return false
	}
	return senior || !r.CanSeniorApprove()
}

// CanApprove reports whether a final approval is possible now
func (r *LeaveRequest) CanApprove() bool {
	if r.RequiresSenior {
		return r.Status == StatusSeniorApproved
	}
	return r.Status == StatusPending
}

// SeniorApprove records the delegated first approval
func (r *LeaveRequest) SeniorApprove(by uuid.UUID, now time.Time) error {
	if err := r.checkNotSelf(by); err != nil {
		return err
	}
	if !r.CanSeniorApprove() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot senior-approve a leave request in %s status", r.Status))
	}
	r.Status = StatusSeniorApproved
	r.SeniorApprovedBy = &by
	r.SeniorApprovedAt = &now
	r.IncrementVersion()
	r.AddDomainEvent(NewLeaveRequestDecidedEvent(r, EventTypeLeaveRequestSeniorApproved, by))
	return nil
}

// Approve records the final approval
func (r *LeaveRequest) Approve(by uuid.UUID, now time.Time) error {
	if err := r.checkNotSelf(by); err != nil {
		return err
	}
	if !r.CanApprove() {
		if r.RequiresSenior && r.Status == StatusPending {
			return shared.NewDomainError(shared.CodeInvalidState, "This leave type requires senior approval first")
		}
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot approve a leave request in %s status", r.Status))
	}
	r.Status = StatusApproved
	r.ApprovedBy = &by
	r.ApprovedAt = &now
	r.IncrementVersion()
	r.AddDomainEvent(NewLeaveRequestDecidedEvent(r, EventTypeLeaveRequestApproved, by))
	return nil
}

// Reject declines an open request
func (r *LeaveRequest) Reject(by uuid.UUID, reason string, now time.Time) error {
	if !r.Status.IsOpen() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot reject a leave request in %s status", r.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Rejection reason is required")
	}
	r.Status = StatusRejected
	r.RejectedBy = &by
	r.RejectedAt = &now
	r.RejectionReason = reason
	r.IncrementVersion()
	r.AddDomainEvent(NewLeaveRequestDecidedEvent(r, EventTypeLeaveRequestRejected, by))
	return nil
}

// Cancel withdraws the request. Open requests may be cancelled by their
// requester. Approved requests only when allowApproved is set. It returns
// the status the request had before cancellation.
func (r *LeaveRequest) Cancel(by uuid.UUID, allowApproved bool, now time.Time) (Status, error) {
	prev := r.Status
	switch {
	case r.Status.IsOpen():
		if by != r.RequesterUserID && !allowApproved {
			return prev, shared.NewDomainError(shared.CodeForbidden, "Only the requester can cancel this leave request")
		}
	case r.Status == StatusApproved:
		if !allowApproved {
			return prev, shared.NewDomainError(shared.CodeForbidden, "Approved leave can only be cancelled by HR")
		}
	default:
		return prev, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot cancel a leave request in %s status", r.Status))
	}
	r.Status = StatusCancelled
	r.CancelledBy = &by
	r.CancelledAt = &now
	r.IncrementVersion()
	r.AddDomainEvent(NewLeaveRequestDecidedEvent(r, EventTypeLeaveRequestCancelled, by))
	return prev, nil
}

func (r *LeaveRequest) checkNotSelf(by uuid.UUID) error {
	if by == r.RequesterUserID {
		return shared.ErrSelfApproval
	}
	return nil
}

// FindOverlap returns the first existing request of the same member whose
// dates intersect candidate and whose status reserves the dates.
// Requests with the exclude ID are skipped.
func FindOverlap(candidate shared.DateRange, existing []*LeaveRequest, exclude uuid.UUID) *LeaveRequest {
	for _, e := range existing {
		if e == nil || e.ID == exclude || !e.Status.BlocksOverlap() {
			continue
		}
		if candidate.Overlaps(e.Range()) {
			return e
		}
	}
	return nil
}

// OverlapError builds the LEAVE_OVERLAP error for a conflicting request
func OverlapError(conflict *LeaveRequest) error {
	return shared.NewDomainError(shared.CodeLeaveOverlap,
		fmt.Sprintf("Leave request overlaps an existing %s request from %s to %s",
			conflict.Status, conflict.StartDate.Format(shared.DateLayout), conflict.EndDate.Format(shared.DateLayout)))
}
