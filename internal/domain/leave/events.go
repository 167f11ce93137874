package leave

import (
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeLeaveRequest is the aggregate type for leave requests
const AggregateTypeLeaveRequest = "LeaveRequest"

// Leave domain event types
const (
	EventTypeLeaveRequestSubmitted      = "LeaveRequestSubmitted"
	EventTypeLeaveRequestSeniorApproved = "LeaveRequestSeniorApproved"
	EventTypeLeaveRequestApproved       = "LeaveRequestApproved"
	EventTypeLeaveRequestRejected       = "LeaveRequestRejected"
	EventTypeLeaveRequestCancelled      = "LeaveRequestCancelled"
)

// LeaveRequestSubmittedEvent is published when an employee submits leave
type LeaveRequestSubmittedEvent struct {
	shared.BaseDomainEvent
	MemberID        uuid.UUID       `json:"member_id"`
	RequesterUserID uuid.UUID       `json:"requester_user_id"`
	LeaveTypeID     uuid.UUID       `json:"leave_type_id"`
	Days            decimal.Decimal `json:"days"`
	RequiresSenior  bool            `json:"requires_senior"`
}

// NewLeaveRequestSubmittedEvent creates a new LeaveRequestSubmittedEvent
func NewLeaveRequestSubmittedEvent(r *LeaveRequest) *LeaveRequestSubmittedEvent {
	return &LeaveRequestSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaveRequestSubmitted, AggregateTypeLeaveRequest, r.ID, r.TenantID),
		MemberID:        r.MemberID,
		RequesterUserID: r.RequesterUserID,
		LeaveTypeID:     r.LeaveTypeID,
		Days:            r.Days,
		RequiresSenior:  r.RequiresSenior,
	}
}

// LeaveRequestDecidedEvent is published on approval, rejection and cancellation
type LeaveRequestDecidedEvent struct {
	shared.BaseDomainEvent
	RequesterUserID uuid.UUID `json:"requester_user_id"`
	DecidedBy       uuid.UUID `json:"decided_by"`
	Status          Status    `json:"status"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
}

// NewLeaveRequestDecidedEvent creates a decision event of the given type
func NewLeaveRequestDecidedEvent(r *LeaveRequest, eventType string, by uuid.UUID) *LeaveRequestDecidedEvent {
	return &LeaveRequestDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeLeaveRequest, r.ID, r.TenantID),
		RequesterUserID: r.RequesterUserID,
		DecidedBy:       by,
		Status:          r.Status,
		StartDate:       r.StartDate.Format(shared.DateLayout),
		EndDate:         r.EndDate.Format(shared.DateLayout),
	}
}
