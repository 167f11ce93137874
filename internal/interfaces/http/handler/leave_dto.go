package handler

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLeaveTypeRequest defines a leave type
type CreateLeaveTypeRequest struct {
	Name                   string          `json:"name" binding:"required,max=100"`
	Code                   string          `json:"code" binding:"required,max=30"`
	Paid                   bool            `json:"paid"`
	RequiresSeniorApproval bool            `json:"requires_senior_approval"`
	DefaultAllowance       decimal.Decimal `json:"default_allowance"`
	// EligibilityRule is an optional CEL expression over days, tenure_days,
	// remaining and leave_code
	EligibilityRule string `json:"eligibility_rule" binding:"omitempty,max=1000"`
}

// UpdateLeaveTypeRequest changes a leave type
type UpdateLeaveTypeRequest struct {
	Name                   *string          `json:"name" binding:"omitempty,max=100"`
	Paid                   *bool            `json:"paid"`
	RequiresSeniorApproval *bool            `json:"requires_senior_approval"`
	DefaultAllowance       *decimal.Decimal `json:"default_allowance"`
	EligibilityRule        *string          `json:"eligibility_rule" binding:"omitempty,max=1000"`
	Active                 *bool            `json:"active"`
}

// LeaveTypeResponse represents a leave type
type LeaveTypeResponse struct {
	ID                     uuid.UUID       `json:"id"`
	Name                   string          `json:"name"`
	Code                   string          `json:"code"`
	Paid                   bool            `json:"paid"`
	RequiresSeniorApproval bool            `json:"requires_senior_approval"`
	DefaultAllowance       decimal.Decimal `json:"default_allowance"`
	EligibilityRule        string          `json:"eligibility_rule,omitempty"`
	Active                 bool            `json:"active"`
}

func toLeaveTypeResponse(t *leave.LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                     t.ID,
		Name:                   t.Name,
		Code:                   t.Code,
		Paid:                   t.Paid,
		RequiresSeniorApproval: t.RequiresSeniorApproval,
		DefaultAllowance:       t.DefaultAllowance,
		EligibilityRule:        t.EligibilityRule,
		Active:                 t.Active,
	}
}

// AdjustBalanceRequest sets one entitlement
type AdjustBalanceRequest struct {
	MemberID    string          `json:"member_id" binding:"required,uuid"`
	LeaveTypeID string          `json:"leave_type_id" binding:"required,uuid"`
	Year        int             `json:"year" binding:"required,gte=2000,lte=2100"`
	Entitled    decimal.Decimal `json:"entitled"`
}

// InitializeBalancesRequest seeds a year's balances
type InitializeBalancesRequest struct {
	Year int `json:"year" binding:"required,gte=2000,lte=2100"`
}

// LeaveBalanceResponse represents a balance after an adjustment
type LeaveBalanceResponse struct {
	ID          uuid.UUID       `json:"id"`
	MemberID    uuid.UUID       `json:"member_id"`
	LeaveTypeID uuid.UUID       `json:"leave_type_id"`
	Year        int             `json:"year"`
	Entitled    decimal.Decimal `json:"entitled"`
	Used        decimal.Decimal `json:"used"`
	Pending     decimal.Decimal `json:"pending"`
	Remaining   decimal.Decimal `json:"remaining"`
}

func toLeaveBalanceResponse(b *leave.LeaveBalance) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		ID:          b.ID,
		MemberID:    b.MemberID,
		LeaveTypeID: b.LeaveTypeID,
		Year:        b.Year,
		Entitled:    b.Entitled,
		Used:        b.Used,
		Pending:     b.Pending,
		Remaining:   b.Remaining(),
	}
}

// SubmitLeaveRequest asks for leave
type SubmitLeaveRequest struct {
	LeaveTypeID  string `json:"leave_type_id" binding:"required,uuid"`
	StartDate    string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate      string `json:"end_date" binding:"required,datetime=2006-01-02"`
	StartHalfDay bool   `json:"start_half_day"`
	EndHalfDay   bool   `json:"end_half_day"`
	Reason       string `json:"reason" binding:"omitempty,max=1000"`
}

// RejectRequest carries a mandatory reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// ListLeaveRequestsQuery filters leave requests
type ListLeaveRequestsQuery struct {
	MemberID    string `form:"member_id" binding:"omitempty,uuid"`
	LeaveTypeID string `form:"leave_type_id" binding:"omitempty,uuid"`
	// Status is a comma separated list
	Status    string `form:"status"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,max=50"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// LeaveRequestResponse represents a leave request
type LeaveRequestResponse struct {
	ID               uuid.UUID       `json:"id"`
	MemberID         uuid.UUID       `json:"member_id"`
	RequesterUserID  uuid.UUID       `json:"requester_user_id"`
	LeaveTypeID      uuid.UUID       `json:"leave_type_id"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	StartHalfDay     bool            `json:"start_half_day"`
	EndHalfDay       bool            `json:"end_half_day"`
	Days             decimal.Decimal `json:"days"`
	Reason           string          `json:"reason,omitempty"`
	Status           leave.Status    `json:"status"`
	RequiresSenior   bool            `json:"requires_senior_approval"`
	SeniorApprovedBy *uuid.UUID      `json:"senior_approved_by,omitempty"`
	SeniorApprovedAt *time.Time      `json:"senior_approved_at,omitempty"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	RejectedBy       *uuid.UUID      `json:"rejected_by,omitempty"`
	RejectedAt       *time.Time      `json:"rejected_at,omitempty"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	CancelledBy      *uuid.UUID      `json:"cancelled_by,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toLeaveRequestResponse(r *leave.LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:               r.ID,
		MemberID:         r.MemberID,
		RequesterUserID:  r.RequesterUserID,
		LeaveTypeID:      r.LeaveTypeID,
		StartDate:        r.StartDate.Format(shared.DateLayout),
		EndDate:          r.EndDate.Format(shared.DateLayout),
		StartHalfDay:     r.StartHalfDay,
		EndHalfDay:       r.EndHalfDay,
		Days:             r.Days,
		Reason:           r.Reason,
		Status:           r.Status,
		RequiresSenior:   r.RequiresSenior,
		SeniorApprovedBy: r.SeniorApprovedBy,
		SeniorApprovedAt: r.SeniorApprovedAt,
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       r.ApprovedAt,
		RejectedBy:       r.RejectedBy,
		RejectedAt:       r.RejectedAt,
		RejectionReason:  r.RejectionReason,
		CancelledBy:      r.CancelledBy,
		CancelledAt:      r.CancelledAt,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// CreateHolidayRequest adds a public holiday
type CreateHolidayRequest struct {
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Name      string `json:"name" binding:"required,max=200"`
	Recurring bool   `json:"recurring"`
}

// TranslateHolidayRequest asks for machine translations of a holiday name
type TranslateHolidayRequest struct {
	Targets []string `json:"targets" binding:"required,min=1,max=10,dive,min=2,max=10"`
}
