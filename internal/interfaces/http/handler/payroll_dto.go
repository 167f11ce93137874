package handler

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one earning or deduction
type LineItemRequest struct {
	Kind   string          `json:"kind" binding:"required,oneof=earning deduction"`
	Label  string          `json:"label" binding:"required,max=200"`
	Amount decimal.Decimal `json:"amount"`
}

func toLineItemInputs(items []LineItemRequest) []payroll.LineItemInput {
	out := make([]payroll.LineItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, payroll.LineItemInput{
			Kind:   payroll.LineItemKind(item.Kind),
			Label:  item.Label,
			Amount: item.Amount,
		})
	}
	return out
}

// CreatePayrollRequest prepares a monthly payroll record
type CreatePayrollRequest struct {
	EmployeeMemberID string            `json:"employee_member_id" binding:"required,uuid"`
	Year             int               `json:"year" binding:"required,gte=2000,lte=2100"`
	Month            int               `json:"month" binding:"required,gte=1,lte=12"`
	Currency         string            `json:"currency" binding:"omitempty,len=3"`
	Items            []LineItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
	Notes            string            `json:"notes" binding:"omitempty,max=2000"`
}

// UpdatePayrollDraftRequest replaces the line items of a draft
type UpdatePayrollDraftRequest struct {
	Items []LineItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
	Notes *string           `json:"notes" binding:"omitempty,max=2000"`
}

// ReturnPayrollRequest sends a pending record back to its preparer
type ReturnPayrollRequest struct {
	Note string `json:"note" binding:"omitempty,max=2000"`
}

// DisputePayrollRequest carries the employee's objection
type DisputePayrollRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// ResolveDisputeRequest settles a dispute. Items are required when adjusting.
type ResolveDisputeRequest struct {
	Action string            `json:"action" binding:"required,oneof=adjust reject"`
	Note   string            `json:"note" binding:"omitempty,max=2000"`
	Items  []LineItemRequest `json:"items" binding:"omitempty,max=100,dive"`
}

// ListPayrollQuery filters payroll records
type ListPayrollQuery struct {
	EmployeeMemberID string `form:"employee_member_id" binding:"omitempty,uuid"`
	// Status is a comma separated list
	Status    string `form:"status"`
	Year      int    `form:"year" binding:"omitempty,gte=2000,lte=2100"`
	Month     int    `form:"month" binding:"omitempty,gte=1,lte=12"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,max=50"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// RegisterQuery selects the month of a payroll register
type RegisterQuery struct {
	Year  int `form:"year" binding:"required,gte=2000,lte=2100"`
	Month int `form:"month" binding:"required,gte=1,lte=12"`
}

// LineItemResponse represents a line item
type LineItemResponse struct {
	ID       uuid.UUID            `json:"id"`
	Kind     payroll.LineItemKind `json:"kind"`
	Label    string               `json:"label"`
	Amount   decimal.Decimal      `json:"amount"`
	Position int                  `json:"position"`
}

// PayrollResponse represents a payroll record
type PayrollResponse struct {
	ID               uuid.UUID                `json:"id"`
	EmployeeMemberID uuid.UUID                `json:"employee_member_id"`
	EmployeeUserID   uuid.UUID                `json:"employee_user_id"`
	Year             int                      `json:"year"`
	Month            int                      `json:"month"`
	Period           string                   `json:"period"`
	Currency         string                   `json:"currency"`
	LineItems        []LineItemResponse       `json:"line_items"`
	Gross            decimal.Decimal          `json:"gross"`
	Deductions       decimal.Decimal          `json:"deductions"`
	Net              decimal.Decimal          `json:"net"`
	Status           payroll.Status           `json:"status"`
	Notes            string                   `json:"notes,omitempty"`
	SubmittedAt      *time.Time               `json:"submitted_at,omitempty"`
	ApprovedBy       *uuid.UUID               `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time               `json:"approved_at,omitempty"`
	SentAt           *time.Time               `json:"sent_at,omitempty"`
	ConfirmedAt      *time.Time               `json:"confirmed_at,omitempty"`
	DisputeReason    string                   `json:"dispute_reason,omitempty"`
	DisputedAt       *time.Time               `json:"disputed_at,omitempty"`
	ResolutionAction payroll.ResolutionAction `json:"resolution_action,omitempty"`
	ResolutionNote   string                   `json:"resolution_note,omitempty"`
	ResolvedBy       *uuid.UUID               `json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time               `json:"resolved_at,omitempty"`
	Revision         int                      `json:"revision"`
	Version          int                      `json:"version"`
	CreatedBy        *uuid.UUID               `json:"created_by,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

func toPayrollResponse(r *payroll.PayrollRecord) PayrollResponse {
	items := make([]LineItemResponse, 0, len(r.LineItems))
	for _, item := range r.LineItems {
		items = append(items, LineItemResponse{
			ID:       item.ID,
			Kind:     item.Kind,
			Label:    item.Label,
			Amount:   item.Amount,
			Position: item.Position,
		})
	}
	return PayrollResponse{
		ID:               r.ID,
		EmployeeMemberID: r.EmployeeMemberID,
		EmployeeUserID:   r.EmployeeUserID,
		Year:             r.Year,
		Month:            r.Month,
		Period:           r.Period(),
		Currency:         r.Currency,
		LineItems:        items,
		Gross:            r.Gross,
		Deductions:       r.Deductions,
		Net:              r.Net,
		Status:           r.Status,
		Notes:            r.Notes,
		SubmittedAt:      r.SubmittedAt,
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       r.ApprovedAt,
		SentAt:           r.SentAt,
		ConfirmedAt:      r.ConfirmedAt,
		DisputeReason:    r.DisputeReason,
		DisputedAt:       r.DisputedAt,
		ResolutionAction: r.ResolutionAction,
		ResolutionNote:   r.ResolutionNote,
		ResolvedBy:       r.ResolvedBy,
		ResolvedAt:       r.ResolvedAt,
		Revision:         r.Revision,
		Version:          r.Version,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// PayrollNotificationResponse represents a payroll notice
type PayrollNotificationResponse struct {
	ID              uuid.UUID                `json:"id"`
	PayrollRecordID uuid.UUID                `json:"payroll_record_id"`
	Kind            payroll.NotificationKind `json:"kind"`
	Period          string                   `json:"period"`
	Read            bool                     `json:"read"`
	ReadAt          *time.Time               `json:"read_at,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

func toPayrollNotificationResponse(n *payroll.Notification) PayrollNotificationResponse {
	return PayrollNotificationResponse{
		ID:              n.ID,
		PayrollRecordID: n.PayrollRecordID,
		Kind:            n.Kind,
		Period:          n.Period,
		Read:            n.IsRead(),
		ReadAt:          n.ReadAt,
		CreatedAt:       n.CreatedAt,
	}
}
