package leave

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLeaveTypeInput contains the input for creating a leave type
type CreateLeaveTypeInput struct {
	Name                   string
	Code                   string
	Paid                   bool
	RequiresSeniorApproval bool
	DefaultAllowance       decimal.Decimal
	EligibilityRule        string
}

// AdjustBalanceInput sets the entitlement of one balance
type AdjustBalanceInput struct {
	MemberID    uuid.UUID
	LeaveTypeID uuid.UUID
	Year        int
	Entitled    decimal.Decimal
}

// BalanceView is a balance joined with its leave type
type BalanceView struct {
	ID            uuid.UUID       `json:"id"`
	MemberID      uuid.UUID       `json:"member_id"`
	LeaveTypeID   uuid.UUID       `json:"leave_type_id"`
	LeaveTypeCode string          `json:"leave_type_code"`
	LeaveTypeName string          `json:"leave_type_name"`
	Year          int             `json:"year"`
	Entitled      decimal.Decimal `json:"entitled"`
	Used          decimal.Decimal `json:"used"`
	Pending       decimal.Decimal `json:"pending"`
	Remaining     decimal.Decimal `json:"remaining"`
}

// InitializeResult reports what a yearly initialization created
type InitializeResult struct {
	Year          int `json:"year"`
	Organizations int `json:"organizations"`
	Created       int `json:"created"`
}

// SubmitInput contains the input for submitting a leave request
type SubmitInput struct {
	LeaveTypeID  uuid.UUID
	StartDate    time.Time
	EndDate      time.Time
	StartHalfDay bool
	EndHalfDay   bool
	Reason       string
}

// ListRequestsInput filters the request list
type ListRequestsInput struct {
	MemberID    *uuid.UUID
	LeaveTypeID *uuid.UUID
	Statuses    []string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// CreateHolidayInput contains the input for creating a holiday
type CreateHolidayInput struct {
	Date      time.Time
	Name      string
	Recurring bool
}

// HolidayView is a holiday with its name resolved for the caller's locale
type HolidayView struct {
	ID           uuid.UUID         `json:"id"`
	Date         string            `json:"date"`
	Name         string            `json:"name"`
	LocalName    string            `json:"local_name"`
	Translations map[string]string `json:"translations"`
	Recurring    bool              `json:"recurring"`
}

func toHolidayView(h *leave.Holiday, locale string) HolidayView {
	return HolidayView{
		ID:           h.ID,
		Date:         h.Date.Format(shared.DateLayout),
		Name:         h.Name,
		LocalName:    h.NameFor(locale),
		Translations: h.Translations,
		Recurring:    h.Recurring,
	}
}
