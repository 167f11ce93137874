package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle status of a payroll record
type Status string

const (
	StatusDraft                Status = "draft"
	StatusPendingAdminApproval Status = "pending_admin_approval"
	StatusSentToEmployee       Status = "sent_to_employee"
	StatusConfirmed            Status = "confirmed"
	StatusDisputed             Status = "disputed"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingAdminApproval, StatusSentToEmployee, StatusConfirmed, StatusDisputed:
		return true
	}
	return false
}

// VisibleToEmployee reports whether the employee may see the record
func (s Status) VisibleToEmployee() bool {
	return s == StatusSentToEmployee || s == StatusConfirmed || s == StatusDisputed
}

// ResolutionAction is how an admin settles a dispute
type ResolutionAction string

const (
	// ResolutionAdjust replaces the line items and re-sends the record
	ResolutionAdjust ResolutionAction = "adjust"
	// ResolutionReject keeps the figures and re-sends with a note
	ResolutionReject ResolutionAction = "reject"
)

// PayrollRecord is one employee's compensation for one month
type PayrollRecord struct {
	shared.TenantAggregateRoot
	EmployeeMemberID uuid.UUID
	EmployeeUserID   uuid.UUID
	Year             int
	Month            int
	Currency         string
	LineItems        []LineItem
	Gross            decimal.Decimal
	Deductions       decimal.Decimal
	Net              decimal.Decimal
	Status           Status
	Notes            string
	SubmittedAt      *time.Time
	ApprovedBy       *uuid.UUID
	ApprovedAt       *time.Time
	SentAt           *time.Time
	ConfirmedAt      *time.Time
	DisputeReason    string
	DisputedAt       *time.Time
	ResolutionAction ResolutionAction
	ResolutionNote   string
	ResolvedBy       *uuid.UUID
	ResolvedAt       *time.Time
	Revision         int
}

// NewPayrollRecordInput holds the fields to create a draft
type NewPayrollRecordInput struct {
	TenantID         uuid.UUID
	EmployeeMemberID uuid.UUID
	EmployeeUserID   uuid.UUID
	Year             int
	Month            int
	Currency         string
	Items            []LineItemInput
	Notes            string
	CreatedBy        uuid.UUID
}

// NewPayrollRecord creates a draft payroll record
func NewPayrollRecord(in NewPayrollRecordInput) (*PayrollRecord, error) {
	if in.Year < 2000 || in.Year > 2100 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid payroll year %d", in.Year))
	}
	if in.Month < 1 || in.Month > 12 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid payroll month %d", in.Month))
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if len(currency) != 3 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Currency must be a 3-letter ISO code")
	}
	if in.EmployeeMemberID == uuid.Nil || in.EmployeeUserID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Employee is required")
	}

	p := &PayrollRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(in.TenantID, in.CreatedBy),
		EmployeeMemberID:    in.EmployeeMemberID,
		EmployeeUserID:      in.EmployeeUserID,
		Year:                in.Year,
		Month:               in.Month,
		Currency:            currency,
		Notes:               strings.TrimSpace(in.Notes),
		Status:              StatusDraft,
		Revision:            1,
	}
	if err := p.setLineItems(in.Items); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewPayrollEvent(p, EventTypePayrollCreated, in.CreatedBy))
	return p, nil
}

// Period returns the record's period as YYYY-MM
func (p *PayrollRecord) Period() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// CanEdit reports whether line items may be changed
func (p *PayrollRecord) CanEdit() bool {
	return p.Status == StatusDraft
}

// CanDelete reports whether the record may be deleted
func (p *PayrollRecord) CanDelete() bool {
	return p.Status == StatusDraft
}

// UpdateDraft replaces the line items and notes of a draft
func (p *PayrollRecord) UpdateDraft(items []LineItemInput, notes *string) error {
	if !p.CanEdit() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot edit a payroll record in %s status", p.Status))
	}
	if err := p.setLineItems(items); err != nil {
		return err
	}
	if notes != nil {
		p.Notes = strings.TrimSpace(*notes)
	}
	p.IncrementVersion()
	return nil
}

// SubmitForApproval hands the draft to an admin
func (p *PayrollRecord) SubmitForApproval(by uuid.UUID, now time.Time) error {
	if p.Status != StatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot submit a payroll record in %s status", p.Status))
	}
	if !p.Gross.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payroll record needs at least one earning")
	}
	p.Status = StatusPendingAdminApproval
	p.SubmittedAt = &now
	p.IncrementVersion()
	p.AddDomainEvent(NewPayrollEvent(p, EventTypePayrollSubmitted, by))
	return nil
}

// ReturnToDraft sends a pending record back to its preparer
func (p *PayrollRecord) ReturnToDraft(by uuid.UUID, note string) error {
	if p.Status != StatusPendingAdminApproval {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot return a payroll record in %s status", p.Status))
	}
	p.Status = StatusDraft
	p.SubmittedAt = nil
	if note = strings.TrimSpace(note); note != "" {
		p.Notes = note
	}
	p.IncrementVersion()
	p.AddDomainEvent(NewPayrollEvent(p, EventTypePayrollReturned, by))
	return nil
}

// Approve releases the record to the employee and returns the
// notification that must be stored for them.
func (p *PayrollRecord) Approve(by uuid.UUID, now time.Time) (*Notification, error) {
	if p.Status != StatusPendingAdminApproval {
		return nil, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot approve a payroll record in %s status", p.Status))
	}
	if p.CreatedBy != nil && *p.CreatedBy == by {
		return nil, shared.NewDomainError(shared.CodeSelfApproval, "A payroll record cannot be approved by its preparer")
	}
	if by == p.EmployeeUserID {
		return nil, shared.NewDomainError(shared.CodeSelfApproval, "You cannot approve your own payroll record")
	}
	p.Status = StatusSentToEmployee
	p.ApprovedBy = &by
	p.ApprovedAt = &now
	p.SentAt = &now
	p.IncrementVersion()
	p.AddDomainEvent(NewPayrollEvent(p, EventTypePayrollSentToEmployee, by))
	return NewNotification(p, NotificationSent, now), nil
}

// Confirm records the employee's acceptance
func (p *PayrollRecord) Confirm(by uuid.UUID, now time.Time) error {
	if by != p.EmployeeUserID {
		return shared.NewDomainError(shared.CodeForbidden, "Only the employee can confirm their payroll record")
	}
	if p.Status != StatusSentToEmployee {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot confirm a payroll record in %s status", p.Status))
	}
	p.Status = StatusConfirmed
	p.ConfirmedAt = &now
	p.IncrementVersion()
	p.AddDomainEvent(NewPayrollEvent(p, EventTypePayrollConfirmed, by))
	return nil
}

// Dispute records the employee's objection
func (p *PayrollRecord) Dispute(by uuid.UUID, reason string, now time.Time) error {
	if by != p.EmployeeUserID {
		return shared.NewDomainError(shared.CodeForbidden, "Only the employee can dispute their payroll record")
	}
	if p.Status != StatusSentToEmployee {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot dispute a payroll record in %s status", p.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Dispute reason is required")
	}
	if len(reason) > 2000 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Dispute reason cannot exceed 2000 characters")
	}
	p.Status = StatusDisputed
	p.DisputeReason = reason
	p.DisputedAt = &now
	p.IncrementVersion()
	p.AddDomainEvent(NewPayrollEvent(p, EventTypePayrollDisputed, by))
	return nil
}

// ResolveDispute settles a dispute and re-sends the record. Adjusting
// replaces the line items and bumps the revision. The returned
// notification must be stored for the employee.
func (p *PayrollRecord) ResolveDispute(by uuid.UUID, action ResolutionAction, note string, items []LineItemInput, now time.Time) (*Notification, error) {
	if p.Status != StatusDisputed {
		return nil, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot resolve a payroll record in %s status", p.Status))
	}
	if by == p.EmployeeUserID {
		return nil, shared.NewDomainError(shared.CodeSelfApproval, "You cannot resolve a dispute on your own payroll record")
	}
	note = strings.TrimSpace(note)
	switch action {
	case ResolutionAdjust:
		if err := p.setLineItems(items); err != nil {
			return nil, err
		}
		if !p.Gross.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payroll record needs at least one earning")
		}
		p.Revision++
	case ResolutionReject:
		if note == "" {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "A note is required when rejecting a dispute")
		}
	default:
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Resolution action must be adjust or reject")
	}
	p.Status = StatusSentToEmployee
	p.ResolutionAction = action
	p.ResolutionNote = note
	p.ResolvedBy = &by
	p.ResolvedAt = &now
	p.SentAt = &now
	p.IncrementVersion()
	p.AddDomainEvent(NewPayrollEvent(p, EventTypePayrollDisputeResolved, by))
	return NewNotification(p, NotificationResolved, now), nil
}

func (p *PayrollRecord) setLineItems(inputs []LineItemInput) error {
	items := make([]LineItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := NewLineItem(in.Kind, in.Label, in.Amount, i+1)
		if err != nil {
			return err
		}
		items = append(items, *item)
	}
	gross, deductions := Totals(items)
	net := gross.Sub(deductions)
	if net.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Deductions %s exceed earnings %s", deductions.StringFixed(2), gross.StringFixed(2)))
	}
	p.LineItems = items
	p.Gross = gross
	p.Deductions = deductions
	p.Net = net
	return nil
}
