package payroll

import (
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypePayrollRecord is the aggregate type for payroll records
const AggregateTypePayrollRecord = "PayrollRecord"

// Payroll domain event types
const (
	EventTypePayrollCreated         = "PayrollCreated"
	EventTypePayrollSubmitted       = "PayrollSubmitted"
	EventTypePayrollReturned        = "PayrollReturned"
	EventTypePayrollSentToEmployee  = "PayrollSentToEmployee"
	EventTypePayrollConfirmed       = "PayrollConfirmed"
	EventTypePayrollDisputed        = "PayrollDisputed"
	EventTypePayrollDisputeResolved = "PayrollDisputeResolved"
)

// PayrollEvent is published on every payroll status change
type PayrollEvent struct {
	shared.BaseDomainEvent
	EmployeeUserID uuid.UUID       `json:"employee_user_id"`
	ActorID        uuid.UUID       `json:"actor_id"`
	Period         string          `json:"period"`
	Status         Status          `json:"status"`
	Net            decimal.Decimal `json:"net"`
	Currency       string          `json:"currency"`
	Revision       int             `json:"revision"`
}

// NewPayrollEvent creates a payroll event of the given type
func NewPayrollEvent(p *PayrollRecord, eventType string, actor uuid.UUID) *PayrollEvent {
	return &PayrollEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePayrollRecord, p.ID, p.TenantID),
		EmployeeUserID:  p.EmployeeUserID,
		ActorID:         actor,
		Period:          p.Period(),
		Status:          p.Status,
		Net:             p.Net,
		Currency:        p.Currency,
		Revision:        p.Revision,
	}
}
