package leave

import (
	"fmt"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveBalance tracks the yearly entitlement of one member for one leave type
type LeaveBalance struct {
	shared.TenantAggregateRoot
	MemberID    uuid.UUID
	LeaveTypeID uuid.UUID
	Year        int
	Entitled    decimal.Decimal
	Used        decimal.Decimal
	Pending     decimal.Decimal
}

// NewLeaveBalance creates an empty balance with the given entitlement
func NewLeaveBalance(tenantID, memberID, leaveTypeID uuid.UUID, year int, entitled decimal.Decimal) (*LeaveBalance, error) {
	if year < 2000 || year > 2100 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid balance year %d", year))
	}
	if entitled.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Entitlement cannot be negative")
	}
	return &LeaveBalance{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		MemberID:            memberID,
		LeaveTypeID:         leaveTypeID,
		Year:                year,
		Entitled:            entitled,
		Used:                decimal.Zero,
		Pending:             decimal.Zero,
	}, nil
}

// Remaining returns entitled minus used minus pending
func (b *LeaveBalance) Remaining() decimal.Decimal {
	return b.Entitled.Sub(b.Used).Sub(b.Pending)
}

// Reserve moves days into pending. When enforce is set the remaining
// balance must cover the request.
func (b *LeaveBalance) Reserve(days decimal.Decimal, enforce bool) error {
	if !days.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Leave days must be positive")
	}
	if enforce && b.Remaining().LessThan(days) {
		return shared.NewDomainError(shared.CodeInsufficientBalance,
			fmt.Sprintf("Insufficient leave balance: %s day(s) remaining, %s requested", b.Remaining().String(), days.String()))
	}
	b.Pending = b.Pending.Add(days)
	b.IncrementVersion()
	return nil
}

// ReleasePending returns reserved days after a reject or cancel
func (b *LeaveBalance) ReleasePending(days decimal.Decimal) {
	b.Pending = decimal.Max(decimal.Zero, b.Pending.Sub(days))
	b.IncrementVersion()
}

// Consume moves reserved days to used on approval
func (b *LeaveBalance) Consume(days decimal.Decimal) {
	b.Pending = decimal.Max(decimal.Zero, b.Pending.Sub(days))
	b.Used = b.Used.Add(days)
	b.IncrementVersion()
}

// Restore gives back used days when an approved request is cancelled
func (b *LeaveBalance) Restore(days decimal.Decimal) {
	b.Used = decimal.Max(decimal.Zero, b.Used.Sub(days))
	b.IncrementVersion()
}

// SetEntitled adjusts the entitlement. It cannot drop below days already committed.
func (b *LeaveBalance) SetEntitled(entitled decimal.Decimal) error {
	if entitled.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Entitlement cannot be negative")
	}
	if entitled.LessThan(b.Used.Add(b.Pending)) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Entitlement cannot be lower than used plus pending days")
	}
	b.Entitled = entitled
	b.IncrementVersion()
	return nil
}
