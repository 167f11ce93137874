package payroll

import (
	"strings"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemKind distinguishes earnings from deductions
type LineItemKind string

const (
	KindEarning   LineItemKind = "earning"
	KindDeduction LineItemKind = "deduction"
)

// LineItem is one earning or deduction on a payroll record
type LineItem struct {
	ID       uuid.UUID
	Kind     LineItemKind
	Label    string
	Amount   decimal.Decimal
	Position int
}

// LineItemInput is the caller-supplied form of a line item
type LineItemInput struct {
	Kind   LineItemKind
	Label  string
	Amount decimal.Decimal
}

// NewLineItem validates a line item. Amounts are rounded to cents.
func NewLineItem(kind LineItemKind, label string, amount decimal.Decimal, position int) (*LineItem, error) {
	if kind != KindEarning && kind != KindDeduction {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line item kind must be earning or deduction")
	}
	label = strings.TrimSpace(label)
	if label == "" || len(label) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line item label must be 1-200 characters")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line item amount cannot be negative")
	}
	return &LineItem{
		ID:       uuid.New(),
		Kind:     kind,
		Label:    label,
		Amount:   amount.Round(2),
		Position: position,
	}, nil
}

// Totals sums earnings and deductions
func Totals(items []LineItem) (gross, deductions decimal.Decimal) {
	gross, deductions = decimal.Zero, decimal.Zero
	for _, it := range items {
		switch it.Kind {
		case KindEarning:
			gross = gross.Add(it.Amount)
		case KindDeduction:
			deductions = deductions.Add(it.Amount)
		}
	}
	return gross, deductions
}
