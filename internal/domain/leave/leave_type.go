package leave

import (
	"regexp"
	"strings"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var codePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]{0,19}$`)

// LeaveType is a category of leave configured by the organization
type LeaveType struct {
	shared.TenantAggregateRoot
	Name                   string
	Code                   string
	Paid                   bool
	RequiresSeniorApproval bool
	DefaultAllowance       decimal.Decimal
	EligibilityRule        string
	Active                 bool
}

// NewLeaveType creates an active leave type
func NewLeaveType(tenantID uuid.UUID, name, code string, paid bool, allowance decimal.Decimal) (*LeaveType, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Leave type name must be 1-100 characters")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if !codePattern.MatchString(code) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Leave type code must be 1-20 uppercase letters, digits or underscores")
	}
	if allowance.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Default allowance cannot be negative")
	}
	return &LeaveType{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Code:                code,
		Paid:                paid,
		DefaultAllowance:    allowance,
		Active:              true,
	}, nil
}

// LeaveTypeUpdate carries optional changes
type LeaveTypeUpdate struct {
	Name                   *string
	Paid                   *bool
	RequiresSeniorApproval *bool
	DefaultAllowance       *decimal.Decimal
	EligibilityRule        *string
	Active                 *bool
}

// Apply applies the changes
func (t *LeaveType) Apply(u LeaveTypeUpdate) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" || len(name) > 100 {
			return shared.NewDomainError(shared.CodeInvalidInput, "Leave type name must be 1-100 characters")
		}
		t.Name = name
	}
	if u.DefaultAllowance != nil {
		if u.DefaultAllowance.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidInput, "Default allowance cannot be negative")
		}
		t.DefaultAllowance = *u.DefaultAllowance
	}
	if u.Paid != nil {
		t.Paid = *u.Paid
	}
	if u.RequiresSeniorApproval != nil {
		t.RequiresSeniorApproval = *u.RequiresSeniorApproval
	}
	if u.EligibilityRule != nil {
		t.EligibilityRule = strings.TrimSpace(*u.EligibilityRule)
	}
	if u.Active != nil {
		t.Active = *u.Active
	}
	t.IncrementVersion()
	return nil
}

// EligibilityInput is the data a leave type rule may reference
type EligibilityInput struct {
	Days       float64
	TenureDays int
	Remaining  float64
	LeaveCode  string
}

// EligibilityEvaluator evaluates a leave type's eligibility rule
type EligibilityEvaluator interface {
	// Validate compiles the rule and reports syntax or type errors
	Validate(rule string) error
	// Evaluate returns whether the request is eligible
	Evaluate(rule string, in EligibilityInput) (bool, error)
}
