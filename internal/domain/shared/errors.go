package shared

import "errors"

// DomainError is a business rule failure with a stable machine-readable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same code, so errors.Is works
// against the sentinels below even when the message differs.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// AsDomainError extracts a DomainError from an error chain
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Error codes shared across bounded contexts
const (
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidState         = "INVALID_STATE"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeLeaveOverlap         = "LEAVE_OVERLAP"
	CodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	CodeSelfApproval         = "SELF_APPROVAL"
	CodeInvitationExpired    = "INVITATION_EXPIRED"
	CodeLastAdministrator    = "LAST_ADMINISTRATOR"
	CodeSubscriptionInactive = "SUBSCRIPTION_INACTIVE"
	CodeRuleViolation        = "RULE_VIOLATION"
)

// Common domain errors
var (
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists        = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput         = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict  = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized         = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden            = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState         = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrLeaveOverlap         = NewDomainError(CodeLeaveOverlap, "Leave request overlaps an existing request")
	ErrInsufficientBalance  = NewDomainError(CodeInsufficientBalance, "Insufficient leave balance")
	ErrSelfApproval         = NewDomainError(CodeSelfApproval, "You cannot approve your own request")
	ErrSubscriptionInactive = NewDomainError(CodeSubscriptionInactive, "Organization subscription is not active")
)
