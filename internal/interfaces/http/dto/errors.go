package dto

import (
	"net/http"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks the role or does not own the resource
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeInvalidState is used when an operation is invalid for the current state
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeInvitationExpired  = "ERR_INVITATION_EXPIRED"
	ErrCodeRequestTooLarge    = "ERR_REQUEST_TOO_LARGE"
	ErrCodeSubscriptionLapsed = "ERR_SUBSCRIPTION_INACTIVE"
)

// Business rule error codes
const (
	ErrCodeBusinessRule        = "ERR_BUSINESS_RULE"
	ErrCodeLeaveOverlap        = "ERR_LEAVE_OVERLAP"
	ErrCodeInsufficientBalance = "ERR_INSUFFICIENT_BALANCE"
	ErrCodeSelfApproval        = "ERR_SELF_APPROVAL"
	ErrCodeLastAdministrator   = "ERR_LAST_ADMINISTRATOR"
	ErrCodeRuleViolation       = "ERR_RULE_VIOLATION"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusConflict,
	ErrCodeInvitationExpired:   http.StatusConflict,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeSubscriptionLapsed:  http.StatusPaymentRequired,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,
	ErrCodeLeaveOverlap:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientBalance: http.StatusUnprocessableEntity,
	ErrCodeSelfApproval:        http.StatusUnprocessableEntity,
	ErrCodeLastAdministrator:   http.StatusUnprocessableEntity,
	ErrCodeRuleViolation:       http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the ERR_* codes clients see
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"UNAUTHORIZED":          ErrCodeUnauthorized,
	"FORBIDDEN":             ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"LEAVE_OVERLAP":         ErrCodeLeaveOverlap,
	"INSUFFICIENT_BALANCE":  ErrCodeInsufficientBalance,
	"SELF_APPROVAL":         ErrCodeSelfApproval,
	"INVITATION_EXPIRED":    ErrCodeInvitationExpired,
	"LAST_ADMINISTRATOR":    ErrCodeLastAdministrator,
	"SUBSCRIPTION_INACTIVE": ErrCodeSubscriptionLapsed,
	"RULE_VIOLATION":        ErrCodeRuleViolation,
}

// NormalizeErrorCode converts a domain error code to the standardized format.
// Codes already in the ERR_ format, or unknown ones, are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// FromError converts an error into a status and envelope. Domain errors keep
// their message; anything else becomes a generic internal error.
func FromError(err error, requestID string) (int, Response) {
	if de, ok := shared.AsDomainError(err); ok {
		code := NormalizeErrorCode(de.Code)
		return GetHTTPStatus(code), NewErrorResponseWithRequestID(code, de.Message, requestID)
	}
	return http.StatusInternalServerError,
		NewErrorResponseWithRequestID(ErrCodeInternal, "An unexpected error occurred", requestID)
}
