package payroll

import (
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/google/uuid"
)

// CreateRecordInput contains the input for preparing a payroll record
type CreateRecordInput struct {
	EmployeeMemberID uuid.UUID
	Year             int
	Month            int
	Currency         string
	Items            []payroll.LineItemInput
	Notes            string
}

// UpdateDraftInput replaces the line items of a draft
type UpdateDraftInput struct {
	Items []payroll.LineItemInput
	Notes *string
}

// ResolveDisputeInput settles a dispute
type ResolveDisputeInput struct {
	Action string
	Note   string
	Items  []payroll.LineItemInput
}

// ListRecordsInput filters the record list
type ListRecordsInput struct {
	EmployeeMemberID *uuid.UUID
	Statuses         []string
	Year             *int
	Month            *int
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}

// ReminderResult reports a confirmation reminder sweep
type ReminderResult struct {
	Scanned       int
	Reminded      []*payroll.Notification
	SkippedRecent int
}
