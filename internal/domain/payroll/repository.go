package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordFilter contains filter options for listing payroll records
type RecordFilter struct {
	EmployeeUserID   *uuid.UUID
	EmployeeMemberID *uuid.UUID
	Statuses         []Status
	Year             *int
	Month            *int
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}

// RecordRepository persists payroll records with their line items
type RecordRepository interface {
	Create(ctx context.Context, p *PayrollRecord) error
	// Update saves the record and replaces its line items
	Update(ctx context.Context, p *PayrollRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*PayrollRecord, error)
	FindAll(ctx context.Context, filter RecordFilter) ([]*PayrollRecord, int64, error)
	ExistsForPeriod(ctx context.Context, memberID uuid.UUID, year, month int) (bool, error)
	CountByStatus(ctx context.Context, employeeUserID *uuid.UUID, statuses ...Status) (int64, error)
	// FindAwaitingConfirmation returns records of every organization sent before the cutoff
	FindAwaitingConfirmation(ctx context.Context, sentBefore time.Time, limit int) ([]*PayrollRecord, error)
}

// NotificationRepository persists payroll notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	FindForRecipient(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, pageSize int) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// LastReminderAt returns when the latest reminder for the record was created
	LastReminderAt(ctx context.Context, recordID uuid.UUID) (*time.Time, error)
}
