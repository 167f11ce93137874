package payroll

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind says why the employee is being notified
type NotificationKind string

const (
	NotificationSent     NotificationKind = "sent"
	NotificationResolved NotificationKind = "resolved"
	NotificationReminder NotificationKind = "reminder"
)

// Notification is a payroll_notifications row addressed to an employee
type Notification struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	PayrollRecordID uuid.UUID
	RecipientUserID uuid.UUID
	Kind            NotificationKind
	Period          string
	ReadAt          *time.Time
	CreatedAt       time.Time
}

// NewNotification creates an unread notification for the record's employee
func NewNotification(p *PayrollRecord, kind NotificationKind, now time.Time) *Notification {
	return &Notification{
		ID:              uuid.New(),
		TenantID:        p.TenantID,
		PayrollRecordID: p.ID,
		RecipientUserID: p.EmployeeUserID,
		Kind:            kind,
		Period:          p.Period(),
		CreatedAt:       now,
	}
}

// MarkRead stamps the read time once
func (n *Notification) MarkRead(now time.Time) {
	if n.ReadAt == nil {
		n.ReadAt = &now
	}
}

// IsRead reports whether the notification was read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
