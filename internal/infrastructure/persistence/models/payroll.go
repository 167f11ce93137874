package models

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayrollRecordModel is the persistence model for payroll_records.
type PayrollRecordModel struct {
	TenantAggregateModel
	EmployeeMemberID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_payroll_period,priority:1"`
	EmployeeUserID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Year             int             `gorm:"not null;uniqueIndex:idx_payroll_period,priority:2"`
	Month            int             `gorm:"not null;uniqueIndex:idx_payroll_period,priority:3"`
	Currency         string          `gorm:"type:char(3);not null"`
	Gross            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Deductions       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Net              decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status           payroll.Status  `gorm:"type:varchar(30);not null;default:'draft';index"`
	Notes            string          `gorm:"type:text"`
	SubmittedAt      *time.Time
	ApprovedBy       *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt       *time.Time
	SentAt           *time.Time `gorm:"index"`
	ConfirmedAt      *time.Time
	DisputeReason    string `gorm:"type:text"`
	DisputedAt       *time.Time
	ResolutionAction payroll.ResolutionAction `gorm:"type:varchar(20)"`
	ResolutionNote   string                   `gorm:"type:text"`
	ResolvedBy       *uuid.UUID               `gorm:"type:uuid"`
	ResolvedAt       *time.Time
	Revision         int                    `gorm:"not null;default:1"`
	LineItems        []PayrollLineItemModel `gorm:"foreignKey:PayrollRecordID"`
}

// TableName returns the table name for GORM
func (PayrollRecordModel) TableName() string {
	return "payroll_records"
}

// ToDomain converts the persistence model to a domain PayrollRecord.
// LineItems must be preloaded for the items to be populated.
func (m *PayrollRecordModel) ToDomain() *payroll.PayrollRecord {
	items := make([]payroll.LineItem, len(m.LineItems))
	for i, it := range m.LineItems {
		items[i] = it.ToDomain()
	}
	return &payroll.PayrollRecord{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		EmployeeMemberID:    m.EmployeeMemberID,
		EmployeeUserID:      m.EmployeeUserID,
		Year:                m.Year,
		Month:               m.Month,
		Currency:            m.Currency,
		LineItems:           items,
		Gross:               m.Gross,
		Deductions:          m.Deductions,
		Net:                 m.Net,
		Status:              m.Status,
		Notes:               m.Notes,
		SubmittedAt:         m.SubmittedAt,
		ApprovedBy:          m.ApprovedBy,
		ApprovedAt:          m.ApprovedAt,
		SentAt:              m.SentAt,
		ConfirmedAt:         m.ConfirmedAt,
		DisputeReason:       m.DisputeReason,
		DisputedAt:          m.DisputedAt,
		ResolutionAction:    m.ResolutionAction,
		ResolutionNote:      m.ResolutionNote,
		ResolvedBy:          m.ResolvedBy,
		ResolvedAt:          m.ResolvedAt,
		Revision:            m.Revision,
	}
}

// FromDomain populates the persistence model from a domain PayrollRecord.
func (m *PayrollRecordModel) FromDomain(p *payroll.PayrollRecord) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.EmployeeMemberID = p.EmployeeMemberID
	m.EmployeeUserID = p.EmployeeUserID
	m.Year = p.Year
	m.Month = p.Month
	m.Currency = p.Currency
	m.Gross = p.Gross
	m.Deductions = p.Deductions
	m.Net = p.Net
	m.Status = p.Status
	m.Notes = p.Notes
	m.SubmittedAt = p.SubmittedAt
	m.ApprovedBy = p.ApprovedBy
	m.ApprovedAt = p.ApprovedAt
	m.SentAt = p.SentAt
	m.ConfirmedAt = p.ConfirmedAt
	m.DisputeReason = p.DisputeReason
	m.DisputedAt = p.DisputedAt
	m.ResolutionAction = p.ResolutionAction
	m.ResolutionNote = p.ResolutionNote
	m.ResolvedBy = p.ResolvedBy
	m.ResolvedAt = p.ResolvedAt
	m.Revision = p.Revision
	m.LineItems = make([]PayrollLineItemModel, len(p.LineItems))
	for i, it := range p.LineItems {
		m.LineItems[i] = PayrollLineItemModelFromDomain(p, it)
	}
}

// PayrollRecordModelFromDomain creates a persistence model from a domain PayrollRecord.
func PayrollRecordModelFromDomain(p *payroll.PayrollRecord) *PayrollRecordModel {
	m := &PayrollRecordModel{}
	m.FromDomain(p)
	return m
}

// PayrollLineItemModel is a row of payroll_line_items.
type PayrollLineItemModel struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	PayrollRecordID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Kind            payroll.LineItemKind `gorm:"type:varchar(20);not null"`
	Label           string               `gorm:"type:varchar(200);not null"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Position        int                  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PayrollLineItemModel) TableName() string {
	return "payroll_line_items"
}

// ToDomain converts the row to a domain LineItem.
func (m *PayrollLineItemModel) ToDomain() payroll.LineItem {
	return payroll.LineItem{
		ID:       m.ID,
		Kind:     m.Kind,
		Label:    m.Label,
		Amount:   m.Amount,
		Position: m.Position,
	}
}

// PayrollLineItemModelFromDomain creates a row for an item of the record.
func PayrollLineItemModelFromDomain(p *payroll.PayrollRecord, it payroll.LineItem) PayrollLineItemModel {
	return PayrollLineItemModel{
		ID:              it.ID,
		TenantID:        p.TenantID,
		PayrollRecordID: p.ID,
		Kind:            it.Kind,
		Label:           it.Label,
		Amount:          it.Amount,
		Position:        it.Position,
	}
}

// PayrollNotificationModel is a row of payroll_notifications.
type PayrollNotificationModel struct {
	ID              uuid.UUID                `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	PayrollRecordID uuid.UUID                `gorm:"type:uuid;not null;index"`
	RecipientUserID uuid.UUID                `gorm:"type:uuid;not null;index"`
	Kind            payroll.NotificationKind `gorm:"type:varchar(20);not null"`
	Period          string                   `gorm:"type:char(7);not null"`
	ReadAt          *time.Time
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PayrollNotificationModel) TableName() string {
	return "payroll_notifications"
}

// ToDomain converts the row to a domain Notification.
func (m *PayrollNotificationModel) ToDomain() *payroll.Notification {
	return &payroll.Notification{
		ID:              m.ID,
		TenantID:        m.TenantID,
		PayrollRecordID: m.PayrollRecordID,
		RecipientUserID: m.RecipientUserID,
		Kind:            m.Kind,
		Period:          m.Period,
		ReadAt:          m.ReadAt,
		CreatedAt:       m.CreatedAt,
	}
}

// PayrollNotificationModelFromDomain creates a row from a domain Notification.
func PayrollNotificationModelFromDomain(n *payroll.Notification) *PayrollNotificationModel {
	return &PayrollNotificationModel{
		ID:              n.ID,
		TenantID:        n.TenantID,
		PayrollRecordID: n.PayrollRecordID,
		RecipientUserID: n.RecipientUserID,
		Kind:            n.Kind,
		Period:          n.Period,
		ReadAt:          n.ReadAt,
		CreatedAt:       n.CreatedAt,
	}
}
