package models

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveTypeModel is the persistence model for leave_types.
type LeaveTypeModel struct {
	TenantAggregateModel
	Name                   string          `gorm:"type:varchar(100);not null"`
	Code                   string          `gorm:"type:varchar(20);not null"`
	Paid                   bool            `gorm:"not null;default:true"`
	RequiresSeniorApproval bool            `gorm:"not null;default:false"`
	DefaultAllowance       decimal.Decimal `gorm:"type:decimal(6,1);not null;default:0"`
	EligibilityRule        string          `gorm:"type:text"`
	Active                 bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LeaveTypeModel) TableName() string {
	return "leave_types"
}

// ToDomain converts the persistence model to a domain LeaveType.
func (m *LeaveTypeModel) ToDomain() *leave.LeaveType {
	return &leave.LeaveType{
		TenantAggregateRoot:    m.ToTenantAggregateRoot(),
		Name:                   m.Name,
		Code:                   m.Code,
		Paid:                   m.Paid,
		RequiresSeniorApproval: m.RequiresSeniorApproval,
		DefaultAllowance:       m.DefaultAllowance,
		EligibilityRule:        m.EligibilityRule,
		Active:                 m.Active,
	}
}

// FromDomain populates the persistence model from a domain LeaveType.
func (m *LeaveTypeModel) FromDomain(t *leave.LeaveType) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.Name = t.Name
	m.Code = t.Code
	m.Paid = t.Paid
	m.RequiresSeniorApproval = t.RequiresSeniorApproval
	m.DefaultAllowance = t.DefaultAllowance
	m.EligibilityRule = t.EligibilityRule
	m.Active = t.Active
}

// LeaveTypeModelFromDomain creates a persistence model from a domain LeaveType.
func LeaveTypeModelFromDomain(t *leave.LeaveType) *LeaveTypeModel {
	m := &LeaveTypeModel{}
	m.FromDomain(t)
	return m
}

// LeaveBalanceModel is the persistence model for leave_balances.
type LeaveBalanceModel struct {
	TenantAggregateModel
	MemberID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_leave_balance,priority:1"`
	LeaveTypeID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_leave_balance,priority:2"`
	Year        int             `gorm:"not null;uniqueIndex:idx_leave_balance,priority:3"`
	Entitled    decimal.Decimal `gorm:"type:decimal(6,1);not null;default:0"`
	Used        decimal.Decimal `gorm:"type:decimal(6,1);not null;default:0"`
	Pending     decimal.Decimal `gorm:"type:decimal(6,1);not null;default:0"`
}

// TableName returns the table name for GORM
func (LeaveBalanceModel) TableName() string {
	return "leave_balances"
}

// ToDomain converts the persistence model to a domain LeaveBalance.
func (m *LeaveBalanceModel) ToDomain() *leave.LeaveBalance {
	return &leave.LeaveBalance{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		MemberID:            m.MemberID,
		LeaveTypeID:         m.LeaveTypeID,
		Year:                m.Year,
		Entitled:            m.Entitled,
		Used:                m.Used,
		Pending:             m.Pending,
	}
}

// FromDomain populates the persistence model from a domain LeaveBalance.
func (m *LeaveBalanceModel) FromDomain(b *leave.LeaveBalance) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.MemberID = b.MemberID
	m.LeaveTypeID = b.LeaveTypeID
	m.Year = b.Year
	m.Entitled = b.Entitled
	m.Used = b.Used
	m.Pending = b.Pending
}

// LeaveBalanceModelFromDomain creates a persistence model from a domain LeaveBalance.
func LeaveBalanceModelFromDomain(b *leave.LeaveBalance) *LeaveBalanceModel {
	m := &LeaveBalanceModel{}
	m.FromDomain(b)
	return m
}

// LeaveRequestModel is the persistence model for leave_requests.
type LeaveRequestModel struct {
	TenantAggregateModel
	MemberID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_leave_request_member_dates,priority:1"`
	RequesterUserID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	LeaveTypeID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	StartDate        time.Time       `gorm:"type:date;not null;index:idx_leave_request_member_dates,priority:2"`
	EndDate          time.Time       `gorm:"type:date;not null;index:idx_leave_request_member_dates,priority:3"`
	StartHalfDay     bool            `gorm:"not null;default:false"`
	EndHalfDay       bool            `gorm:"not null;default:false"`
	Days             decimal.Decimal `gorm:"type:decimal(6,1);not null"`
	Reason           string          `gorm:"type:text"`
	Status           leave.Status    `gorm:"type:varchar(20);not null;default:'pending';index"`
	RequiresSenior   bool            `gorm:"not null;default:false"`
	SeniorApprovedBy *uuid.UUID      `gorm:"type:uuid"`
	SeniorApprovedAt *time.Time
	ApprovedBy       *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt       *time.Time
	RejectedBy       *uuid.UUID `gorm:"type:uuid"`
	RejectedAt       *time.Time
	RejectionReason  string     `gorm:"type:text"`
	CancelledBy      *uuid.UUID `gorm:"type:uuid"`
	CancelledAt      *time.Time
}

// TableName returns the table name for GORM
func (LeaveRequestModel) TableName() string {
	return "leave_requests"
}

// ToDomain converts the persistence model to a domain LeaveRequest.
func (m *LeaveRequestModel) ToDomain() *leave.LeaveRequest {
	return &leave.LeaveRequest{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		MemberID:            m.MemberID,
		RequesterUserID:     m.RequesterUserID,
		LeaveTypeID:         m.LeaveTypeID,
		StartDate:           asDate(m.StartDate),
		EndDate:             asDate(m.EndDate),
		StartHalfDay:        m.StartHalfDay,
		EndHalfDay:          m.EndHalfDay,
		Days:                m.Days,
		Reason:              m.Reason,
		Status:              m.Status,
		RequiresSenior:      m.RequiresSenior,
		SeniorApprovedBy:    m.SeniorApprovedBy,
		SeniorApprovedAt:    m.SeniorApprovedAt,
		ApprovedBy:          m.ApprovedBy,
		ApprovedAt:          m.ApprovedAt,
		RejectedBy:          m.RejectedBy,
		RejectedAt:          m.RejectedAt,
		RejectionReason:     m.RejectionReason,
		CancelledBy:         m.CancelledBy,
		CancelledAt:         m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain LeaveRequest.
func (m *LeaveRequestModel) FromDomain(r *leave.LeaveRequest) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.MemberID = r.MemberID
	m.RequesterUserID = r.RequesterUserID
	m.LeaveTypeID = r.LeaveTypeID
	m.StartDate = r.StartDate
	m.EndDate = r.EndDate
	m.StartHalfDay = r.StartHalfDay
	m.EndHalfDay = r.EndHalfDay
	m.Days = r.Days
	m.Reason = r.Reason
	m.Status = r.Status
	m.RequiresSenior = r.RequiresSenior
	m.SeniorApprovedBy = r.SeniorApprovedBy
	m.SeniorApprovedAt = r.SeniorApprovedAt
	m.ApprovedBy = r.ApprovedBy
	m.ApprovedAt = r.ApprovedAt
	m.RejectedBy = r.RejectedBy
	m.RejectedAt = r.RejectedAt
	m.RejectionReason = r.RejectionReason
	m.CancelledBy = r.CancelledBy
	m.CancelledAt = r.CancelledAt
}

// LeaveRequestModelFromDomain creates a persistence model from a domain LeaveRequest.
func LeaveRequestModelFromDomain(r *leave.LeaveRequest) *LeaveRequestModel {
	m := &LeaveRequestModel{}
	m.FromDomain(r)
	return m
}

// HolidayModel is the persistence model for holidays.
type HolidayModel struct {
	BaseModel
	TenantID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	Date         time.Time         `gorm:"type:date;not null;index"`
	Name         string            `gorm:"type:varchar(200);not null"`
	Translations map[string]string `gorm:"type:jsonb;serializer:json"`
	Recurring    bool              `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (HolidayModel) TableName() string {
	return "holidays"
}

// ToDomain converts the persistence model to a domain Holiday.
func (m *HolidayModel) ToDomain() *leave.Holiday {
	translations := m.Translations
	if translations == nil {
		translations = make(map[string]string)
	}
	return &leave.Holiday{
		ID:           m.ID,
		TenantID:     m.TenantID,
		Date:         asDate(m.Date),
		Name:         m.Name,
		Translations: translations,
		Recurring:    m.Recurring,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// HolidayModelFromDomain creates a persistence model from a domain Holiday.
func HolidayModelFromDomain(h *leave.Holiday) *HolidayModel {
	return &HolidayModel{
		BaseModel: BaseModel{
			ID:        h.ID,
			CreatedAt: h.CreatedAt,
			UpdatedAt: h.UpdatedAt,
		},
		TenantID:     h.TenantID,
		Date:         h.Date,
		Name:         h.Name,
		Translations: h.Translations,
		Recurring:    h.Recurring,
	}
}

// asDate normalizes a DATE column read back by the driver to midnight UTC
func asDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func asDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := asDate(*t)
	return &d
}
