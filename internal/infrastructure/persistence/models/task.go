package models

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/task"
	"github.com/google/uuid"
)

// TaskModel is the persistence model for tasks.
type TaskModel struct {
	TenantAggregateModel
	Title            string        `gorm:"type:varchar(200);not null"`
	Description      string        `gorm:"type:text"`
	AssigneeMemberID uuid.UUID     `gorm:"type:uuid;not null;index"`
	AssigneeUserID   uuid.UUID     `gorm:"type:uuid;not null;index"`
	AssignedBy       uuid.UUID     `gorm:"type:uuid;not null;index"`
	Priority         task.Priority `gorm:"type:varchar(10);not null;default:'normal'"`
	Status           task.Status   `gorm:"type:varchar(20);not null;default:'todo';index"`
	DueDate          *time.Time    `gorm:"type:date;index"`
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence model to a domain Task.
func (m *TaskModel) ToDomain() *task.Task {
	return &task.Task{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Title:               m.Title,
		Description:         m.Description,
		AssigneeMemberID:    m.AssigneeMemberID,
		AssigneeUserID:      m.AssigneeUserID,
		AssignedBy:          m.AssignedBy,
		Priority:            m.Priority,
		Status:              m.Status,
		DueDate:             asDatePtr(m.DueDate),
		StartedAt:           m.StartedAt,
		CompletedAt:         m.CompletedAt,
		CancelledAt:         m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain Task.
func (m *TaskModel) FromDomain(t *task.Task) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.Title = t.Title
	m.Description = t.Description
	m.AssigneeMemberID = t.AssigneeMemberID
	m.AssigneeUserID = t.AssigneeUserID
	m.AssignedBy = t.AssignedBy
	m.Priority = t.Priority
	m.Status = t.Status
	m.DueDate = t.DueDate
	m.StartedAt = t.StartedAt
	m.CompletedAt = t.CompletedAt
	m.CancelledAt = t.CancelledAt
}

// TaskModelFromDomain creates a persistence model from a domain Task.
func TaskModelFromDomain(t *task.Task) *TaskModel {
	m := &TaskModel{}
	m.FromDomain(t)
	return m
}
