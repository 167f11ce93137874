package models

import (
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/chat"
	"github.com/google/uuid"
)

// ChatMessageModel is the persistence model for chat_messages.
type ChatMessageModel struct {
	TenantAggregateModel
	SenderUserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_pair,priority:1"`
	RecipientUserID uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_pair,priority:2;index:idx_chat_unread,priority:1"`
	Body            string    `gorm:"type:text;not null"`
	EditedAt        *time.Time
	ReadAt          *time.Time `gorm:"index:idx_chat_unread,priority:2"`
	Deleted         bool       `gorm:"not null;default:false"`
	DeletedAt       *time.Time
}

// TableName returns the table name for GORM
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts the persistence model to a domain Message.
func (m *ChatMessageModel) ToDomain() *chat.Message {
	return &chat.Message{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		SenderUserID:        m.SenderUserID,
		RecipientUserID:     m.RecipientUserID,
		Body:                m.Body,
		EditedAt:            m.EditedAt,
		ReadAt:              m.ReadAt,
		Deleted:             m.Deleted,
		DeletedAt:           m.DeletedAt,
	}
}

// FromDomain populates the persistence model from a domain Message.
func (m *ChatMessageModel) FromDomain(msg *chat.Message) {
	m.FromDomainTenantAggregateRoot(msg.TenantAggregateRoot)
	m.SenderUserID = msg.SenderUserID
	m.RecipientUserID = msg.RecipientUserID
	m.Body = msg.Body
	m.EditedAt = msg.EditedAt
	m.ReadAt = msg.ReadAt
	m.Deleted = msg.Deleted
	m.DeletedAt = msg.DeletedAt
}

// ChatMessageModelFromDomain creates a persistence model from a domain Message.
func ChatMessageModelFromDomain(msg *chat.Message) *ChatMessageModel {
	m := &ChatMessageModel{}
	m.FromDomain(msg)
	return m
}
