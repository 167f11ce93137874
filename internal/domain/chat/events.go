package chat

import (
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeMessage is the aggregate type for chat messages
const AggregateTypeMessage = "ChatMessage"

// Chat domain event types
const (
	EventTypeMessageSent    = "ChatMessageSent"
	EventTypeMessageUpdated = "ChatMessageUpdated"
)

// MessageEvent is published when a message is sent, edited or deleted
type MessageEvent struct {
	shared.BaseDomainEvent
	SenderUserID    uuid.UUID `json:"sender_user_id"`
	RecipientUserID uuid.UUID `json:"recipient_user_id"`
	Preview         string    `json:"preview"`
	Deleted         bool      `json:"deleted"`
}

// NewMessageEvent creates a chat event of the given type
func NewMessageEvent(eventType string, m *Message) *MessageEvent {
	return &MessageEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeMessage, m.ID, m.TenantID),
		SenderUserID:    m.SenderUserID,
		RecipientUserID: m.RecipientUserID,
		Preview:         Preview(m.Body, 100),
		Deleted:         m.Deleted,
	}
}

// Preview shortens a body for notifications
func Preview(body string, max int) string {
	r := []rune(body)
	if len(r) <= max {
		return body
	}
	return string(r[:max-1]) + "…"
}
