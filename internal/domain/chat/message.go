package chat

import (
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxBodyLength bounds a chat message body
const MaxBodyLength = 4000

// EditWindow is how long after sending a message can still be edited
const EditWindow = 24 * time.Hour

// Message is a direct message between two members of an organization
type Message struct {
	shared.TenantAggregateRoot
	SenderUserID    uuid.UUID
	RecipientUserID uuid.UUID
	Body            string
	EditedAt        *time.Time
	ReadAt          *time.Time
	Deleted         bool
	DeletedAt       *time.Time
}

// NewMessage creates a message from sender to recipient
func NewMessage(tenantID, sender, recipient uuid.UUID, body string) (*Message, error) {
	if sender == recipient {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "You cannot send a message to yourself")
	}
	body, err := validateBody(body)
	if err != nil {
		return nil, err
	}
	m := &Message{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, sender),
		SenderUserID:        sender,
		RecipientUserID:     recipient,
		Body:                body,
	}
	m.AddDomainEvent(NewMessageEvent(EventTypeMessageSent, m))
	return m, nil
}

// Edit replaces the body. Only the sender may edit, within EditWindow.
func (m *Message) Edit(by uuid.UUID, body string, now time.Time) error {
	if by != m.SenderUserID {
		return shared.NewDomainError(shared.CodeForbidden, "Only the sender can edit a message")
	}
	if m.Deleted {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot edit a deleted message")
	}
	if now.Sub(m.CreatedAt) > EditWindow {
		return shared.NewDomainError(shared.CodeInvalidState, "Messages can only be edited within 24 hours")
	}
	body, err := validateBody(body)
	if err != nil {
		return err
	}
	m.Body = body
	m.EditedAt = &now
	m.IncrementVersion()
	m.AddDomainEvent(NewMessageEvent(EventTypeMessageUpdated, m))
	return nil
}

// Delete soft-deletes the message for both participants
func (m *Message) Delete(by uuid.UUID, now time.Time) error {
	if by != m.SenderUserID {
		return shared.NewDomainError(shared.CodeForbidden, "Only the sender can delete a message")
	}
	if m.Deleted {
		return nil
	}
	m.Deleted = true
	m.DeletedAt = &now
	m.Body = ""
	m.IncrementVersion()
	m.AddDomainEvent(NewMessageEvent(EventTypeMessageUpdated, m))
	return nil
}

// IsParticipant reports whether the user is the sender or the recipient
func (m *Message) IsParticipant(userID uuid.UUID) bool {
	return m.SenderUserID == userID || m.RecipientUserID == userID
}

// Peer returns the other participant from the user's point of view
func (m *Message) Peer(userID uuid.UUID) uuid.UUID {
	if m.SenderUserID == userID {
		return m.RecipientUserID
	}
	return m.SenderUserID
}

// IsUnreadBy reports whether the user received the message and has not read it
func (m *Message) IsUnreadBy(userID uuid.UUID) bool {
	return m.RecipientUserID == userID && m.ReadAt == nil && !m.Deleted
}

func validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Message cannot be empty")
	}
	if len([]rune(body)) > MaxBodyLength {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Message cannot exceed 4000 characters")
	}
	return body, nil
}

// Conversation summarizes the thread with one peer
type Conversation struct {
	PeerUserID  uuid.UUID
	LastMessage *Message
	UnreadCount int64
}
