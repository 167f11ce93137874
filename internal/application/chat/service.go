// Package chat contains the direct messaging use cases.
package chat

import (
	"context"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/chat"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Realtime event types pushed to connected participants
const (
	EventMessageCreated = "message.created"
	EventMessageUpdated = "message.updated"
	EventMessageRead    = "message.read"
)

const (
	defaultConversationLimit = 50
	maxConversationLimit     = 200
)

// Broadcaster delivers realtime events to the connected sessions of users
type Broadcaster interface {
	Broadcast(ctx context.Context, tenantID uuid.UUID, userIDs []uuid.UUID, eventType string, data any) error
}

// MessageView is the wire form of a message
type MessageView struct {
	ID              uuid.UUID  `json:"id"`
	SenderUserID    uuid.UUID  `json:"sender_user_id"`
	RecipientUserID uuid.UUID  `json:"recipient_user_id"`
	Body            string     `json:"body"`
	Deleted         bool       `json:"deleted"`
	CreatedAt       time.Time  `json:"created_at"`
	EditedAt        *time.Time `json:"edited_at,omitempty"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
}

// ToMessageView converts a message to its wire form
func ToMessageView(m *chat.Message) MessageView {
	return MessageView{
		ID:              m.ID,
		SenderUserID:    m.SenderUserID,
		RecipientUserID: m.RecipientUserID,
		Body:            m.Body,
		Deleted:         m.Deleted,
		CreatedAt:       m.CreatedAt,
		EditedAt:        m.EditedAt,
		ReadAt:          m.ReadAt,
	}
}

// ReadReceipt tells the sender that a conversation was read
type ReadReceipt struct {
	ReaderUserID uuid.UUID `json:"reader_user_id"`
	PeerUserID   uuid.UUID `json:"peer_user_id"`
	Count        int64     `json:"count"`
	ReadAt       time.Time `json:"read_at"`
}

// Service runs direct messaging between members
type Service struct {
	messages    chat.Repository
	members     identity.MemberRepository
	events      shared.EventPublisher
	broadcaster Broadcaster
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new chat service. A nil broadcaster disables
// realtime delivery.
func NewService(messages chat.Repository, members identity.MemberRepository, events shared.EventPublisher, broadcaster Broadcaster, logger *zap.Logger) *Service {
	return &Service{messages: messages, members: members, events: events, broadcaster: broadcaster, logger: logger, now: time.Now}
}

// SendMessage sends a direct message. Both users must be active members.
func (s *Service) SendMessage(ctx context.Context, p identity.Principal, recipientUserID uuid.UUID, body string) (*chat.Message, error) {
	sender, err := s.members.FindByUserID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if !sender.IsActive() {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Suspended members cannot send messages")
	}
	recipient, err := s.members.FindByUserID(ctx, recipientUserID)
	if err != nil {
		return nil, err
	}
	if !recipient.IsActive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "The recipient is no longer an active member")
	}
	m, err := chat.NewMessage(p.TenantID, p.UserID, recipientUserID, body)
	if err != nil {
		return nil, err
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	s.publish(ctx, m)
	s.broadcast(ctx, m, EventMessageCreated, ToMessageView(m))
	return m, nil
}

// EditMessage replaces the body of the caller's message
func (s *Service) EditMessage(ctx context.Context, p identity.Principal, id uuid.UUID, body string) (*chat.Message, error) {
	m, err := s.ownMessage(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := m.Edit(p.UserID, body, s.now()); err != nil {
		return nil, err
	}
	return s.saveUpdate(ctx, m)
}

// DeleteMessage soft-deletes the caller's message
func (s *Service) DeleteMessage(ctx context.Context, p identity.Principal, id uuid.UUID) (*chat.Message, error) {
	m, err := s.ownMessage(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if m.Deleted {
		return m, nil
	}
	if err := m.Delete(p.UserID, s.now()); err != nil {
		return nil, err
	}
	return s.saveUpdate(ctx, m)
}

// MarkConversationRead marks every message from peer to the caller read
// and notifies the peer
func (s *Service) MarkConversationRead(ctx context.Context, p identity.Principal, peerUserID uuid.UUID) (int64, error) {
	now := s.now()
	count, err := s.messages.MarkRead(ctx, p.UserID, peerUserID, now)
	if err != nil {
		return 0, err
	}
	if count > 0 && s.broadcaster != nil {
		receipt := ReadReceipt{ReaderUserID: p.UserID, PeerUserID: peerUserID, Count: count, ReadAt: now}
		if err := s.broadcaster.Broadcast(ctx, p.TenantID, []uuid.UUID{peerUserID, p.UserID}, EventMessageRead, receipt); err != nil {
			s.logger.Warn("Failed to broadcast read receipt", zap.Error(err))
		}
	}
	return count, nil
}

// ListConversation returns messages with a peer, newest first, created
// before the cursor
func (s *Service) ListConversation(ctx context.Context, p identity.Principal, peerUserID uuid.UUID, before *time.Time, limit int) ([]*chat.Message, error) {
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	if limit > maxConversationLimit {
		limit = maxConversationLimit
	}
	return s.messages.FindConversation(ctx, p.UserID, peerUserID, before, limit)
}

// ListConversations returns the last message and unread count per peer
func (s *Service) ListConversations(ctx context.Context, p identity.Principal) ([]chat.Conversation, error) {
	return s.messages.FindConversations(ctx, p.UserID)
}

func (s *Service) ownMessage(ctx context.Context, p identity.Principal, id uuid.UUID) (*chat.Message, error) {
	m, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsParticipant(p.UserID) {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (s *Service) saveUpdate(ctx context.Context, m *chat.Message) (*chat.Message, error) {
	if err := s.messages.Update(ctx, m); err != nil {
		return nil, err
	}
	s.publish(ctx, m)
	s.broadcast(ctx, m, EventMessageUpdated, ToMessageView(m))
	return m, nil
}

func (s *Service) broadcast(ctx context.Context, m *chat.Message, eventType string, data any) {
	if s.broadcaster == nil {
		return
	}
	users := []uuid.UUID{m.RecipientUserID, m.SenderUserID}
	if err := s.broadcaster.Broadcast(ctx, m.TenantID, users, eventType, data); err != nil {
		s.logger.Warn("Failed to broadcast chat event",
			zap.String("message_id", m.ID.String()),
			zap.String("type", eventType),
			zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, m *chat.Message) {
	if err := shared.PublishAndClear(ctx, s.events, m); err != nil {
		s.logger.Warn("Failed to publish chat events",
			zap.String("message_id", m.ID.String()),
			zap.Error(err))
	}
}
