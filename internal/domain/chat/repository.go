package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists chat messages
type Repository interface {
	Create(ctx context.Context, m *Message) error
	Update(ctx context.Context, m *Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)
	// FindConversation returns messages between the two users created before
	// the cursor, newest first
	FindConversation(ctx context.Context, userID, peerID uuid.UUID, before *time.Time, limit int) ([]*Message, error)
	FindConversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error)
	// MarkRead stamps every unread message from peer to user and returns the count
	MarkRead(ctx context.Context, userID, peerID uuid.UUID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
