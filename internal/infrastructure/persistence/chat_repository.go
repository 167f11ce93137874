package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/chat"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/models"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
)

// GormChatRepository implements chat.Repository using GORM
type GormChatRepository struct {
	db *tenant.DB
}

// NewGormChatRepository creates a new GormChatRepository
func NewGormChatRepository(db *tenant.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// Create inserts a message
func (r *GormChatRepository) Create(ctx context.Context, m *chat.Message) error {
	if err := r.db.Conn(ctx).Create(models.ChatMessageModelFromDomain(m)).Error; err != nil {
		return err
	}
	m.MarkPersisted()
	return nil
}

// Update saves a message with optimistic locking
func (r *GormChatRepository) Update(ctx context.Context, m *chat.Message) error {
	if err := updateVersioned(r.db.Scoped(ctx), models.ChatMessageModelFromDomain(m), m.PersistedVersion()); err != nil {
		return err
	}
	m.MarkPersisted()
	return nil
}

// FindByID finds a message of the current organization
func (r *GormChatRepository) FindByID(ctx context.Context, id uuid.UUID) (*chat.Message, error) {
	var model models.ChatMessageModel
	if err := r.db.Scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	m := model.ToDomain()
	m.MarkPersisted()
	return m, nil
}

// FindConversation returns messages between the users created before the
// cursor, newest first
func (r *GormChatRepository) FindConversation(ctx context.Context, userID, peerID uuid.UUID, before *time.Time, limit int) ([]*chat.Message, error) {
	query := r.db.Scoped(ctx).
		Where("(sender_user_id = ? AND recipient_user_id = ?) OR (sender_user_id = ? AND recipient_user_id = ?)",
			userID, peerID, peerID, userID)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}
	var rows []models.ChatMessageModel
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return loadedMessages(rows), nil
}

type conversationPeer struct {
	PeerID uuid.UUID
}

type unreadBySender struct {
	SenderUserID uuid.UUID
	Unread       int64
}

// FindConversations summarises every conversation of the user, most recent first
func (r *GormChatRepository) FindConversations(ctx context.Context, userID uuid.UUID) ([]chat.Conversation, error) {
	var peers []conversationPeer
	if err := r.db.Scoped(ctx).
		Model(&models.ChatMessageModel{}).
		Select("CASE WHEN sender_user_id = ? THEN recipient_user_id ELSE sender_user_id END AS peer_id", userID).
		Where("sender_user_id = ? OR recipient_user_id = ?", userID, userID).
		Group("peer_id").
		Scan(&peers).Error; err != nil {
		return nil, err
	}

	var unread []unreadBySender
	if err := r.db.Scoped(ctx).
		Model(&models.ChatMessageModel{}).
		Select("sender_user_id, COUNT(*) AS unread").
		Where("recipient_user_id = ? AND read_at IS NULL AND deleted = ?", userID, false).
		Group("sender_user_id").
		Scan(&unread).Error; err != nil {
		return nil, err
	}
	unreadByPeer := make(map[uuid.UUID]int64, len(unread))
	for _, u := range unread {
		unreadByPeer[u.SenderUserID] = u.Unread
	}

	out := make([]chat.Conversation, 0, len(peers))
	for _, p := range peers {
		last, err := r.FindConversation(ctx, userID, p.PeerID, nil, 1)
		if err != nil {
			return nil, err
		}
		conv := chat.Conversation{PeerUserID: p.PeerID, UnreadCount: unreadByPeer[p.PeerID]}
		if len(last) > 0 {
			conv.LastMessage = last[0]
		}
		out = append(out, conv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lastAt(out[i]).After(lastAt(out[j]))
	})
	return out, nil
}

func lastAt(c chat.Conversation) time.Time {
	if c.LastMessage == nil {
		return time.Time{}
	}
	return c.LastMessage.CreatedAt
}

// MarkRead stamps every unread message from peer to user
func (r *GormChatRepository) MarkRead(ctx context.Context, userID, peerID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.Scoped(ctx).
		Model(&models.ChatMessageModel{}).
		Where("recipient_user_id = ? AND sender_user_id = ? AND read_at IS NULL", userID, peerID).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}

// CountUnread counts unread messages addressed to the user
func (r *GormChatRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Scoped(ctx).
		Model(&models.ChatMessageModel{}).
		Where("recipient_user_id = ? AND read_at IS NULL AND deleted = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func loadedMessages(rows []models.ChatMessageModel) []*chat.Message {
	out := make([]*chat.Message, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
		out[i].MarkPersisted()
	}
	return out
}

// Ensure GormChatRepository implements chat.Repository
var _ chat.Repository = (*GormChatRepository)(nil)
