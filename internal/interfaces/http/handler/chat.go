package handler

import (
	"context"
	"net/http"
	"time"

	appchat "github.com/We2399/idea-launcher-pro-sub001/internal/application/chat"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/chat"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SendMessageRequest is a new direct message
type SendMessageRequest struct {
	RecipientUserID string `json:"recipient_user_id" binding:"required,uuid"`
	Body            string `json:"body" binding:"required,max=4000"`
}

// EditMessageRequest replaces a message body
type EditMessageRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}

// ConversationResponse summarizes a conversation with one peer
type ConversationResponse struct {
	PeerUserID  uuid.UUID            `json:"peer_user_id"`
	LastMessage *appchat.MessageView `json:"last_message,omitempty"`
	UnreadCount int64                `json:"unread_count"`
}

func toConversationResponse(conv chat.Conversation) ConversationResponse {
	resp := ConversationResponse{PeerUserID: conv.PeerUserID, UnreadCount: conv.UnreadCount}
	if conv.LastMessage != nil {
		view := appchat.ToMessageView(conv.LastMessage)
		resp.LastMessage = &view
	}
	return resp
}

// ChatUseCases is what the chat handler needs
type ChatUseCases interface {
	SendMessage(ctx context.Context, p identity.Principal, recipientUserID uuid.UUID, body string) (*chat.Message, error)
	EditMessage(ctx context.Context, p identity.Principal, id uuid.UUID, body string) (*chat.Message, error)
	DeleteMessage(ctx context.Context, p identity.Principal, id uuid.UUID) (*chat.Message, error)
	MarkConversationRead(ctx context.Context, p identity.Principal, peerUserID uuid.UUID) (int64, error)
	ListConversation(ctx context.Context, p identity.Principal, peerUserID uuid.UUID, before *time.Time, limit int) ([]*chat.Message, error)
	ListConversations(ctx context.Context, p identity.Principal) ([]chat.Conversation, error)
}

// WebSocketServer upgrades an authenticated request to a realtime session
type WebSocketServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, tenantID, userID uuid.UUID) error
}

// ChatHandler serves direct messages and the realtime socket
type ChatHandler struct {
	BaseHandler
	chat ChatUseCases
	ws   WebSocketServer
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatUseCases, ws WebSocketServer) *ChatHandler {
	return &ChatHandler{chat: chat, ws: ws}
}

// Send posts a direct message
func (h *ChatHandler) Send(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if !h.bind(c, &req) {
		return
	}
	m, err := h.chat.SendMessage(c.Request.Context(), p, uuid.MustParse(req.RecipientUserID), req.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appchat.ToMessageView(m))
}

// Edit changes the caller's message
func (h *ChatHandler) Edit(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req EditMessageRequest
	if !h.bind(c, &req) {
		return
	}
	m, err := h.chat.EditMessage(c.Request.Context(), p, id, req.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appchat.ToMessageView(m))
}

// Delete soft deletes the caller's message
func (h *ChatHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	m, err := h.chat.DeleteMessage(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appchat.ToMessageView(m))
}

// MarkRead marks every message from the peer as read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	peer, ok := h.uuidParam(c, "user_id")
	if !ok {
		return
	}
	n, err := h.chat.MarkConversationRead(c.Request.Context(), p, peer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"marked": n})
}

// Conversation pages backwards through the messages with a peer
func (h *ChatHandler) Conversation(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	peer, ok := h.uuidParam(c, "user_id")
	if !ok {
		return
	}
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			h.BadRequest(c, "before must be an RFC 3339 timestamp")
			return
		}
		before = &t
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok || limit < 0 {
		h.BadRequest(c, "Invalid limit")
		return
	}
	messages, err := h.chat.ListConversation(c.Request.Context(), p, peer, before, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapSlice(messages, appchat.ToMessageView))
}

// Conversations lists the caller's conversations, most recent first
func (h *ChatHandler) Conversations(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	conversations, err := h.chat.ListConversations(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapSlice(conversations, toConversationResponse))
}

// WebSocket upgrades the connection. A failed upgrade has already been
// answered by the upgrader, so it is only logged.
func (h *ChatHandler) WebSocket(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	if err := h.ws.ServeWS(c.Writer, c.Request, p.TenantID, p.UserID); err != nil {
		logger.L(c.Request.Context()).Warn("WebSocket upgrade failed", zap.Error(err))
		c.Abort()
	}
}
