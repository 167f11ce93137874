package handler

import (
	"context"

	appnotification "github.com/We2399/idea-launcher-pro-sub001/internal/application/notification"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PushRequest sends a manual push notification
type PushRequest struct {
	UserIDs []string          `json:"user_ids" binding:"required,min=1,max=500,dive,uuid"`
	Title   string            `json:"title" binding:"required,max=100"`
	Body    string            `json:"body" binding:"required,max=500"`
	Data    map[string]string `json:"data"`
}

// CountsUseCases computes badge counters
type CountsUseCases interface {
	GetCounts(ctx context.Context, p identity.Principal) (*appnotification.Counts, error)
}

// PushUseCases sends manual pushes
type PushUseCases interface {
	Push(ctx context.Context, p identity.Principal, input appnotification.PushInput) (appnotification.DispatchResult, error)
}

// NotificationHandler serves badge counts and manual pushes
type NotificationHandler struct {
	BaseHandler
	counts CountsUseCases
	push   PushUseCases
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(counts CountsUseCases, push PushUseCases) *NotificationHandler {
	return &NotificationHandler{counts: counts, push: push}
}

// Counts returns the caller's badge counters
func (h *NotificationHandler) Counts(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	counts, err := h.counts.GetCounts(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// Push delivers a notification to the devices of the given users
func (h *NotificationHandler) Push(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req PushRequest
	if !h.bind(c, &req) {
		return
	}
	ids := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		ids = append(ids, uuid.MustParse(raw))
	}
	result, err := h.push.Push(c.Request.Context(), p, appnotification.PushInput{
		UserIDs: ids,
		Title:   req.Title,
		Body:    req.Body,
		Data:    req.Data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
