package handler

import (
	"context"
	"io"
	"net/http"

	appbilling "github.com/We2399/idea-launcher-pro-sub001/internal/application/billing"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stripe webhooks are small; anything larger is not from Stripe
const maxWebhookPayloadSize = 65536

// SubscriptionUseCases reads an organization's subscription
type SubscriptionUseCases interface {
	CheckSubscription(ctx context.Context, tenantID uuid.UUID) (*appbilling.SubscriptionView, error)
}

// WebhookUseCases verifies and applies Stripe events
type WebhookUseCases interface {
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (*appbilling.WebhookResult, error)
}

// WebhookResponse acknowledges a Stripe delivery
type WebhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Message   string `json:"message,omitempty"`
}

// BillingHandler serves the subscription status and the Stripe webhook
type BillingHandler struct {
	BaseHandler
	subscriptions SubscriptionUseCases
	webhooks      WebhookUseCases
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(subscriptions SubscriptionUseCases, webhooks WebhookUseCases) *BillingHandler {
	return &BillingHandler{subscriptions: subscriptions, webhooks: webhooks}
}

// Subscription returns the caller's organization subscription
func (h *BillingHandler) Subscription(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	view, err := h.subscriptions.CheckSubscription(c.Request.Context(), p.TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// StripeWebhook receives Stripe events. It is public; the signature over
// the raw body is the credential. Events that can never be applied are
// acknowledged so Stripe stops retrying them, while storage failures
// answer 500 and are retried.
func (h *BillingHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Failed to read request body"})
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, WebhookResponse{Message: "Payload too large"})
		return
	}
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusUnauthorized, WebhookResponse{Message: "Missing Stripe-Signature header"})
		return
	}

	result, err := h.webhooks.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil && result == nil {
		h.HandleError(c, err)
		return
	}
	if err != nil {
		if de, ok := shared.AsDomainError(err); !ok || de.Code != shared.CodeInvalidInput {
			logger.L(c.Request.Context()).Error("Stripe webhook failed",
				zap.String("event_id", result.EventID),
				zap.String("event_type", result.EventType),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, WebhookResponse{
				EventID:   result.EventID,
				EventType: result.EventType,
				Message:   "Webhook processing failed",
			})
			return
		}
		c.JSON(http.StatusOK, WebhookResponse{
			Received:  true,
			EventID:   result.EventID,
			EventType: result.EventType,
			Message:   "Webhook received but could not be applied",
		})
		return
	}
	c.JSON(http.StatusOK, WebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Message:   result.Message,
	})
}
