package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// WebhookService applies Stripe webhook events to organizations
type WebhookService struct {
	secret        string
	subscriptions *SubscriptionService
	orgs          identity.OrganizationRepository
	logger        *zap.Logger
}

// NewWebhookService creates a new Stripe webhook service
func NewWebhookService(secret string, subscriptions *SubscriptionService, orgs identity.OrganizationRepository, logger *zap.Logger) *WebhookService {
	return &WebhookService{secret: secret, subscriptions: subscriptions, orgs: orgs, logger: logger}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies and applies a Stripe webhook event
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.secret)
	if err != nil {
		s.logger.Warn("Failed to verify webhook signature", zap.Error(err))
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Webhook signature verification failed")
	}
	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
	return s.handle(ctx, event)
}

func (s *WebhookService) handle(ctx context.Context, event stripe.Event) (*WebhookResult, error) {
	result := &WebhookResult{EventID: event.ID, EventType: string(event.Type), Processed: true}

	var customerID string
	var err error
	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		customerID, err = subscriptionCustomer(event)
	case "invoice.paid", "invoice.payment_failed":
		customerID, err = invoiceCustomer(event)
	default:
		result.Message = "Event type not handled"
		return result, nil
	}
	if err != nil {
		result.Processed = false
		result.Message = err.Error()
		return result, shared.NewDomainError(shared.CodeInvalidInput, err.Error())
	}
	if customerID == "" {
		result.Message = "Event has no subscription customer"
		return result, nil
	}

	org, err := s.orgs.FindByStripeCustomerID(ctx, customerID)
	if errors.Is(err, shared.ErrNotFound) {
		// acknowledged so Stripe stops retrying events for unknown customers
		s.logger.Warn("Organization not found for Stripe customer", zap.String("customer_id", customerID))
		result.Message = "Unknown customer"
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.subscriptions.Sync(ctx, org); err != nil {
		s.logger.Error("Failed to sync subscription from webhook",
			zap.String("event_id", event.ID),
			zap.String("tenant_id", org.ID.String()),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}
	return result, nil
}

func subscriptionCustomer(event stripe.Event) (string, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return "", fmt.Errorf("failed to parse subscription: %w", err)
	}
	if sub.Customer == nil {
		return "", nil
	}
	return sub.Customer.ID, nil
}

func invoiceCustomer(event stripe.Event) (string, error) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return "", fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.Subscription == nil || invoice.Customer == nil {
		return "", nil
	}
	return invoice.Customer.ID, nil
}
