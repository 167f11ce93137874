// Package billing reads subscription state from Stripe.
package billing

import (
	"context"
	"fmt"
	"time"

	billingapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/billing"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/subscription"
	"go.uber.org/zap"
)

// StripeAdapter implements billingapp.SubscriptionProvider
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.InitStripeClient()
	return &StripeAdapter{config: config, logger: logger}, nil
}

// FetchSubscription returns the subscription by id, or the most relevant
// subscription of the customer when no id is stored. It returns nil when
// the customer has none.
func (a *StripeAdapter) FetchSubscription(ctx context.Context, subscriptionID, customerID string) (*billingapp.SubscriptionSnapshot, error) {
	if subscriptionID != "" {
		params := &stripe.SubscriptionParams{}
		params.Context = ctx
		sub, err := subscription.Get(subscriptionID, params)
		if err != nil {
			a.logger.Error("Failed to get Stripe subscription",
				zap.String("subscription_id", subscriptionID),
				zap.Error(err))
			return nil, fmt.Errorf("stripe: failed to get subscription: %w", err)
		}
		return a.snapshot(sub), nil
	}
	if customerID == "" {
		return nil, nil
	}

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(10)

	var best *stripe.Subscription
	iter := subscription.List(params)
	for iter.Next() {
		sub := iter.Subscription()
		if best == nil || statusRank(sub.Status) > statusRank(best.Status) {
			best = sub
		}
	}
	if err := iter.Err(); err != nil {
		a.logger.Error("Failed to list Stripe subscriptions",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to list subscriptions: %w", err)
	}
	if best == nil {
		return nil, nil
	}
	return a.snapshot(best), nil
}

func (a *StripeAdapter) snapshot(sub *stripe.Subscription) *billingapp.SubscriptionSnapshot {
	out := &billingapp.SubscriptionSnapshot{
		SubscriptionID: sub.ID,
		Status:         MapSubscriptionStatus(sub.Status),
		Plan:           identity.PlanFree,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		out.CurrentPeriodEnd = &end
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.Plan = a.config.PlanForPrice(sub.Items.Data[0].Price.ID)
	}
	return out
}

// MapSubscriptionStatus folds Stripe's statuses into the six the
// organization tracks
func MapSubscriptionStatus(status stripe.SubscriptionStatus) identity.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return identity.SubscriptionActive
	case stripe.SubscriptionStatusTrialing:
		return identity.SubscriptionTrialing
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return identity.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired, stripe.SubscriptionStatusPaused:
		return identity.SubscriptionCanceled
	case stripe.SubscriptionStatusIncomplete:
		return identity.SubscriptionIncomplete
	default:
		return identity.SubscriptionNone
	}
}

// statusRank prefers live subscriptions when a customer has several
func statusRank(status stripe.SubscriptionStatus) int {
	switch MapSubscriptionStatus(status) {
	case identity.SubscriptionActive:
		return 5
	case identity.SubscriptionTrialing:
		return 4
	case identity.SubscriptionPastDue:
		return 3
	case identity.SubscriptionIncomplete:
		return 2
	case identity.SubscriptionCanceled:
		return 1
	}
	return 0
}

var _ billingapp.SubscriptionProvider = (*StripeAdapter)(nil)
