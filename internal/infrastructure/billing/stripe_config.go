package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/config"
	"github.com/stripe/stripe-go/v81"
)

// StripeConfig holds configuration for Stripe integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string

	// PriceIDs maps Stripe Price IDs to plans
	PriceIDs map[string]identity.Plan

	// RequestTimeout bounds each API call
	RequestTimeout time.Duration
}

// NewStripeConfig derives the adapter configuration from the app config
func NewStripeConfig(cfg config.StripeConfig) *StripeConfig {
	prices := make(map[string]identity.Plan, 2)
	if cfg.StandardPrice != "" {
		prices[cfg.StandardPrice] = identity.PlanStandard
	}
	if cfg.PremiumPrice != "" {
		prices[cfg.PremiumPrice] = identity.PlanPremium
	}
	return &StripeConfig{
		SecretKey:      cfg.SecretKey,
		PriceIDs:       prices,
		RequestTimeout: cfg.RequestTimeout,
	}
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") && !strings.HasPrefix(c.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key must be a secret or restricted key")
	}
	return nil
}

// PlanForPrice maps a price to a plan. Unknown prices map to free.
func (c *StripeConfig) PlanForPrice(priceID string) identity.Plan {
	if plan, ok := c.PriceIDs[priceID]; ok {
		return plan
	}
	return identity.PlanFree
}

// InitStripeClient initializes the Stripe client with the configured API key
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
}
