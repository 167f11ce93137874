// Package billing keeps organization subscription state in sync with the
// billing provider and decides when an organization turns read-only.
package billing

import (
	"context"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubscriptionSnapshot is the provider's view of a subscription
type SubscriptionSnapshot struct {
	SubscriptionID   string
	CustomerID       string
	Status           identity.SubscriptionStatus
	Plan             identity.Plan
	CurrentPeriodEnd *time.Time
}

// SubscriptionProvider reads subscriptions from the billing provider
type SubscriptionProvider interface {
	// FetchSubscription returns the subscription by id, or the best match
	// for the customer when no id is known. Nil means none exists.
	FetchSubscription(ctx context.Context, subscriptionID, customerID string) (*SubscriptionSnapshot, error)
}

// SubscriptionView is the result of a subscription check
type SubscriptionView struct {
	Subscribed       bool                        `json:"subscribed"`
	Status           identity.SubscriptionStatus `json:"status"`
	Plan             identity.Plan               `json:"plan"`
	CurrentPeriodEnd *time.Time                  `json:"current_period_end,omitempty"`
	Writable         bool                        `json:"writable"`
}

// Config holds subscription policy
type Config struct {
	GracePeriod   time.Duration
	CheckCacheTTL time.Duration
	// EnforceWrites turns lapsed organizations read-only
	EnforceWrites bool
}

// SubscriptionService checks and caches organization subscriptions
type SubscriptionService struct {
	orgs     identity.OrganizationRepository
	provider SubscriptionProvider
	cache    cache.ValueCache
	config   Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewSubscriptionService creates a new subscription service. A nil provider
// serves the state last stored on the organization.
func NewSubscriptionService(orgs identity.OrganizationRepository, provider SubscriptionProvider, valueCache cache.ValueCache, config Config, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{orgs: orgs, provider: provider, cache: valueCache, config: config, logger: logger, now: time.Now}
}

func cacheKey(tenantID uuid.UUID) string {
	return "subscription:" + tenantID.String()
}

// CheckSubscription returns the organization's subscription, refreshing it
// from the provider when the cached check is stale
func (s *SubscriptionService) CheckSubscription(ctx context.Context, tenantID uuid.UUID) (*SubscriptionView, error) {
	var cached SubscriptionView
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, cacheKey(tenantID), &cached); err == nil && ok {
			return &cached, nil
		} else if err != nil {
			s.logger.Warn("Subscription cache read failed", zap.Error(err))
		}
	}
	org, err := s.orgs.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if s.provider != nil && (org.StripeCustomerID != "" || org.StripeSubscriptionID != "") {
		if err := s.Sync(ctx, org); err != nil {
			// a provider outage falls back to the stored state
			s.logger.Warn("Subscription refresh failed, serving stored state",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
	}
	view := s.viewOf(org)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(tenantID), view, s.config.CheckCacheTTL); err != nil {
			s.logger.Warn("Subscription cache write failed", zap.Error(err))
		}
	}
	return view, nil
}

// Sync fetches the organization's subscription and stores it
func (s *SubscriptionService) Sync(ctx context.Context, org *identity.Organization) error {
	snap, err := s.provider.FetchSubscription(ctx, org.StripeSubscriptionID, org.StripeCustomerID)
	if err != nil {
		return err
	}
	now := s.now()
	if snap == nil {
		org.ApplySubscription("", identity.SubscriptionNone, identity.PlanFree, nil, now)
	} else {
		org.ApplySubscription(snap.SubscriptionID, snap.Status, snap.Plan, snap.CurrentPeriodEnd, now)
	}
	if err := s.orgs.Update(ctx, org); err != nil {
		return err
	}
	s.Invalidate(ctx, org.ID)
	s.logger.Info("Subscription synced",
		zap.String("tenant_id", org.ID.String()),
		zap.String("status", string(org.SubscriptionStatus)),
		zap.String("plan", string(org.Plan)))
	return nil
}

// IsWritable reports whether write requests are allowed for the
// organization. It always allows writes when enforcement is off.
func (s *SubscriptionService) IsWritable(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	if !s.config.EnforceWrites {
		return true, nil
	}
	view, err := s.CheckSubscription(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return view.Writable, nil
}

// Invalidate drops the cached check of an organization
func (s *SubscriptionService) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(tenantID)); err != nil {
		s.logger.Warn("Subscription cache delete failed", zap.Error(err))
	}
}

func (s *SubscriptionService) viewOf(org *identity.Organization) *SubscriptionView {
	return &SubscriptionView{
		Subscribed:       org.SubscriptionStatus.IsSubscribed(),
		Status:           org.SubscriptionStatus,
		Plan:             org.Plan,
		CurrentPeriodEnd: org.CurrentPeriodEnd,
		Writable:         org.IsWritable(s.now(), s.config.GracePeriod),
	}
}
