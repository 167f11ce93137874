package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *identity.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *identity.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*identity.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrganizationRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*identity.Organization, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindActive(ctx context.Context) ([]*identity.Organization, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*identity.Organization), args.Error(1)
}

type fakeProvider struct {
	snap  *SubscriptionSnapshot
	err   error
	calls int
}

func (f *fakeProvider) FetchSubscription(_ context.Context, _, _ string) (*SubscriptionSnapshot, error) {
	f.calls++
	return f.snap, f.err
}

var now = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

func billedOrg(t *testing.T) *identity.Organization {
	t.Helper()
	org, err := identity.NewOrganization("Acme", "acme")
	require.NoError(t, err)
	org.StripeCustomerID = "cus_acme"
	org.ClearDomainEvents()
	org.MarkPersisted()
	return org
}

func newSubscriptionService(t *testing.T, orgs *MockOrganizationRepository, provider SubscriptionProvider, enforce bool) *SubscriptionService {
	t.Helper()
	valueCache := cache.NewInMemoryValueCache()
	t.Cleanup(func() { _ = valueCache.Close() })
	svc := NewSubscriptionService(orgs, provider, valueCache, Config{
		GracePeriod:   7 * 24 * time.Hour,
		CheckCacheTTL: time.Hour,
		EnforceWrites: enforce,
	}, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestSubscriptionService_CheckSubscription(t *testing.T) {
	org := billedOrg(t)
	orgs := new(MockOrganizationRepository)
	orgs.On("FindByID", mock.Anything, org.ID).Return(org, nil)
	orgs.On("Update", mock.Anything, org).Return(nil)
	periodEnd := now.Add(20 * 24 * time.Hour)
	provider := &fakeProvider{snap: &SubscriptionSnapshot{
		SubscriptionID:   "sub_1",
		CustomerID:       "cus_acme",
		Status:           identity.SubscriptionActive,
		Plan:             identity.PlanPremium,
		CurrentPeriodEnd: &periodEnd,
	}}
	svc := newSubscriptionService(t, orgs, provider, true)

	view, err := svc.CheckSubscription(context.Background(), org.ID)
	require.NoError(t, err)
	assert.True(t, view.Subscribed)
	assert.Equal(t, identity.PlanPremium, view.Plan)
	assert.True(t, view.Writable)
	assert.Equal(t, "sub_1", org.StripeSubscriptionID)

	_, err = svc.CheckSubscription(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls, "second check is served from cache")
}

func TestSubscriptionService_LapsedOrganizationIsReadOnly(t *testing.T) {
	org := billedOrg(t)
	org.StripeSubscriptionID = "sub_old"
	orgs := new(MockOrganizationRepository)
	orgs.On("FindByID", mock.Anything, org.ID).Return(org, nil)
	orgs.On("Update", mock.Anything, org).Return(nil)
	ended := now.Add(-10 * 24 * time.Hour)
	provider := &fakeProvider{snap: &SubscriptionSnapshot{SubscriptionID: "sub_old", Status: identity.SubscriptionCanceled, CurrentPeriodEnd: &ended}}

	writable, err := newSubscriptionService(t, orgs, provider, true).IsWritable(context.Background(), org.ID)
	require.NoError(t, err)
	assert.False(t, writable)

	writable, err = newSubscriptionService(t, orgs, provider, false).IsWritable(context.Background(), org.ID)
	require.NoError(t, err)
	assert.True(t, writable)
}

func TestSubscriptionService_ProviderOutageServesStoredState(t *testing.T) {
	org := billedOrg(t)
	org.SubscriptionStatus = identity.SubscriptionTrialing
	orgs := new(MockOrganizationRepository)
	orgs.On("FindByID", mock.Anything, org.ID).Return(org, nil)
	svc := newSubscriptionService(t, orgs, &fakeProvider{err: errors.New("stripe: 503")}, true)

	view, err := svc.CheckSubscription(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.SubscriptionTrialing, view.Status)
	orgs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func subscriptionEvent(t *testing.T, eventType stripe.EventType, customerID string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"id": "sub_1", "object": "subscription", "customer": customerID, "status": "active"})
	require.NoError(t, err)
	return stripe.Event{ID: "evt_1", Type: eventType, Data: &stripe.EventData{Raw: raw}}
}

func TestWebhookService(t *testing.T) {
	t.Run("invalid signature", func(t *testing.T) {
		svc := NewWebhookService("whsec_test", nil, new(MockOrganizationRepository), zap.NewNop())
		_, err := svc.ProcessWebhook(context.Background(), []byte(`{"type":"invoice.paid"}`), "bogus")
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("subscription update syncs the organization", func(t *testing.T) {
		org := billedOrg(t)
		orgs := new(MockOrganizationRepository)
		orgs.On("FindByStripeCustomerID", mock.Anything, "cus_acme").Return(org, nil)
		orgs.On("Update", mock.Anything, org).Return(nil)
		provider := &fakeProvider{snap: &SubscriptionSnapshot{SubscriptionID: "sub_1", Status: identity.SubscriptionPastDue, Plan: identity.PlanStandard}}
		svc := NewWebhookService("whsec_test", newSubscriptionService(t, orgs, provider, true), orgs, zap.NewNop())

		result, err := svc.handle(context.Background(), subscriptionEvent(t, "customer.subscription.updated", "cus_acme"))
		require.NoError(t, err)
		assert.True(t, result.Processed)
		assert.Equal(t, identity.SubscriptionPastDue, org.SubscriptionStatus)
		assert.Equal(t, identity.PlanStandard, org.Plan)
	})

	t.Run("unknown customer is acknowledged", func(t *testing.T) {
		orgs := new(MockOrganizationRepository)
		orgs.On("FindByStripeCustomerID", mock.Anything, "cus_ghost").Return(nil, shared.ErrNotFound)
		svc := NewWebhookService("whsec_test", nil, orgs, zap.NewNop())

		result, err := svc.handle(context.Background(), subscriptionEvent(t, "customer.subscription.deleted", "cus_ghost"))
		require.NoError(t, err)
		assert.Equal(t, "Unknown customer", result.Message)
	})

	t.Run("unhandled event type", func(t *testing.T) {
		svc := NewWebhookService("whsec_test", nil, new(MockOrganizationRepository), zap.NewNop())
		result, err := svc.handle(context.Background(), stripe.Event{ID: "evt_2", Type: "charge.refunded"})
		require.NoError(t, err)
		assert.Equal(t, "Event type not handled", result.Message)
	})
}
