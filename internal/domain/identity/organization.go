package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
)

// OrganizationStatus represents the lifecycle status of an organization
type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
	OrganizationStatusCancelled OrganizationStatus = "cancelled"
)

// Plan is the subscription plan of an organization
type Plan string

const (
	PlanFree     Plan = "free"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// IsValid reports whether the plan is known
func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanStandard, PlanPremium:
		return true
	}
	return false
}

// SubscriptionStatus mirrors the billing provider's subscription state
type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionNone       SubscriptionStatus = "none"
)

// IsSubscribed reports whether the status grants paid access
func (s SubscriptionStatus) IsSubscribed() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing || s == SubscriptionPastDue
}

// OrganizationSettings holds per-organization HR settings
type OrganizationSettings struct {
	DefaultLocale string         `json:"default_locale"`
	Timezone      string         `json:"timezone"`
	WorkWeek      []time.Weekday `json:"work_week"`
	Currency      string         `json:"currency"`
}

// DefaultOrganizationSettings returns Monday to Friday, English, UTC
func DefaultOrganizationSettings() OrganizationSettings {
	return OrganizationSettings{
		DefaultLocale: "en",
		Timezone:      "UTC",
		WorkWeek:      []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Currency:      "USD",
	}
}

// IsWorkday reports whether the weekday is part of the work week
func (s OrganizationSettings) IsWorkday(day time.Weekday) bool {
	for _, d := range s.WorkWeek {
		if d == day {
			return true
		}
	}
	return false
}

// Organization is the tenant. Every HR record belongs to exactly one.
type Organization struct {
	shared.BaseAggregateRoot
	Name                 string
	Slug                 string
	Status               OrganizationStatus
	Plan                 Plan
	Settings             OrganizationSettings
	StripeCustomerID     string
	StripeSubscriptionID string
	SubscriptionStatus   SubscriptionStatus
	CurrentPeriodEnd     *time.Time
	SubscriptionSyncedAt *time.Time
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// NewOrganization creates an active organization on the free plan
func NewOrganization(name, slug string) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization name cannot exceed 200 characters")
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		slug = Slugify(name)
	}
	if !slugPattern.MatchString(slug) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization slug must be 3-64 lowercase letters, digits or hyphens")
	}

	org := &Organization{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Name:               name,
		Slug:               slug,
		Status:             OrganizationStatusActive,
		Plan:               PlanFree,
		Settings:           DefaultOrganizationSettings(),
		SubscriptionStatus: SubscriptionNone,
	}
	org.AddDomainEvent(NewOrganizationCreatedEvent(org))
	return org, nil
}

// Slugify derives a URL-safe slug from a name
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen && b.Len() > 0:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Rename changes the display name
func (o *Organization) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Organization name must be 1-200 characters")
	}
	o.Name = name
	o.IncrementVersion()
	return nil
}

// UpdateSettings replaces the organization settings
func (o *Organization) UpdateSettings(settings OrganizationSettings) error {
	if len(settings.WorkWeek) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Work week must contain at least one day")
	}
	if settings.Timezone != "" {
		if _, err := time.LoadLocation(settings.Timezone); err != nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Unknown timezone: "+settings.Timezone)
		}
	}
	if settings.Currency != "" && len(settings.Currency) != 3 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Currency must be a 3-letter ISO code")
	}
	settings.Currency = strings.ToUpper(settings.Currency)
	o.Settings = settings
	o.IncrementVersion()
	return nil
}

// ApplySubscription records the latest subscription state from billing
func (o *Organization) ApplySubscription(subscriptionID string, status SubscriptionStatus, plan Plan, periodEnd *time.Time, syncedAt time.Time) {
	if subscriptionID != "" {
		o.StripeSubscriptionID = subscriptionID
	}
	o.SubscriptionStatus = status
	if plan.IsValid() {
		o.Plan = plan
	}
	if !status.IsSubscribed() {
		o.Plan = PlanFree
	}
	o.CurrentPeriodEnd = periodEnd
	o.SubscriptionSyncedAt = &syncedAt
	o.IncrementVersion()
}

// Suspend blocks all access to the organization
func (o *Organization) Suspend() error {
	if o.Status != OrganizationStatusActive {
		return shared.NewDomainError(shared.CodeInvalidState, "Only active organizations can be suspended")
	}
	o.Status = OrganizationStatusSuspended
	o.IncrementVersion()
	return nil
}

// IsActive reports whether members may sign in
func (o *Organization) IsActive() bool {
	return o.Status == OrganizationStatusActive
}

// IsWritable reports whether write operations are allowed at now.
// Free organizations are always writable. A lapsed subscription stays
// writable for grace after the period end.
func (o *Organization) IsWritable(now time.Time, grace time.Duration) bool {
	if !o.IsActive() {
		return false
	}
	if o.Plan == PlanFree && o.StripeSubscriptionID == "" {
		return true
	}
	if o.SubscriptionStatus.IsSubscribed() {
		return true
	}
	if o.CurrentPeriodEnd == nil {
		return false
	}
	return now.Before(o.CurrentPeriodEnd.Add(grace))
}
