package identity

import (
	"context"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"go.uber.org/zap"
)

// OrganizationService manages the caller's organization
type OrganizationService struct {
	orgRepo identity.OrganizationRepository
	locales *LocaleMatcher
	logger  *zap.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(orgRepo identity.OrganizationRepository, locales *LocaleMatcher, logger *zap.Logger) *OrganizationService {
	if locales == nil {
		locales = NewLocaleMatcher(nil)
	}
	return &OrganizationService{orgRepo: orgRepo, locales: locales, logger: logger}
}

// GetOrganization returns the caller's organization
func (s *OrganizationService) GetOrganization(ctx context.Context, p identity.Principal) (*identity.Organization, error) {
	return s.orgRepo.FindByID(ctx, p.TenantID)
}

// UpdateOrganizationSettings changes the name and HR settings (admin+)
func (s *OrganizationService) UpdateOrganizationSettings(ctx context.Context, p identity.Principal, input OrganizationSettingsInput) (*identity.Organization, error) {
	if err := p.Require(identity.RoleAdmin); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := org.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	settings := org.Settings
	if input.DefaultLocale != nil {
		settings.DefaultLocale = s.locales.Match(*input.DefaultLocale)
	}
	if input.Timezone != nil {
		settings.Timezone = *input.Timezone
	}
	if input.WorkWeek != nil {
		settings.WorkWeek = input.WorkWeek
	}
	if input.Currency != nil {
		settings.Currency = *input.Currency
	}
	if err := org.UpdateSettings(settings); err != nil {
		return nil, err
	}
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info("Organization settings updated",
		zap.String("organization_id", org.ID.String()),
		zap.String("updated_by", p.UserID.String()))
	return org, nil
}
