package handler

import (
	"context"
	"time"

	appidentity "github.com/We2399/idea-launcher-pro-sub001/internal/application/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// OrganizationUseCases is what the organization handler needs
type OrganizationUseCases interface {
	GetOrganization(ctx context.Context, p identity.Principal) (*identity.Organization, error)
	UpdateOrganizationSettings(ctx context.Context, p identity.Principal, input appidentity.OrganizationSettingsInput) (*identity.Organization, error)
}

// OrganizationHandler serves the caller's organization
type OrganizationHandler struct {
	BaseHandler
	orgs OrganizationUseCases
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgs OrganizationUseCases) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs}
}

// Get returns the organization of the session
func (h *OrganizationHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	org, err := h.orgs.GetOrganization(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrganizationResponse(org))
}

// Update changes the organization name and settings
func (h *OrganizationHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req UpdateOrganizationRequest
	if !h.bind(c, &req) {
		return
	}
	input := appidentity.OrganizationSettingsInput{
		Name:          req.Name,
		DefaultLocale: req.DefaultLocale,
		Timezone:      req.Timezone,
		Currency:      req.Currency,
	}
	for _, d := range req.WorkWeek {
		input.WorkWeek = append(input.WorkWeek, time.Weekday(d))
	}
	org, err := h.orgs.UpdateOrganizationSettings(c.Request.Context(), p, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrganizationResponse(org))
}
