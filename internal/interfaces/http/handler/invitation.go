package handler

import (
	"context"

	appidentity "github.com/We2399/idea-launcher-pro-sub001/internal/application/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvitationUseCases is what the invitation handler needs
type InvitationUseCases interface {
	Invite(ctx context.Context, p identity.Principal, input appidentity.InviteInput) (*appidentity.InvitationResult, error)
	AcceptInvitation(ctx context.Context, input appidentity.AcceptInvitationInput) (*appidentity.AcceptInvitationResult, error)
	RevokeInvitation(ctx context.Context, p identity.Principal, id uuid.UUID) (*identity.Invitation, error)
	ListInvitations(ctx context.Context, p identity.Principal, status string, page, pageSize int) (*shared.Paginated[*identity.Invitation], error)
}

// InvitationHandler serves invitations
type InvitationHandler struct {
	BaseHandler
	invitations InvitationUseCases
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitations InvitationUseCases) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// Create invites someone to the organization, reissuing a pending invite
func (h *InvitationHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req InviteRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.invitations.Invite(c.Request.Context(), p, appidentity.InviteInput{Email: req.Email, Role: req.Role})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := InviteResponse{
		Invitation: toInvitationResponse(result.Invitation),
		AcceptURL:  result.AcceptURL,
		Reissued:   result.Reissued,
		MailSent:   result.MailSent,
	}
	if result.Reissued {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

// List returns invitations, optionally by status
func (h *InvitationHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q dto.ListRequest
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()
	page, err := h.invitations.ListInvitations(c.Request.Context(), p, c.Query("status"), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginate(&h.BaseHandler, c, page, toInvitationResponse)
}

// Revoke cancels a pending invitation
func (h *InvitationHandler) Revoke(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.invitations.RevokeInvitation(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvitationResponse(inv))
}

// Accept redeems an invitation. It is public: the token is the credential.
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req AcceptInvitationRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.invitations.AcceptInvitation(c.Request.Context(), appidentity.AcceptInvitationInput{
		Token:    req.Token,
		Password: req.Password,
		FullName: req.FullName,
		Locale:   req.Locale,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, AcceptInvitationResponse{
		OrganizationID:   result.OrganizationID,
		OrganizationSlug: result.OrganizationSlug,
		UserID:           result.UserID,
		MemberID:         result.MemberID,
		NewUser:          result.NewUser,
	})
}
