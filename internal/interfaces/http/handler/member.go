package handler

import (
	"context"

	appidentity "github.com/We2399/idea-launcher-pro-sub001/internal/application/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MemberUseCases is what the member handler needs from the member service
type MemberUseCases interface {
	ListMembers(ctx context.Context, p identity.Principal, input appidentity.ListMembersInput) (*shared.Paginated[appidentity.MemberView], error)
	GetMember(ctx context.Context, p identity.Principal, memberID uuid.UUID) (*appidentity.MemberView, error)
	UpdateMember(ctx context.Context, p identity.Principal, memberID uuid.UUID, input appidentity.UpdateMemberInput) (*appidentity.MemberView, error)
	SuspendMember(ctx context.Context, p identity.Principal, memberID uuid.UUID) (*identity.Member, error)
	ReactivateMember(ctx context.Context, p identity.Principal, memberID uuid.UUID) (*identity.Member, error)
	AssignRole(ctx context.Context, p identity.Principal, input appidentity.AssignRoleInput) ([]string, error)
	RevokeRole(ctx context.Context, p identity.Principal, userID uuid.UUID, role string) ([]string, error)
}

// MemberHandler serves the member directory and role assignment
type MemberHandler struct {
	BaseHandler
	members MemberUseCases
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(members MemberUseCases) *MemberHandler {
	return &MemberHandler{members: members}
}

// List returns the member directory
func (h *MemberHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q ListMembersQuery
	if !h.bindQuery(c, &q) {
		return
	}
	managerID, _ := parseOptionalUUID(q.ManagerID)
	page, err := h.members.ListMembers(c.Request.Context(), p, appidentity.ListMembersInput{
		Keyword:    q.Keyword,
		Status:     q.Status,
		Department: q.Department,
		ManagerID:  managerID,
		Page:       q.Page,
		PageSize:   q.PageSize,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginate(&h.BaseHandler, c, page, toMemberResponse)
}

// Get returns one member
func (h *MemberHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.members.GetMember(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMemberResponse(*view))
}

// Update changes employment details
func (h *MemberHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req UpdateMemberRequest
	if !h.bind(c, &req) {
		return
	}
	input := appidentity.UpdateMemberInput{
		EmployeeNumber: req.EmployeeNumber,
		Department:     req.Department,
		Position:       req.Position,
		ClearManager:   req.ClearManager,
	}
	if req.ManagerID != nil {
		managerID, _ := parseOptionalUUID(*req.ManagerID)
		input.ManagerID = managerID
	}
	if req.HiredAt != nil {
		hiredAt, err := parseOptionalDate(*req.HiredAt)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		input.HiredAt = hiredAt
	}
	view, err := h.members.UpdateMember(c.Request.Context(), p, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMemberResponse(*view))
}

// Suspend blocks a member from signing in to the organization
func (h *MemberHandler) Suspend(c *gin.Context) {
	h.changeStatus(c, h.members.SuspendMember)
}

// Reactivate lifts a suspension
func (h *MemberHandler) Reactivate(c *gin.Context) {
	h.changeStatus(c, h.members.ReactivateMember)
}

func (h *MemberHandler) changeStatus(c *gin.Context, fn func(context.Context, identity.Principal, uuid.UUID) (*identity.Member, error)) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	m, err := fn(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMemberStatusResponse(m))
}

// AssignRole grants a role to the user in the path
func (h *MemberHandler) AssignRole(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "user_id")
	if !ok {
		return
	}
	var req AssignRoleRequest
	if !h.bind(c, &req) {
		return
	}
	roles, err := h.members.AssignRole(c.Request.Context(), p, appidentity.AssignRoleInput{
		UserID: userID,
		Role:   req.Role,
		Senior: req.Senior,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RolesResponse{UserID: userID, Roles: roles})
}

// RevokeRole removes a role from the user in the path
func (h *MemberHandler) RevokeRole(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "user_id")
	if !ok {
		return
	}
	roles, err := h.members.RevokeRole(c.Request.Context(), p, userID, c.Param("role"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RolesResponse{UserID: userID, Roles: roles})
}
