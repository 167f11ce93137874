package identity

import (
	"context"
	"errors"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberService manages the member directory and role grants
type MemberService struct {
	dir    Directory
	tx     shared.Transactor
	events shared.EventPublisher
	logger *zap.Logger
}

// NewMemberService creates a new member service
func NewMemberService(dir Directory, tx shared.Transactor, events shared.EventPublisher, logger *zap.Logger) *MemberService {
	return &MemberService{dir: dir, tx: tx, events: events, logger: logger}
}

// ListMembers returns a page of the directory (hr+)
func (s *MemberService) ListMembers(ctx context.Context, p identity.Principal, input ListMembersInput) (*shared.Paginated[MemberView], error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	filter := identity.MemberFilter{
		Keyword:    input.Keyword,
		Department: input.Department,
		ManagerID:  input.ManagerID,
		Page:       input.Page,
		PageSize:   input.PageSize,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
	}
	if input.Status != "" {
		st := identity.MemberStatus(input.Status)
		switch st {
		case identity.MemberStatusActive, identity.MemberStatusSuspended, identity.MemberStatusLeft:
		default:
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown member status: "+input.Status)
		}
		filter.Status = &st
	}
	norm := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	filter.Page, filter.PageSize = norm.Page, norm.PageSize

	members, total, err := s.dir.Members.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	userIDs := make([]uuid.UUID, len(members))
	for i, m := range members {
		userIDs[i] = m.UserID
	}
	profiles, err := s.dir.Profiles.FindByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	byUser := make(map[uuid.UUID]*identity.Profile, len(profiles))
	for _, pr := range profiles {
		byUser[pr.UserID] = pr
	}

	views := make([]MemberView, len(members))
	for i, m := range members {
		views[i] = MemberView{Member: m, Profile: byUser[m.UserID]}
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetMember returns one member with profile, email and roles. Employees
// may only read themselves.
func (s *MemberService) GetMember(ctx context.Context, p identity.Principal, memberID uuid.UUID) (*MemberView, error) {
	member, err := s.dir.Members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := p.RequireSelfOr(member.UserID, identity.RoleHR); err != nil {
		return nil, err
	}
	return s.view(ctx, member)
}

// UpdateMember changes department, position, manager or hire date (hr+)
func (s *MemberService) UpdateMember(ctx context.Context, p identity.Principal, memberID uuid.UUID, input UpdateMemberInput) (*MemberView, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	member, err := s.dir.Members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if input.ManagerID != nil && !input.ClearManager {
		if _, err := s.dir.Members.FindByID(ctx, *input.ManagerID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError(shared.CodeInvalidInput, "Manager is not a member of this organization")
			}
			return nil, err
		}
	}
	if err := member.Update(identity.MemberUpdate{
		EmployeeNumber: input.EmployeeNumber,
		Department:     input.Department,
		Position:       input.Position,
		ManagerID:      input.ManagerID,
		ClearManager:   input.ClearManager,
		HiredAt:        input.HiredAt,
	}); err != nil {
		return nil, err
	}
	if err := s.dir.Members.Update(ctx, member); err != nil {
		return nil, err
	}
	s.logger.Info("Member updated",
		zap.String("member_id", member.ID.String()),
		zap.String("updated_by", p.UserID.String()))
	return s.view(ctx, member)
}

// SuspendMember blocks a member from signing in (hr+)
func (s *MemberService) SuspendMember(ctx context.Context, p identity.Principal, memberID uuid.UUID) (*identity.Member, error) {
	return s.changeStatus(ctx, p, memberID, "suspended", (*identity.Member).Suspend)
}

// ReactivateMember restores a suspended member (hr+)
func (s *MemberService) ReactivateMember(ctx context.Context, p identity.Principal, memberID uuid.UUID) (*identity.Member, error) {
	return s.changeStatus(ctx, p, memberID, "reactivated", (*identity.Member).Reactivate)
}

func (s *MemberService) changeStatus(
	ctx context.Context,
	p identity.Principal,
	memberID uuid.UUID,
	verb string,
	apply func(*identity.Member) error,
) (*identity.Member, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	if memberID == p.MemberID {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "You cannot change your own membership status")
	}
	member, err := s.dir.Members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.guardAgainstPeer(ctx, p, member.UserID); err != nil {
		return nil, err
	}
	if err := apply(member); err != nil {
		return nil, err
	}
	if err := s.dir.Members.Update(ctx, member); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.events, member); err != nil {
		s.logger.Warn("Failed to publish member events", zap.Error(err))
	}
	s.logger.Info("Member "+verb,
		zap.String("member_id", member.ID.String()),
		zap.String("by", p.UserID.String()))
	return member, nil
}

// guardAgainstPeer keeps hr from acting on members who outrank them
func (s *MemberService) guardAgainstPeer(ctx context.Context, p identity.Principal, userID uuid.UUID) error {
	rows, err := s.dir.Roles.FindByUser(ctx, p.TenantID, userID)
	if err != nil {
		return err
	}
	if identity.NewRoleSet(rows).Highest().Level() > p.Roles.Highest().Level() {
		return shared.NewDomainError(shared.CodeForbidden, "You cannot manage a member with a higher role")
	}
	return nil
}

// AssignRole grants a role (administrator only)
func (s *MemberService) AssignRole(ctx context.Context, p identity.Principal, input AssignRoleInput) ([]string, error) {
	if err := p.Require(identity.RoleAdministrator); err != nil {
		return nil, err
	}
	role, err := identity.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	member, err := s.dir.Members.FindByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Roles can only be granted to active members")
	}
	by := p.UserID
	grant, err := identity.NewUserRole(p.TenantID, input.UserID, role, input.Senior, &by)
	if err != nil {
		return nil, err
	}
	if err := s.dir.Roles.Grant(ctx, grant); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, identity.NewRoleAssignedEvent(p.TenantID, input.UserID, role))
	s.logger.Info("Role assigned",
		zap.String("user_id", input.UserID.String()),
		zap.String("role", string(role)),
		zap.Bool("senior", input.Senior),
		zap.String("granted_by", by.String()))
	return s.rolesOf(ctx, p, input.UserID)
}

// RevokeRole removes a role (administrator only). The last administrator
// of an organization cannot lose the role.
func (s *MemberService) RevokeRole(ctx context.Context, p identity.Principal, userID uuid.UUID, rawRole string) ([]string, error) {
	if err := p.Require(identity.RoleAdministrator); err != nil {
		return nil, err
	}
	role, err := identity.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if role == identity.RoleAdministrator {
			count, err := s.dir.Roles.CountWithRole(ctx, p.TenantID, identity.RoleAdministrator)
			if err != nil {
				return err
			}
			if count <= 1 {
				return shared.NewDomainError(shared.CodeLastAdministrator, "The last administrator cannot be removed")
			}
		}
		return s.dir.Roles.Revoke(ctx, p.TenantID, userID, role)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, identity.NewRoleRevokedEvent(p.TenantID, userID, role))
	s.logger.Info("Role revoked",
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
		zap.String("revoked_by", p.UserID.String()))
	return s.rolesOf(ctx, p, userID)
}

func (s *MemberService) rolesOf(ctx context.Context, p identity.Principal, userID uuid.UUID) ([]string, error) {
	rows, err := s.dir.Roles.FindByUser(ctx, p.TenantID, userID)
	if err != nil {
		return nil, err
	}
	return identity.NewRoleSet(rows).Strings(), nil
}

func (s *MemberService) view(ctx context.Context, member *identity.Member) (*MemberView, error) {
	v := &MemberView{Member: member}
	profile, err := s.dir.Profiles.FindByUserID(ctx, member.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	v.Profile = profile
	user, err := s.dir.Users.FindByID(ctx, member.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if user != nil {
		v.Email = user.Email
	}
	rows, err := s.dir.Roles.FindByUser(ctx, member.TenantID, member.UserID)
	if err != nil {
		return nil, err
	}
	rs := identity.NewRoleSet(rows)
	v.Roles = rs.Strings()
	v.Senior = rs.IsSenior()
	return v, nil
}

func (s *MemberService) publishEvent(ctx context.Context, event shared.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish domain event", zap.String("type", event.EventType()), zap.Error(err))
	}
}
