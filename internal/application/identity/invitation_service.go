package identity

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultInvitationTTL = 7 * 24 * time.Hour

// InvitationServiceConfig contains configuration for the invitation service
type InvitationServiceConfig struct {
	TTL time.Duration
	// PublicURL is the client base the accept link points at
	PublicURL string
}

// AcceptInvitationResult tells the client where to sign in
type AcceptInvitationResult struct {
	OrganizationID   uuid.UUID
	OrganizationSlug string
	UserID           uuid.UUID
	MemberID         uuid.UUID
	NewUser          bool
}

// InvitationService issues and redeems invitations
type InvitationService struct {
	dir         Directory
	invitations identity.InvitationRepository
	tx          shared.Transactor
	mailer      InvitationMailer
	events      shared.EventPublisher
	locales     *LocaleMatcher
	config      InvitationServiceConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewInvitationService creates a new invitation service
func NewInvitationService(
	dir Directory,
	invitations identity.InvitationRepository,
	tx shared.Transactor,
	mailer InvitationMailer,
	events shared.EventPublisher,
	locales *LocaleMatcher,
	config InvitationServiceConfig,
	logger *zap.Logger,
) *InvitationService {
	if config.TTL <= 0 {
		config.TTL = defaultInvitationTTL
	}
	if locales == nil {
		locales = NewLocaleMatcher(nil)
	}
	return &InvitationService{
		dir:         dir,
		invitations: invitations,
		tx:          tx,
		mailer:      mailer,
		events:      events,
		locales:     locales,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// Invite creates an invitation and emails the accept link. hr may invite
// employees; admin and above may invite any role. A pending invitation
// for the same email is re-issued with a new token and expiry.
func (s *InvitationService) Invite(ctx context.Context, p identity.Principal, input InviteInput) (*InvitationResult, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	role, err := identity.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	if role != identity.RoleEmployee && !p.AtLeast(identity.RoleAdmin) {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only admins can invite users with elevated roles")
	}
	if role == identity.RoleAdministrator && !p.AtLeast(identity.RoleAdministrator) {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only administrators can invite administrators")
	}
	email, err := identity.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotMember(ctx, email); err != nil {
		return nil, err
	}

	result := &InvitationResult{}
	var token string
	existing, err := s.invitations.FindPendingByEmail(ctx, email)
	switch {
	case err == nil:
		token, err = existing.Reissue(role, s.config.TTL)
		if err != nil {
			return nil, err
		}
		if err := s.invitations.Update(ctx, existing); err != nil {
			return nil, err
		}
		result.Invitation = existing
		result.Reissued = true
	case errors.Is(err, shared.ErrNotFound):
		inv, raw, err := identity.NewInvitation(p.TenantID, email, role, p.UserID, s.config.TTL)
		if err != nil {
			return nil, err
		}
		if err := s.invitations.Create(ctx, inv); err != nil {
			return nil, err
		}
		if err := shared.PublishAndClear(ctx, s.events, inv); err != nil {
			s.logger.Warn("Failed to publish invitation events", zap.Error(err))
		}
		result.Invitation = inv
		token = raw
	default:
		return nil, err
	}
	result.AcceptURL = s.acceptURL(token)
	result.MailSent = s.sendMail(ctx, p, result)

	s.logger.Info("Invitation issued",
		zap.String("invitation_id", result.Invitation.ID.String()),
		zap.String("role", string(role)),
		zap.Bool("reissued", result.Reissued),
		zap.Bool("mail_sent", result.MailSent),
		zap.String("invited_by", p.UserID.String()))
	return result, nil
}

func (s *InvitationService) ensureNotMember(ctx context.Context, email string) error {
	user, err := s.dir.Users.FindByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.dir.Members.FindByUserID(ctx, user.ID)
	if err == nil {
		return shared.NewDomainError(shared.CodeAlreadyExists, "This user is already a member of the organization")
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	return err
}

// sendMail delivers the invitation. Failures are logged; the invitation
// stays valid and can be re-sent.
func (s *InvitationService) sendMail(ctx context.Context, p identity.Principal, result *InvitationResult) bool {
	if s.mailer == nil {
		return false
	}
	org, err := s.dir.Organizations.FindByID(ctx, p.TenantID)
	if err != nil {
		s.logger.Warn("Failed to load organization for invitation email", zap.Error(err))
		return false
	}
	inviter := "A colleague"
	if profile, err := s.dir.Profiles.FindByUserID(ctx, p.UserID); err == nil {
		inviter = profile.DisplayName()
	}
	err = s.mailer.SendInvitation(ctx, InvitationEmail{
		To:               result.Invitation.Email,
		OrganizationName: org.Name,
		InviterName:      inviter,
		Role:             string(result.Invitation.Role),
		AcceptURL:        result.AcceptURL,
		ExpiresAt:        result.Invitation.ExpiresAt,
	})
	if err != nil {
		s.logger.Warn("Failed to send invitation email",
			zap.String("invitation_id", result.Invitation.ID.String()),
			zap.Error(err))
		return false
	}
	return true
}

func (s *InvitationService) acceptURL(token string) string {
	base := strings.TrimRight(s.config.PublicURL, "/")
	return base + "/invitations/accept?token=" + url.QueryEscape(token)
}

// AcceptInvitation redeems a token. An existing account must prove its
// password; otherwise a new account is created.
func (s *InvitationService) AcceptInvitation(ctx context.Context, input AcceptInvitationInput) (*AcceptInvitationResult, error) {
	token := strings.TrimSpace(input.Token)
	if token == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invitation token is required")
	}
	inv, err := s.invitations.FindByTokenHash(ctx, identity.HashToken(token))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Invitation not found")
		}
		return nil, err
	}
	ctx = logger.WithTenantID(ctx, inv.TenantID.String())

	org, err := s.dir.Organizations.FindByID(ctx, inv.TenantID)
	if err != nil {
		return nil, err
	}
	if !org.IsActive() {
		return nil, errOrganizationClosed
	}

	now := s.now()
	result := &AcceptInvitationResult{OrganizationID: org.ID, OrganizationSlug: org.Slug}
	user, err := s.dir.Users.FindByEmail(ctx, inv.Email)
	switch {
	case err == nil:
		if !user.VerifyPassword(input.Password) {
			return nil, errInvalidCredentials
		}
		if _, err := s.dir.Members.FindByUserID(ctx, user.ID); err == nil {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "You are already a member of this organization")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		user, err = identity.NewUser(inv.Email, input.Password)
		if err != nil {
			return nil, err
		}
		result.NewUser = true
	default:
		return nil, err
	}

	if err := inv.Accept(user.ID, now); err != nil {
		return nil, err
	}
	member, err := identity.NewMember(org.ID, user.ID, "")
	if err != nil {
		return nil, err
	}
	grant, err := identity.NewUserRole(org.ID, user.ID, inv.Role, false, &inv.InvitedBy)
	if err != nil {
		return nil, err
	}
	profile, err := identity.NewProfile(org.ID, user.ID, input.FullName)
	if err != nil {
		return nil, err
	}
	locale := org.Settings.DefaultLocale
	if input.Locale != "" {
		locale = s.locales.Match(input.Locale)
	}
	pref := identity.DefaultUserPreference(org.ID, user.ID, locale)
	if org.Settings.Timezone != "" {
		pref.Timezone = org.Settings.Timezone
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if result.NewUser {
			if err := s.dir.Users.Create(ctx, user); err != nil {
				return err
			}
		}
		if err := s.dir.Members.Create(ctx, member); err != nil {
			return err
		}
		if err := s.dir.Roles.Grant(ctx, grant); err != nil {
			return err
		}
		if err := s.dir.Profiles.Create(ctx, profile); err != nil {
			return err
		}
		if err := s.dir.Preferences.Save(ctx, pref); err != nil {
			return err
		}
		return s.invitations.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.events, member); err != nil {
		s.logger.Warn("Failed to publish member events", zap.Error(err))
	}

	result.UserID = user.ID
	result.MemberID = member.ID
	s.logger.Info("Invitation accepted",
		zap.String("invitation_id", inv.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.Bool("new_user", result.NewUser))
	return result, nil
}

// RevokeInvitation cancels a pending invitation (hr+)
func (s *InvitationService) RevokeInvitation(ctx context.Context, p identity.Principal, id uuid.UUID) (*identity.Invitation, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	inv, err := s.invitations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Role != identity.RoleEmployee && !p.AtLeast(identity.RoleAdmin) {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only admins can revoke invitations with elevated roles")
	}
	if err := inv.Revoke(); err != nil {
		return nil, err
	}
	if err := s.invitations.Update(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("Invitation revoked",
		zap.String("invitation_id", inv.ID.String()),
		zap.String("revoked_by", p.UserID.String()))
	return inv, nil
}

// ListInvitations returns a page of invitations (hr+)
func (s *InvitationService) ListInvitations(ctx context.Context, p identity.Principal, status string, page, pageSize int) (*shared.Paginated[*identity.Invitation], error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	var filter *identity.InvitationStatus
	if status != "" {
		st := identity.InvitationStatus(status)
		filter = &st
	}
	norm := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	items, total, err := s.invitations.FindAll(ctx, filter, norm.Page, norm.PageSize)
	if err != nil {
		return nil, err
	}
	out := shared.NewPaginated(items, total, norm.Page, norm.PageSize)
	return &out, nil
}

// ExpireInvitations marks lapsed pending invitations of every organization
// as expired. It returns how many were changed.
func (s *InvitationService) ExpireInvitations(ctx context.Context, limit int) (int, error) {
	items, err := s.invitations.FindExpirable(ctx, limit)
	if err != nil {
		return 0, err
	}
	now := s.now()
	expired := 0
	for _, inv := range items {
		if !inv.Expire(now) {
			continue
		}
		tctx := logger.WithTenantID(ctx, inv.TenantID.String())
		if err := s.invitations.Update(tctx, inv); err != nil {
			s.logger.Warn("Failed to expire invitation",
				zap.String("invitation_id", inv.ID.String()),
				zap.Error(err))
			continue
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("Invitations expired", zap.Int("count", expired))
	}
	return expired, nil
}
