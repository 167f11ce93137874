package identity

import (
	"context"
	"errors"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/auth"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid email or password")
	errAccountLocked      = shared.NewDomainError(shared.CodeForbidden, "Account is locked. Please try again later")
	errAccountDisabled    = shared.NewDomainError(shared.CodeForbidden, "Account has been disabled")
	errNoMembership       = shared.NewDomainError(shared.CodeForbidden, "You are not an active member of this organization")
	errOrganizationClosed = shared.NewDomainError(shared.CodeForbidden, "Organization is not active")
	errSlugRequired       = shared.NewDomainError(shared.CodeInvalidInput, "You belong to several organizations, an organization slug is required")
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// Directory groups the identity repositories shared by the identity services
type Directory struct {
	Organizations identity.OrganizationRepository
	Users         identity.UserRepository
	Members       identity.MemberRepository
	Roles         identity.UserRoleRepository
	Profiles      identity.ProfileRepository
	Preferences   identity.PreferenceRepository
}

// AuthService handles registration, sign-in and the session lifecycle
type AuthService struct {
	dir        Directory
	tx         shared.Transactor
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	events     shared.EventPublisher
	locales    *LocaleMatcher
	config     AuthServiceConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	dir Directory,
	tx shared.Transactor,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	events shared.EventPublisher,
	locales *LocaleMatcher,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if locales == nil {
		locales = NewLocaleMatcher(nil)
	}
	return &AuthService{
		dir:        dir,
		tx:         tx,
		jwtService: jwtService,
		blacklist:  blacklist,
		events:     events,
		locales:    locales,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates an organization with its first administrator and signs them in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*SessionResult, error) {
	if err := identity.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	email, err := identity.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if _, err := s.dir.Users.FindByEmail(ctx, email); err == nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "An account with this email already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	org, err := identity.NewOrganization(input.OrganizationName, input.Slug)
	if err != nil {
		return nil, err
	}
	taken, err := s.dir.Organizations.ExistsBySlug(ctx, org.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Organization slug is already taken")
	}
	locale := s.locales.Match(input.Locale)
	settings := org.Settings
	settings.DefaultLocale = locale
	if err := org.UpdateSettings(settings); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(email, input.Password)
	if err != nil {
		return nil, err
	}
	member, err := identity.NewMember(org.ID, user.ID, "")
	if err != nil {
		return nil, err
	}
	profile, err := identity.NewProfile(org.ID, user.ID, input.FullName)
	if err != nil {
		return nil, err
	}
	grant, err := identity.NewUserRole(org.ID, user.ID, identity.RoleAdministrator, false, nil)
	if err != nil {
		return nil, err
	}
	pref := identity.DefaultUserPreference(org.ID, user.ID, locale)

	ctx = logger.WithTenantID(ctx, org.ID.String())
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.dir.Organizations.Create(ctx, org); err != nil {
			return err
		}
		if err := s.dir.Users.Create(ctx, user); err != nil {
			return err
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
		return s.dir.Preferences.Save(ctx, pref)
	})
	if err != nil {
		s.logger.Error("Failed to register organization", zap.String("slug", org.Slug), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, org, member)

	s.logger.Info("Organization registered",
		zap.String("organization_id", org.ID.String()),
		zap.String("slug", org.Slug),
		zap.String("user_id", user.ID.String()))

	return s.issue(org, user, member, profile, pref, identity.RoleSetOf(identity.RoleAdministrator))
}

// Login authenticates a user against one organization and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*SessionResult, error) {
	now := s.now()
	email, err := identity.NormalizeEmail(input.Email)
	if err != nil {
		return nil, errInvalidCredentials
	}

	user, err := s.dir.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email")
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.CanLogin(now) {
		if user.IsLocked(now) {
			s.logger.Warn("Login attempt for locked account", zap.String("user_id", user.ID.String()))
			return nil, errAccountLocked
		}
		return nil, errAccountDisabled
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.dir.Users.Update(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("user_id", user.ID.String()),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, errAccountLocked
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, errInvalidCredentials
	}

	org, err := s.resolveOrganization(ctx, user.ID, input.OrganizationSlug)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithTenantID(ctx, org.ID.String())

	member, roles, err := s.loadMembership(ctx, org.ID, user.ID)
	if err != nil {
		return nil, err
	}

	user.RecordLoginSuccess(now)
	if err := s.dir.Users.Update(ctx, user); err != nil {
		// Don't fail the login - just log the error
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	profile, pref := s.loadPersonal(ctx, user.ID)
	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("organization_id", org.ID.String()))
	return s.issue(org, user, member, profile, pref, roles)
}

// Refresh exchanges a refresh token for a new pair, reloading roles
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*SessionResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	tenantID, err := claims.TenantUUID()
	if err != nil {
		return nil, mapTokenError(auth.ErrInvalidClaims)
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, mapTokenError(auth.ErrInvalidClaims)
	}
	ctx = logger.WithTenantID(ctx, tenantID.String())

	user, err := s.dir.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, mapTokenError(auth.ErrInvalidToken)
		}
		return nil, err
	}
	if !user.CanLogin(s.now()) {
		return nil, errAccountDisabled
	}
	org, err := s.dir.Organizations.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !org.IsActive() {
		return nil, errOrganizationClosed
	}
	member, roles, err := s.loadMembership(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	pair, _, err := s.jwtService.RefreshTokenPair(refreshToken, member.ID, user.Email, roles.Strings())
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	// the old refresh token must not be replayed
	if jti := claims.ID; jti != "" && s.blacklist != nil {
		if err := s.blacklist.Revoke(ctx, jti, claims.RemainingTTL()); err != nil {
			s.logger.Warn("Failed to revoke rotated refresh token", zap.Error(err))
		}
	}

	profile, pref := s.loadPersonal(ctx, user.ID)
	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	return s.result(pair, org, user, member, profile, pref, roles), nil
}

// Logout revokes the presented access token, and optionally every session of the user
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist == nil {
		return nil
	}
	if input.TokenJTI != "" && input.TokenTTL > 0 {
		if err := s.blacklist.Revoke(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			s.logger.Error("Failed to blacklist token", zap.Error(err))
			return err
		}
	}
	if input.AllSessions {
		if err := s.blacklist.RevokeUser(ctx, input.UserID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
			s.logger.Error("Failed to revoke user sessions", zap.Error(err))
			return err
		}
	}
	s.logger.Info("User logged out",
		zap.String("user_id", input.UserID.String()),
		zap.Bool("all_sessions", input.AllSessions))
	return nil
}

// ChangePassword replaces the password and ends every other session
func (s *AuthService) ChangePassword(ctx context.Context, p identity.Principal, input ChangePasswordInput) error {
	user, err := s.dir.Users.FindByID(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(input.OldPassword) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Current password is incorrect")
	}
	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := s.dir.Users.Update(ctx, user); err != nil {
		return err
	}
	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
			s.logger.Warn("Failed to revoke sessions after password change", zap.Error(err))
		}
	}
	s.logger.Info("User password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// Me returns the session identity of the caller
func (s *AuthService) Me(ctx context.Context, p identity.Principal) (*SessionUser, error) {
	user, err := s.dir.Users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	org, err := s.dir.Organizations.FindByID(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	profile, pref := s.loadPersonal(ctx, p.UserID)
	u := sessionUser(org, user, p.MemberID, profile, pref, p.Roles)
	return &u, nil
}

// ResolvePrincipal loads the caller's membership and roles. It runs on every
// authenticated request so role changes apply without re-login.
func (s *AuthService) ResolvePrincipal(ctx context.Context, tenantID, userID uuid.UUID) (identity.Principal, error) {
	member, roles, err := s.loadMembership(ctx, tenantID, userID)
	if err != nil {
		return identity.Principal{}, err
	}
	return identity.Principal{TenantID: tenantID, UserID: userID, MemberID: member.ID, Roles: roles}, nil
}

// CheckToken reports whether validated claims were revoked
func (s *AuthService) CheckToken(ctx context.Context, claims *auth.Claims) error {
	return s.checkRevoked(ctx, claims)
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	if claims.ID != "" {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return err
		}
		if revoked {
			return mapTokenError(auth.ErrTokenRevoked)
		}
	}
	revoked, err := s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		return err
	}
	if revoked {
		return mapTokenError(auth.ErrTokenRevoked)
	}
	return nil
}

func (s *AuthService) resolveOrganization(ctx context.Context, userID uuid.UUID, slug string) (*identity.Organization, error) {
	var org *identity.Organization
	if slug != "" {
		found, err := s.dir.Organizations.FindBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, errNoMembership
			}
			return nil, err
		}
		org = found
	} else {
		memberships, err := s.dir.Members.FindByUserIDAcrossOrganizations(ctx, userID)
		if err != nil {
			return nil, err
		}
		var active []*identity.Member
		for _, m := range memberships {
			if m.IsActive() {
				active = append(active, m)
			}
		}
		switch len(active) {
		case 0:
			return nil, errNoMembership
		case 1:
		default:
			return nil, errSlugRequired
		}
		found, err := s.dir.Organizations.FindByID(ctx, active[0].TenantID)
		if err != nil {
			return nil, err
		}
		org = found
	}
	if !org.IsActive() {
		return nil, errOrganizationClosed
	}
	return org, nil
}

func (s *AuthService) loadMembership(ctx context.Context, tenantID, userID uuid.UUID) (*identity.Member, identity.RoleSet, error) {
	member, err := s.dir.Members.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.RoleSet{}, errNoMembership
		}
		return nil, identity.RoleSet{}, err
	}
	if !member.IsActive() {
		return nil, identity.RoleSet{}, errNoMembership
	}
	rows, err := s.dir.Roles.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, identity.RoleSet{}, err
	}
	if len(rows) == 0 {
		return member, identity.RoleSetOf(identity.RoleEmployee), nil
	}
	return member, identity.NewRoleSet(rows), nil
}

// loadPersonal returns the profile and preferences, tolerating their absence
func (s *AuthService) loadPersonal(ctx context.Context, userID uuid.UUID) (*identity.Profile, *identity.UserPreference) {
	profile, err := s.dir.Profiles.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Failed to load profile", zap.Error(err))
	}
	pref, err := s.dir.Preferences.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Failed to load preferences", zap.Error(err))
	}
	return profile, pref
}

func (s *AuthService) issue(
	org *identity.Organization,
	user *identity.User,
	member *identity.Member,
	profile *identity.Profile,
	pref *identity.UserPreference,
	roles identity.RoleSet,
) (*SessionResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.Session{
		TenantID: org.ID,
		UserID:   user.ID,
		MemberID: member.ID,
		Email:    user.Email,
		Roles:    roles.Strings(),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}
	return s.result(pair, org, user, member, profile, pref, roles), nil
}

func (s *AuthService) result(
	pair *auth.TokenPair,
	org *identity.Organization,
	user *identity.User,
	member *identity.Member,
	profile *identity.Profile,
	pref *identity.UserPreference,
	roles identity.RoleSet,
) *SessionResult {
	return &SessionResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  sessionUser(org, user, member.ID, profile, pref, roles),
	}
}

func sessionUser(
	org *identity.Organization,
	user *identity.User,
	memberID uuid.UUID,
	profile *identity.Profile,
	pref *identity.UserPreference,
	roles identity.RoleSet,
) SessionUser {
	u := SessionUser{
		UserID:           user.ID,
		MemberID:         memberID,
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		Email:            user.Email,
		DisplayName:      user.Email,
		Roles:            roles.Strings(),
		Senior:           roles.IsSenior(),
		Locale:           org.Settings.DefaultLocale,
	}
	if profile != nil {
		u.DisplayName = profile.DisplayName()
	}
	if pref != nil && pref.Locale != "" {
		u.Locale = pref.Locale
	}
	return u
}

func (s *AuthService) publish(ctx context.Context, aggs ...shared.AggregateRoot) {
	for _, agg := range aggs {
		if err := shared.PublishAndClear(ctx, s.events, agg); err != nil {
			s.logger.Warn("Failed to publish domain events", zap.Error(err))
		}
	}
}

// mapTokenError converts JWT failures into domain errors
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError(shared.CodeUnauthorized, "Token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError(shared.CodeUnauthorized, "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrTokenRevoked):
		return shared.NewDomainError(shared.CodeUnauthorized, "Token has been revoked")
	default:
		return shared.NewDomainError(shared.CodeUnauthorized, "Invalid token")
	}
}
