package identity

import (
	"context"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockOrganizationRepository is a mock implementation of identity.OrganizationRepository
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

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

// MockMemberRepository is a mock implementation of identity.MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *identity.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) Update(ctx context.Context, member *identity.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Member, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByUserIDAcrossOrganizations(ctx context.Context, userID uuid.UUID) ([]*identity.Member, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*identity.Member), args.Error(1)
}

func (m *MockMemberRepository) FindAll(ctx context.Context, filter identity.MemberFilter) ([]*identity.Member, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.Member), args.Get(1).(int64), args.Error(2)
}

func (m *MockMemberRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Member, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*identity.Member), args.Error(1)
}

func (m *MockMemberRepository) FindActive(ctx context.Context) ([]*identity.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*identity.Member), args.Error(1)
}

// MockUserRoleRepository is a mock implementation of identity.UserRoleRepository
type MockUserRoleRepository struct {
	mock.Mock
}

func (m *MockUserRoleRepository) Grant(ctx context.Context, role *identity.UserRole) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockUserRoleRepository) Revoke(ctx context.Context, tenantID, userID uuid.UUID, role identity.Role) error {
	return m.Called(ctx, tenantID, userID, role).Error(0)
}

func (m *MockUserRoleRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]identity.UserRole, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).([]identity.UserRole), args.Error(1)
}

func (m *MockUserRoleRepository) FindUserIDsWithRole(ctx context.Context, tenantID uuid.UUID, roles ...identity.Role) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, roles)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUserRoleRepository) CountWithRole(ctx context.Context, tenantID uuid.UUID, role identity.Role) (int64, error) {
	args := m.Called(ctx, tenantID, role)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvitationRepository is a mock implementation of identity.InvitationRepository
type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) Create(ctx context.Context, inv *identity.Invitation) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvitationRepository) Update(ctx context.Context, inv *identity.Invitation) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) FindByTokenHash(ctx context.Context, hash string) (*identity.Invitation, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) FindPendingByEmail(ctx context.Context, email string) (*identity.Invitation, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) FindAll(ctx context.Context, status *identity.InvitationStatus, page, pageSize int) ([]*identity.Invitation, int64, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]*identity.Invitation), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvitationRepository) FindExpirable(ctx context.Context, limit int) ([]*identity.Invitation, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*identity.Invitation), args.Error(1)
}

// MockProfileRepository is a mock implementation of identity.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, p *identity.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, p *identity.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*identity.Profile, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).([]*identity.Profile), args.Error(1)
}

// MockPreferenceRepository is a mock implementation of identity.PreferenceRepository
type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) Save(ctx context.Context, p *identity.UserPreference) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPreferenceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.UserPreference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserPreference), args.Error(1)
}

func (m *MockPreferenceRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*identity.UserPreference, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).([]*identity.UserPreference), args.Error(1)
}

// MockDeviceTokenRepository is a mock implementation of identity.DeviceTokenRepository
type MockDeviceTokenRepository struct {
	mock.Mock
}

func (m *MockDeviceTokenRepository) Upsert(ctx context.Context, t *identity.DeviceToken) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockDeviceTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockDeviceTokenRepository) DeleteForUser(ctx context.Context, userID uuid.UUID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *MockDeviceTokenRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]identity.DeviceToken, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).([]identity.DeviceToken), args.Error(1)
}

// MockMailer is a mock implementation of InvitationMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendInvitation(ctx context.Context, email InvitationEmail) error {
	return m.Called(ctx, email).Error(0)
}

// MockAvatarStorage is a mock implementation of AvatarStorage
type MockAvatarStorage struct {
	mock.Mock
}

func (m *MockAvatarStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockAvatarStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockAvatarStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// fakeTx runs the function inline
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (r *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *recordingPublisher) types() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type directoryMocks struct {
	orgs     *MockOrganizationRepository
	users    *MockUserRepository
	members  *MockMemberRepository
	roles    *MockUserRoleRepository
	profiles *MockProfileRepository
	prefs    *MockPreferenceRepository
}

func newDirectoryMocks() (*directoryMocks, Directory) {
	m := &directoryMocks{
		orgs:     new(MockOrganizationRepository),
		users:    new(MockUserRepository),
		members:  new(MockMemberRepository),
		roles:    new(MockUserRoleRepository),
		profiles: new(MockProfileRepository),
		prefs:    new(MockPreferenceRepository),
	}
	return m, Directory{
		Organizations: m.orgs,
		Users:         m.users,
		Members:       m.members,
		Roles:         m.roles,
		Profiles:      m.profiles,
		Preferences:   m.prefs,
	}
}

// testUser builds an active user with a cheap password hash
func testUser(email, password string) *identity.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      string(hash),
		Status:            identity.UserStatusActive,
	}
}

func testOrganization(slug string) *identity.Organization {
	org, err := identity.NewOrganization("Acme "+slug, slug)
	if err != nil {
		panic(err)
	}
	org.ClearDomainEvents()
	return org
}

func testMember(tenantID, userID uuid.UUID) *identity.Member {
	m, err := identity.NewMember(tenantID, userID, "")
	if err != nil {
		panic(err)
	}
	m.ClearDomainEvents()
	return m
}

func roleRows(tenantID, userID uuid.UUID, roles ...identity.Role) []identity.UserRole {
	rows := make([]identity.UserRole, 0, len(roles))
	for _, r := range roles {
		row, err := identity.NewUserRole(tenantID, userID, r, false, nil)
		if err != nil {
			panic(err)
		}
		rows = append(rows, *row)
	}
	return rows
}

func principal(tenantID uuid.UUID, roles ...identity.Role) identity.Principal {
	return identity.Principal{
		TenantID: tenantID,
		UserID:   uuid.New(),
		MemberID: uuid.New(),
		Roles:    identity.RoleSetOf(roles...),
	}
}
