package leave

import (
	"context"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockLeaveTypeRepository struct {
	mock.Mock
}

func (m *MockLeaveTypeRepository) Create(ctx context.Context, t *leave.LeaveType) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockLeaveTypeRepository) Update(ctx context.Context, t *leave.LeaveType) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockLeaveTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*leave.LeaveType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leave.LeaveType), args.Error(1)
}

func (m *MockLeaveTypeRepository) FindByCode(ctx context.Context, code string) (*leave.LeaveType, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leave.LeaveType), args.Error(1)
}

func (m *MockLeaveTypeRepository) FindAll(ctx context.Context, activeOnly bool) ([]*leave.LeaveType, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]*leave.LeaveType), args.Error(1)
}

type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) Save(ctx context.Context, b *leave.LeaveBalance) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBalanceRepository) Find(ctx context.Context, memberID, leaveTypeID uuid.UUID, year int) (*leave.LeaveBalance, error) {
	args := m.Called(ctx, memberID, leaveTypeID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leave.LeaveBalance), args.Error(1)
}

func (m *MockBalanceRepository) FindForMember(ctx context.Context, memberID uuid.UUID, year int) ([]*leave.LeaveBalance, error) {
	args := m.Called(ctx, memberID, year)
	return args.Get(0).([]*leave.LeaveBalance), args.Error(1)
}

func (m *MockBalanceRepository) ExistsFor(ctx context.Context, memberID, leaveTypeID uuid.UUID, year int) (bool, error) {
	args := m.Called(ctx, memberID, leaveTypeID, year)
	return args.Bool(0), args.Error(1)
}

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, r *leave.LeaveRequest) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRequestRepository) Update(ctx context.Context, r *leave.LeaveRequest) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*leave.LeaveRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leave.LeaveRequest), args.Error(1)
}

func (m *MockRequestRepository) FindAll(ctx context.Context, filter leave.RequestFilter) ([]*leave.LeaveRequest, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*leave.LeaveRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockRequestRepository) FindForMemberInRange(ctx context.Context, memberID uuid.UUID, from, to time.Time) ([]*leave.LeaveRequest, error) {
	args := m.Called(ctx, memberID, from, to)
	return args.Get(0).([]*leave.LeaveRequest), args.Error(1)
}

func (m *MockRequestRepository) CountByStatus(ctx context.Context, memberID *uuid.UUID, statuses ...leave.Status) (int64, error) {
	args := m.Called(ctx, memberID, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestRepository) CountAwaitingApproval(ctx context.Context, approver uuid.UUID, senior bool) (int64, error) {
	args := m.Called(ctx, approver, senior)
	return args.Get(0).(int64), args.Error(1)
}

type MockHolidayRepository struct {
	mock.Mock
}

func (m *MockHolidayRepository) Create(ctx context.Context, h *leave.Holiday) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockHolidayRepository) Update(ctx context.Context, h *leave.Holiday) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockHolidayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockHolidayRepository) FindByID(ctx context.Context, id uuid.UUID) (*leave.Holiday, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leave.Holiday), args.Error(1)
}

func (m *MockHolidayRepository) FindBetween(ctx context.Context, from, to time.Time) ([]*leave.Holiday, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]*leave.Holiday), args.Error(1)
}

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

type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Validate(rule string) error {
	return m.Called(rule).Error(0)
}

func (m *MockEvaluator) Evaluate(rule string, in leave.EligibilityInput) (bool, error) {
	args := m.Called(rule, in)
	return args.Bool(0), args.Error(1)
}

type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, name string, targets []string) (map[string]string, error) {
	args := m.Called(ctx, name, targets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

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

type repoMocks struct {
	types    *MockLeaveTypeRepository
	balances *MockBalanceRepository
	requests *MockRequestRepository
	holidays *MockHolidayRepository
	orgs     *MockOrganizationRepository
	members  *MockMemberRepository
}

func newRepoMocks() (*repoMocks, Repositories) {
	m := &repoMocks{
		types:    new(MockLeaveTypeRepository),
		balances: new(MockBalanceRepository),
		requests: new(MockRequestRepository),
		holidays: new(MockHolidayRepository),
		orgs:     new(MockOrganizationRepository),
		members:  new(MockMemberRepository),
	}
	return m, Repositories{
		Types:         m.types,
		Balances:      m.balances,
		Requests:      m.requests,
		Holidays:      m.holidays,
		Organizations: m.orgs,
		Members:       m.members,
	}
}

func date(s string) time.Time {
	t, err := shared.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func principal(tenantID uuid.UUID, roles ...identity.Role) identity.Principal {
	return identity.Principal{
		TenantID: tenantID,
		UserID:   uuid.New(),
		MemberID: uuid.New(),
		Roles:    identity.RoleSetOf(roles...),
	}
}
