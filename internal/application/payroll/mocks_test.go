package payroll

import (
	"context"
	"io"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, p *payroll.PayrollRecord) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRecordRepository) Update(ctx context.Context, p *payroll.PayrollRecord) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.PayrollRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.PayrollRecord), args.Error(1)
}

func (m *MockRecordRepository) FindAll(ctx context.Context, filter payroll.RecordFilter) ([]*payroll.PayrollRecord, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*payroll.PayrollRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecordRepository) ExistsForPeriod(ctx context.Context, memberID uuid.UUID, year, month int) (bool, error) {
	args := m.Called(ctx, memberID, year, month)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordRepository) CountByStatus(ctx context.Context, employeeUserID *uuid.UUID, statuses ...payroll.Status) (int64, error) {
	args := m.Called(ctx, employeeUserID, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordRepository) FindAwaitingConfirmation(ctx context.Context, sentBefore time.Time, limit int) ([]*payroll.PayrollRecord, error) {
	args := m.Called(ctx, sentBefore, limit)
	return args.Get(0).([]*payroll.PayrollRecord), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *payroll.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) Update(ctx context.Context, n *payroll.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindForRecipient(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, pageSize int) ([]*payroll.Notification, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, page, pageSize)
	return args.Get(0).([]*payroll.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) LastReminderAt(ctx context.Context, recordID uuid.UUID) (*time.Time, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
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

// captureRegister keeps the register it was asked to write
type captureRegister struct {
	got Register
}

func (c *captureRegister) WriteRegister(w io.Writer, register Register) error {
	c.got = register
	_, err := w.Write([]byte("xlsx"))
	return err
}

// capturePayslip keeps the payslip it was asked to render
type capturePayslip struct {
	got Payslip
}

func (c *capturePayslip) RenderPayslip(_ context.Context, slip Payslip) ([]byte, error) {
	c.got = slip
	return []byte("%PDF-1.7"), nil
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

type repoMocks struct {
	records  *MockRecordRepository
	notices  *MockNotificationRepository
	orgs     *MockOrganizationRepository
	members  *MockMemberRepository
	profiles *MockProfileRepository
}

func newRepoMocks() (*repoMocks, Repositories) {
	m := &repoMocks{
		records:  new(MockRecordRepository),
		notices:  new(MockNotificationRepository),
		orgs:     new(MockOrganizationRepository),
		members:  new(MockMemberRepository),
		profiles: new(MockProfileRepository),
	}
	return m, Repositories{
		Records:       m.records,
		Notifications: m.notices,
		Organizations: m.orgs,
		Members:       m.members,
		Profiles:      m.profiles,
	}
}

func principal(tenantID uuid.UUID, roles ...identity.Role) identity.Principal {
	return identity.Principal{TenantID: tenantID, UserID: uuid.New(), MemberID: uuid.New(), Roles: identity.RoleSetOf(roles...)}
}
