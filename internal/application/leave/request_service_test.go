package leave

import (
	"context"
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type requestFixture struct {
	repos     *repoMocks
	tx        *fakeTx
	events    *recordingPublisher
	evaluator *MockEvaluator
	service   *RequestService
	org       *identity.Organization
	annual    *leave.LeaveType
	employee  identity.Principal
	hr        identity.Principal
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	repos, r := newRepoMocks()
	org, err := identity.NewOrganization("Acme", "acme")
	require.NoError(t, err)
	org.ClearDomainEvents()
	annual, err := leave.NewLeaveType(org.ID, "Annual Leave", "AL", true, decimal.NewFromInt(14))
	require.NoError(t, err)

	f := &requestFixture{
		repos:     repos,
		tx:        &fakeTx{},
		events:    &recordingPublisher{},
		evaluator: new(MockEvaluator),
		org:       org,
		annual:    annual,
		employee:  principal(org.ID, identity.RoleEmployee),
		hr:        principal(org.ID, identity.RoleHR),
	}
	f.service = NewRequestService(r, f.tx, f.events, f.evaluator, nil, Config{EnforceBalance: true}, zap.NewNop())
	f.service.now = func() time.Time { return time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC) }

	repos.types.On("FindByID", mock.Anything, annual.ID).Return(annual, nil).Maybe()
	repos.orgs.On("FindByID", mock.Anything, org.ID).Return(org, nil).Maybe()
	repos.holidays.On("FindBetween", mock.Anything, mock.Anything, mock.Anything).Return([]*leave.Holiday{}, nil).Maybe()
	return f
}

func (f *requestFixture) pendingRequest(t *testing.T, requester identity.Principal, from, to string) *leave.LeaveRequest {
	t.Helper()
	dates, err := shared.NewDateRange(date(from), date(to))
	require.NoError(t, err)
	r, err := leave.NewLeaveRequest(leave.NewLeaveRequestInput{
		TenantID:        f.org.ID,
		MemberID:        requester.MemberID,
		RequesterUserID: requester.UserID,
		LeaveType:       f.annual,
		Range:           dates,
		Days:            decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	r.ClearDomainEvents()
	r.MarkPersisted()
	return r
}

func TestSubmitLeaveRequest_Success(t *testing.T) {
	f := newRequestFixture(t)
	holiday, err := leave.NewHoliday(f.org.ID, date("2026-05-05"), "Founders Day", false)
	require.NoError(t, err)
	f.repos.holidays.ExpectedCalls = nil
	f.repos.holidays.On("FindBetween", mock.Anything, date("2026-05-04"), date("2026-05-08")).Return([]*leave.Holiday{holiday}, nil)
	f.repos.requests.On("FindForMemberInRange", mock.Anything, f.employee.MemberID, mock.Anything, mock.Anything).Return([]*leave.LeaveRequest{}, nil)
	f.repos.balances.On("Find", mock.Anything, f.employee.MemberID, f.annual.ID, 2026).Return(nil, shared.ErrNotFound)

	var saved *leave.LeaveBalance
	f.repos.balances.On("Save", mock.Anything, mock.AnythingOfType("*leave.LeaveBalance")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*leave.LeaveBalance) }).Return(nil)
	f.repos.requests.On("Create", mock.Anything, mock.AnythingOfType("*leave.LeaveRequest")).Return(nil)

	req, err := f.service.SubmitLeaveRequest(context.Background(), f.employee, SubmitInput{
		LeaveTypeID: f.annual.ID,
		StartDate:   date("2026-05-04"),
		EndDate:     date("2026-05-08"),
		EndHalfDay:  true,
		Reason:      "Family trip",
	})
	require.NoError(t, err)

	// Mon-Fri minus the Tuesday holiday minus the Friday afternoon
	assert.True(t, decimal.NewFromFloat(3.5).Equal(req.Days), req.Days.String())
	assert.Equal(t, leave.StatusPending, req.Status)
	require.NotNil(t, saved)
	assert.True(t, saved.Pending.Equal(req.Days))
	assert.True(t, saved.Entitled.Equal(decimal.NewFromInt(14)))
	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, []string{leave.EventTypeLeaveRequestSubmitted}, f.events.types())
	f.evaluator.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
}

func TestSubmitLeaveRequest_EndBeforeStart(t *testing.T) {
	f := newRequestFixture(t)
	_, err := f.service.SubmitLeaveRequest(context.Background(), f.employee, SubmitInput{
		LeaveTypeID: f.annual.ID,
		StartDate:   date("2026-05-08"),
		EndDate:     date("2026-05-04"),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Zero(t, f.tx.calls)
}

func TestSubmitLeaveRequest_SpansYears(t *testing.T) {
	f := newRequestFixture(t)
	_, err := f.service.SubmitLeaveRequest(context.Background(), f.employee, SubmitInput{
		LeaveTypeID: f.annual.ID,
		StartDate:   date("2026-12-28"),
		EndDate:     date("2031-01-02"),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Contains(t, err.Error(), "cannot span calendar years")
	f.repos.holidays.AssertNotCalled(t, "FindBetween", mock.Anything, mock.Anything, mock.Anything)
	f.repos.types.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	assert.Zero(t, f.tx.calls)
}

func TestSubmitLeaveRequest_WeekendOnly(t *testing.T) {
	f := newRequestFixture(t)
	_, err := f.service.SubmitLeaveRequest(context.Background(), f.employee, SubmitInput{
		LeaveTypeID: f.annual.ID,
		StartDate:   date("2026-05-09"),
		EndDate:     date("2026-05-10"),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSubmitLeaveRequest_Overlap(t *testing.T) {
	f := newRequestFixture(t)
	existing := f.pendingRequest(t, f.employee, "2026-05-06", "2026-05-07")
	cancelled := f.pendingRequest(t, f.employee, "2026-05-04", "2026-05-04")
	cancelled.Status = leave.StatusCancelled
	f.repos.requests.On("FindForMemberInRange", mock.Anything, f.employee.MemberID, mock.Anything, mock.Anything).
		Return([]*leave.LeaveRequest{cancelled, existing}, nil)

	_, err := f.service.SubmitLeaveRequest(context.Background(), f.employee, SubmitInput{
		LeaveTypeID: f.annual.ID,
		StartDate:   date("2026-05-04"),
		EndDate:     date("2026-05-06"),
	})
	assert.ErrorIs(t, err, shared.ErrLeaveOverlap)
	f.repos.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.events)
}

func TestSubmitLeaveRequest_InsufficientBalance(t *testing.T) {
	f := newRequestFixture(t)
	balance, err := leave.NewLeaveBalance(f.org.ID, f.employee.MemberID, f.annual.ID, 2026, decimal.NewFromInt(2))
	require.NoError(t, err)
	f.repos.requests.On("FindForMemberInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*leave.LeaveRequest{}, nil)
	f.repos.balances.On("Find", mock.Anything, f.employee.MemberID, f.annual.ID, 2026).Return(balance, nil)

	_, err = f.service.SubmitLeaveRequest(context.Background(), f.employee, SubmitInput{
		LeaveTypeID: f.annual.ID,
		StartDate:   date("2026-05-04"),
		EndDate:     date("2026-05-06"),
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	f.repos.balances.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmitLeaveRequest_UnpaidSkipsBalanceCheck(t *testing.T) {
	f := newRequestFixture(t)
	unpaid, err := leave.NewLeaveType(f.org.ID, "Unpaid", "UNPAID", false, decimal.Zero)
	require.NoError(t, err)
	f.repos.types.On("FindByID", mock.Anything, unpaid.ID).Return(unpaid, nil)
	f.repos.requests.On("FindForMemberInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*leave.LeaveRequest{}, nil)
	f.repos.balances.On("Find", mock.Anything, f.employee.MemberID, unpaid.ID, 2026).Return(nil, shared.ErrNotFound)
	f.repos.balances.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.repos.requests.On("Create", mock.Anything, mock.Anything).Return(nil)

	req, err := f.service.SubmitLeaveRequest(context.Background(), f.employee, SubmitInput{
		LeaveTypeID: unpaid.ID,
		StartDate:   date("2026-05-04"),
		EndDate:     date("2026-05-05"),
	})
	require.NoError(t, err)
	assert.True(t, req.Days.Equal(decimal.NewFromInt(2)))
}

func TestSubmitLeaveRequest_EligibilityRule(t *testing.T) {
	f := newRequestFixture(t)
	f.annual.EligibilityRule = "tenure_days >= 90"
	hired := date("2026-03-01")
	member := &identity.Member{TenantAggregateRoot: shared.NewTenantAggregateRoot(f.org.ID), HiredAt: &hired}
	f.repos.members.On("FindByID", mock.Anything, f.employee.MemberID).Return(member, nil)
	f.repos.requests.On("FindForMemberInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*leave.LeaveRequest{}, nil)
	f.repos.balances.On("Find", mock.Anything, mock.Anything, mock.Anything, 2026).Return(nil, shared.ErrNotFound)
	f.evaluator.On("Evaluate", "tenure_days >= 90", leave.EligibilityInput{
		Days:       2,
		TenureDays: 64,
		Remaining:  14,
		LeaveCode:  "AL",
	}).Return(false, nil)

	_, err := f.service.SubmitLeaveRequest(context.Background(), f.employee, SubmitInput{
		LeaveTypeID: f.annual.ID,
		StartDate:   date("2026-05-04"),
		EndDate:     date("2026-05-05"),
	})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, shared.CodeRuleViolation, de.Code)
	f.evaluator.AssertExpectations(t)
}

func TestApprove_ConsumesPendingDays(t *testing.T) {
	f := newRequestFixture(t)
	req := f.pendingRequest(t, f.employee, "2026-05-04", "2026-05-06")
	balance, err := leave.NewLeaveBalance(f.org.ID, f.employee.MemberID, f.annual.ID, 2026, decimal.NewFromInt(14))
	require.NoError(t, err)
	require.NoError(t, balance.Reserve(req.Days, true))
	balance.MarkPersisted()

	f.repos.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
	f.repos.balances.On("Find", mock.Anything, req.MemberID, req.LeaveTypeID, 2026).Return(balance, nil)
	f.repos.balances.On("Save", mock.Anything, balance).Return(nil)
	f.repos.requests.On("Update", mock.Anything, req).Return(nil)

	got, err := f.service.Approve(context.Background(), f.hr, req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
	assert.True(t, balance.Pending.IsZero())
	assert.True(t, balance.Used.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, []string{leave.EventTypeLeaveRequestApproved}, f.events.types())
}

func TestApprove_Rules(t *testing.T) {
	f := newRequestFixture(t)

	_, err := f.service.Approve(context.Background(), f.employee, uuid.New())
	assert.ErrorIs(t, err, shared.ErrForbidden)

	own := f.pendingRequest(t, f.hr, "2026-05-04", "2026-05-06")
	f.repos.requests.On("FindByID", mock.Anything, own.ID).Return(own, nil)
	_, err = f.service.Approve(context.Background(), f.hr, own.ID)
	assert.ErrorIs(t, err, shared.ErrSelfApproval)

	f.annual.RequiresSeniorApproval = true
	senior := f.pendingRequest(t, f.employee, "2026-06-01", "2026-06-02")
	f.repos.requests.On("FindByID", mock.Anything, senior.ID).Return(senior, nil)
	_, err = f.service.Approve(context.Background(), f.hr, senior.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.service.SeniorApprove(context.Background(), f.hr, senior.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	seniorHR := f.hr
	seniorHR.Roles = seniorHR.Roles.WithSenior()
	f.repos.requests.On("Update", mock.Anything, senior).Return(nil)
	got, err := f.service.SeniorApprove(context.Background(), seniorHR, senior.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusSeniorApproved, got.Status)
}

func TestReject_ReleasesPending(t *testing.T) {
	f := newRequestFixture(t)
	req := f.pendingRequest(t, f.employee, "2026-05-04", "2026-05-06")
	balance, err := leave.NewLeaveBalance(f.org.ID, f.employee.MemberID, f.annual.ID, 2026, decimal.NewFromInt(14))
	require.NoError(t, err)
	require.NoError(t, balance.Reserve(req.Days, true))

	f.repos.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
	f.repos.balances.On("Find", mock.Anything, req.MemberID, req.LeaveTypeID, 2026).Return(balance, nil)
	f.repos.balances.On("Save", mock.Anything, balance).Return(nil)
	f.repos.requests.On("Update", mock.Anything, req).Return(nil)

	_, err = f.service.Reject(context.Background(), f.hr, req.ID, " ")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	got, err := f.service.Reject(context.Background(), f.hr, req.ID, "Peak season")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, got.Status)
	assert.Equal(t, "Peak season", got.RejectionReason)
	assert.True(t, balance.Pending.IsZero())
}

func TestCancel(t *testing.T) {
	t.Run("requester cancels pending", func(t *testing.T) {
		f := newRequestFixture(t)
		req := f.pendingRequest(t, f.employee, "2026-05-04", "2026-05-06")
		balance, _ := leave.NewLeaveBalance(f.org.ID, f.employee.MemberID, f.annual.ID, 2026, decimal.NewFromInt(14))
		require.NoError(t, balance.Reserve(req.Days, true))
		f.repos.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
		f.repos.balances.On("Find", mock.Anything, req.MemberID, req.LeaveTypeID, 2026).Return(balance, nil)
		f.repos.balances.On("Save", mock.Anything, balance).Return(nil)
		f.repos.requests.On("Update", mock.Anything, req).Return(nil)

		got, err := f.service.Cancel(context.Background(), f.employee, req.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, got.Status)
		assert.True(t, balance.Pending.IsZero())
		assert.True(t, balance.Used.IsZero())
	})

	t.Run("employee cannot cancel approved", func(t *testing.T) {
		f := newRequestFixture(t)
		req := f.pendingRequest(t, f.employee, "2026-05-04", "2026-05-06")
		req.Status = leave.StatusApproved
		f.repos.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)

		_, err := f.service.Cancel(context.Background(), f.employee, req.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("hr cancels approved and restores used days", func(t *testing.T) {
		f := newRequestFixture(t)
		req := f.pendingRequest(t, f.employee, "2026-05-04", "2026-05-06")
		req.Status = leave.StatusApproved
		balance, _ := leave.NewLeaveBalance(f.org.ID, f.employee.MemberID, f.annual.ID, 2026, decimal.NewFromInt(14))
		balance.Used = decimal.NewFromInt(5)
		f.repos.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
		f.repos.balances.On("Find", mock.Anything, req.MemberID, req.LeaveTypeID, 2026).Return(balance, nil)
		f.repos.balances.On("Save", mock.Anything, balance).Return(nil)
		f.repos.requests.On("Update", mock.Anything, req).Return(nil)

		_, err := f.service.Cancel(context.Background(), f.hr, req.ID)
		require.NoError(t, err)
		assert.True(t, balance.Used.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, []string{leave.EventTypeLeaveRequestCancelled}, f.events.types())
	})
}

func TestListLeaveRequests_EmployeeSeesOwn(t *testing.T) {
	f := newRequestFixture(t)
	other := uuid.New()
	f.repos.requests.On("FindAll", mock.Anything, mock.MatchedBy(func(filter leave.RequestFilter) bool {
		return filter.MemberID != nil && *filter.MemberID == f.employee.MemberID &&
			filter.Page == 1 && filter.PageSize == 20 &&
			len(filter.Statuses) == 1 && filter.Statuses[0] == leave.StatusApproved
	})).Return([]*leave.LeaveRequest{}, int64(0), nil)

	page, err := f.service.ListLeaveRequests(context.Background(), f.employee, ListRequestsInput{
		MemberID: &other,
		Statuses: []string{"approved"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)

	_, err = f.service.ListLeaveRequests(context.Background(), f.hr, ListRequestsInput{Statuses: []string{"bogus"}})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestListPendingApprovals(t *testing.T) {
	f := newRequestFixture(t)
	ready := f.pendingRequest(t, f.employee, "2026-05-04", "2026-05-06")
	own := f.pendingRequest(t, f.hr, "2026-05-11", "2026-05-12")
	f.annual.RequiresSeniorApproval = true
	needsSenior := f.pendingRequest(t, f.employee, "2026-06-01", "2026-06-02")
	f.repos.requests.On("FindAll", mock.Anything, mock.Anything).
		Return([]*leave.LeaveRequest{ready, own, needsSenior}, int64(3), nil)

	got, err := f.service.ListPendingApprovals(context.Background(), f.hr)
	require.NoError(t, err)
	assert.Equal(t, []*leave.LeaveRequest{ready}, got)

	seniorHR := f.hr
	seniorHR.Roles = seniorHR.Roles.WithSenior()
	got, err = f.service.ListPendingApprovals(context.Background(), seniorHR)
	require.NoError(t, err)
	assert.Equal(t, []*leave.LeaveRequest{ready, needsSenior}, got)

	_, err = f.service.ListPendingApprovals(context.Background(), f.employee)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
