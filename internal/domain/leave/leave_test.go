package leave

import (
	"errors"
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := shared.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustRange(t *testing.T, from, to string) shared.DateRange {
	t.Helper()
	r, err := shared.NewDateRange(day(from), day(to))
	require.NoError(t, err)
	return r
}

func newAnnual(t *testing.T, senior bool) *LeaveType {
	t.Helper()
	lt, err := NewLeaveType(uuid.New(), "Annual Leave", "al", true, decimal.NewFromInt(14))
	require.NoError(t, err)
	lt.RequiresSeniorApproval = senior
	return lt
}

func newRequest(t *testing.T, lt *LeaveType, requester uuid.UUID, from, to string) *LeaveRequest {
	t.Helper()
	r, err := NewLeaveRequest(NewLeaveRequestInput{
		TenantID:        lt.TenantID,
		MemberID:        uuid.New(),
		RequesterUserID: requester,
		LeaveType:       lt,
		Range:           mustRange(t, from, to),
		Days:            decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	return r
}

func TestNewLeaveType(t *testing.T) {
	lt, err := NewLeaveType(uuid.New(), "Sick", "sick_leave", true, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, "SICK_LEAVE", lt.Code)

	_, err = NewLeaveType(uuid.New(), "Sick", "sick leave", true, decimal.Zero)
	assert.Error(t, err)
	_, err = NewLeaveType(uuid.New(), "Sick", "SL", true, decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestNewLeaveRequest_Validation(t *testing.T) {
	lt := newAnnual(t, false)

	t.Run("end before start rejected", func(t *testing.T) {
		_, err := shared.NewDateRange(day("2024-03-12"), day("2024-03-11"))
		require.Error(t, err)
		assert.Equal(t, "End date cannot be before start date", err.Error())
	})

	t.Run("zero working days rejected", func(t *testing.T) {
		_, err := NewLeaveRequest(NewLeaveRequestInput{LeaveType: lt, Range: mustRange(t, "2024-03-16", "2024-03-17"), Days: decimal.Zero})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("spanning years rejected", func(t *testing.T) {
		_, err := NewLeaveRequest(NewLeaveRequestInput{LeaveType: lt, Range: mustRange(t, "2024-12-30", "2025-01-02"), Days: decimal.NewFromInt(3)})
		assert.Error(t, err)
	})

	t.Run("inactive type rejected", func(t *testing.T) {
		inactive := newAnnual(t, false)
		inactive.Active = false
		_, err := NewLeaveRequest(NewLeaveRequestInput{LeaveType: inactive, Range: mustRange(t, "2024-03-11", "2024-03-11"), Days: decimal.NewFromInt(1)})
		assert.Error(t, err)
	})
}

func TestLeaveRequest_SingleStepApproval(t *testing.T) {
	requester, approver := uuid.New(), uuid.New()
	r := newRequest(t, newAnnual(t, false), requester, "2024-03-11", "2024-03-12")
	now := time.Now()

	assert.True(t, errors.Is(r.Approve(requester, now), shared.ErrSelfApproval))
	assert.Error(t, r.SeniorApprove(approver, now), "senior step not applicable")

	require.NoError(t, r.Approve(approver, now))
	assert.Equal(t, StatusApproved, r.Status)
	assert.Equal(t, approver, *r.ApprovedBy)

	err := r.Reject(approver, "late", now)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestLeaveRequest_SeniorApprovalFlow(t *testing.T) {
	requester, senior, final := uuid.New(), uuid.New(), uuid.New()
	r := newRequest(t, newAnnual(t, true), requester, "2024-03-11", "2024-03-12")
	now := time.Now()

	err := r.Approve(final, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "senior approval first")

	require.NoError(t, r.SeniorApprove(senior, now))
	assert.Equal(t, StatusSeniorApproved, r.Status)
	assert.True(t, r.Status.IsOpen())

	require.NoError(t, r.Approve(final, now))
	assert.Equal(t, StatusApproved, r.Status)
	assert.NotNil(t, r.SeniorApprovedAt)
}

func TestLeaveRequest_AwaitsApprovalFrom(t *testing.T) {
	requester, approver := uuid.New(), uuid.New()
	single := newRequest(t, newAnnual(t, false), requester, "2024-03-11", "2024-03-12")
	delegated := newRequest(t, newAnnual(t, true), requester, "2024-04-08", "2024-04-09")

	assert.True(t, single.AwaitsApprovalFrom(approver, false))
	assert.False(t, single.AwaitsApprovalFrom(requester, true))
	assert.False(t, delegated.AwaitsApprovalFrom(approver, false))
	assert.True(t, delegated.AwaitsApprovalFrom(approver, true))

	require.NoError(t, delegated.SeniorApprove(uuid.New(), time.Now()))
	assert.True(t, delegated.AwaitsApprovalFrom(approver, false))

	require.NoError(t, single.Approve(approver, time.Now()))
	assert.False(t, single.AwaitsApprovalFrom(uuid.New(), true))
}

func TestLeaveRequest_RejectAndCancel(t *testing.T) {
	requester, hr := uuid.New(), uuid.New()
	lt := newAnnual(t, false)
	now := time.Now()

	t.Run("reject requires reason", func(t *testing.T) {
		r := newRequest(t, lt, requester, "2024-03-11", "2024-03-12")
		assert.Error(t, r.Reject(hr, " ", now))
		require.NoError(t, r.Reject(hr, "Team at minimum staffing", now))
		assert.Equal(t, StatusRejected, r.Status)
	})

	t.Run("requester cancels pending", func(t *testing.T) {
		r := newRequest(t, lt, requester, "2024-03-11", "2024-03-12")
		_, err := r.Cancel(uuid.New(), false, now)
		assert.True(t, errors.Is(err, shared.ErrForbidden))
		prev, err := r.Cancel(requester, false, now)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, prev)
		assert.Equal(t, StatusCancelled, r.Status)
	})

	t.Run("approved cancel needs hr", func(t *testing.T) {
		r := newRequest(t, lt, requester, "2024-03-11", "2024-03-12")
		require.NoError(t, r.Approve(hr, now))
		_, err := r.Cancel(requester, false, now)
		assert.Error(t, err)
		prev, err := r.Cancel(hr, true, now)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, prev)
		_, err = r.Cancel(hr, true, now)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

func TestFindOverlap(t *testing.T) {
	lt := newAnnual(t, false)
	requester := uuid.New()
	pending := newRequest(t, lt, requester, "2024-03-11", "2024-03-13")
	rejected := newRequest(t, lt, requester, "2024-03-18", "2024-03-19")
	require.NoError(t, rejected.Reject(uuid.New(), "no", time.Now()))
	cancelled := newRequest(t, lt, requester, "2024-03-20", "2024-03-21")
	_, err := cancelled.Cancel(requester, false, time.Now())
	require.NoError(t, err)
	existing := []*LeaveRequest{pending, rejected, cancelled}

	assert.Equal(t, pending, FindOverlap(mustRange(t, "2024-03-13", "2024-03-14"), existing, uuid.Nil))
	assert.Nil(t, FindOverlap(mustRange(t, "2024-03-14", "2024-03-15"), existing, uuid.Nil))
	assert.Nil(t, FindOverlap(mustRange(t, "2024-03-18", "2024-03-21"), existing, uuid.Nil), "rejected and cancelled do not block")
	assert.Nil(t, FindOverlap(mustRange(t, "2024-03-11", "2024-03-11"), existing, pending.ID))

	err = OverlapError(pending)
	assert.True(t, errors.Is(err, shared.ErrLeaveOverlap))
	assert.Contains(t, err.Error(), "2024-03-11")
}

func TestLeaveBalance(t *testing.T) {
	b, err := NewLeaveBalance(uuid.New(), uuid.New(), uuid.New(), 2024, decimal.NewFromInt(5))
	require.NoError(t, err)

	require.NoError(t, b.Reserve(decimal.NewFromInt(3), true))
	assert.True(t, b.Remaining().Equal(decimal.NewFromInt(2)))

	err = b.Reserve(decimal.NewFromInt(3), true)
	assert.True(t, errors.Is(err, shared.ErrInsufficientBalance))
	require.NoError(t, b.Reserve(decimal.NewFromInt(3), false), "unpaid types do not enforce")

	b.ReleasePending(decimal.NewFromInt(3))
	b.Consume(decimal.NewFromInt(3))
	assert.True(t, b.Used.Equal(decimal.NewFromInt(3)))
	assert.True(t, b.Pending.IsZero())

	assert.Error(t, b.SetEntitled(decimal.NewFromInt(2)))
	require.NoError(t, b.SetEntitled(decimal.NewFromInt(10)))

	b.Restore(decimal.NewFromInt(1))
	assert.True(t, b.Remaining().Equal(decimal.NewFromInt(8)))

	_, err = NewLeaveBalance(uuid.New(), uuid.New(), uuid.New(), 1999, decimal.Zero)
	assert.Error(t, err)
}

func TestWorkCalendar_LeaveDays(t *testing.T) {
	tenantID := uuid.New()
	goodFriday, err := NewHoliday(tenantID, day("2024-03-29"), "Good Friday", false)
	require.NoError(t, err)
	christmas, err := NewHoliday(tenantID, day("2000-12-25"), "Christmas Day", true)
	require.NoError(t, err)
	cal := NewWorkCalendar(nil, []*Holiday{goodFriday, christmas})

	cases := []struct {
		name      string
		from, to  string
		startHalf bool
		endHalf   bool
		want      string
	}{
		{"full week", "2024-03-11", "2024-03-15", false, false, "5"},
		{"spans weekend", "2024-03-14", "2024-03-19", false, false, "4"},
		{"weekend only", "2024-03-16", "2024-03-17", false, false, "0"},
		{"holiday excluded", "2024-03-28", "2024-04-01", false, false, "2"},
		{"recurring holiday", "2024-12-24", "2024-12-26", false, false, "2"},
		{"single half day", "2024-03-11", "2024-03-11", true, false, "0.5"},
		{"half day both ends", "2024-03-11", "2024-03-13", true, true, "2"},
		{"half day on weekend end ignored", "2024-03-15", "2024-03-16", false, true, "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cal.LeaveDays(mustRange(t, tc.from, tc.to), tc.startHalf, tc.endHalf)
			assert.Equal(t, tc.want, got.String())
		})
	}

	sixDay := NewWorkCalendar([]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}, nil)
	assert.Equal(t, "6", sixDay.LeaveDays(mustRange(t, "2024-03-11", "2024-03-17"), false, false).String())
}

func TestHoliday_NameFor(t *testing.T) {
	h, err := NewHoliday(uuid.New(), day("2024-02-10"), "Lunar New Year", false)
	require.NoError(t, err)
	h.SetTranslation("zh-Hant", "農曆新年")
	h.SetTranslation("id", "Tahun Baru Imlek")

	assert.Equal(t, "農曆新年", h.NameFor("zh-Hant"))
	assert.Equal(t, "Tahun Baru Imlek", h.NameFor("id-ID"))
	assert.Equal(t, "Lunar New Year", h.NameFor("fil"))
}
