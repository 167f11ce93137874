package persistence

import (
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGormLeaveTypeRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormLeaveTypeRepository(db)
	orgID := uuid.New()
	ctx := tenantCtx(orgID)

	annual, err := leave.NewLeaveType(orgID, "Annual", "al", true, decimal.NewFromInt(14))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, annual))

	sick, err := leave.NewLeaveType(orgID, "Sick", "SL", true, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, sick))

	// Another organization may reuse the code
	other, err := leave.NewLeaveType(uuid.New(), "Annual", "AL", true, decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NoError(t, repo.Create(tenantCtx(other.TenantID), other))

	found, err := repo.FindByCode(ctx, "AL")
	require.NoError(t, err)
	assert.Equal(t, annual.ID, found.ID)
	assert.True(t, found.DefaultAllowance.Equal(decimal.NewFromInt(14)))

	inactive := false
	require.NoError(t, found.Apply(leave.LeaveTypeUpdate{Active: &inactive}))
	require.NoError(t, repo.Update(ctx, found))

	active, err := repo.FindAll(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Sick", active[0].Name)

	all, err := repo.FindAll(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGormBalanceRepository_Save(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormBalanceRepository(db)
	orgID, memberID, typeID := uuid.New(), uuid.New(), uuid.New()
	ctx := tenantCtx(orgID)

	balance, err := leave.NewLeaveBalance(orgID, memberID, typeID, 2026, decimal.NewFromInt(14))
	require.NoError(t, err)
	require.NoError(t, balance.Reserve(decimal.NewFromFloat(2.5), true))
	require.NoError(t, repo.Save(ctx, balance))

	exists, err := repo.ExistsFor(ctx, memberID, typeID, 2026)
	require.NoError(t, err)
	assert.True(t, exists)

	first, err := repo.Find(ctx, memberID, typeID, 2026)
	require.NoError(t, err)
	assert.True(t, first.Pending.Equal(decimal.NewFromFloat(2.5)))
	second, err := repo.Find(ctx, memberID, typeID, 2026)
	require.NoError(t, err)

	first.Consume(decimal.NewFromFloat(2.5))
	require.NoError(t, repo.Save(ctx, first))

	second.ReleasePending(decimal.NewFromFloat(2.5))
	assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)

	// A saved aggregate can be saved again
	require.NoError(t, first.Reserve(decimal.NewFromInt(1), true))
	require.NoError(t, repo.Save(ctx, first))

	got, err := repo.FindForMember(ctx, memberID, 2026)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Used.Equal(decimal.NewFromFloat(2.5)))
	assert.True(t, got[0].Remaining().Equal(decimal.NewFromFloat(10.5)))

	_, err = repo.Find(ctx, memberID, typeID, 2025)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormLeaveRequestRepository_Ranges(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormLeaveRequestRepository(db)
	orgID, memberID := uuid.New(), uuid.New()
	ctx := tenantCtx(orgID)

	lt, err := leave.NewLeaveType(orgID, "Annual", "AL", true, decimal.NewFromInt(14))
	require.NoError(t, err)

	create := func(start, end time.Time) *leave.LeaveRequest {
		rng, err := shared.NewDateRange(start, end)
		require.NoError(t, err)
		req, err := leave.NewLeaveRequest(leave.NewLeaveRequestInput{
			TenantID:        orgID,
			MemberID:        memberID,
			RequesterUserID: uuid.New(),
			LeaveType:       lt,
			Range:           rng,
			Days:            decimal.NewFromInt(int64(end.Sub(start).Hours()/24) + 1),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, req))
		return req
	}

	march := create(day(2026, 3, 2), day(2026, 3, 6))
	april := create(day(2026, 4, 13), day(2026, 4, 14))

	t.Run("finds requests intersecting the range", func(t *testing.T) {
		got, err := repo.FindForMemberInRange(ctx, memberID, day(2026, 3, 6), day(2026, 3, 20))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, march.ID, got[0].ID)

		got, err = repo.FindForMemberInRange(ctx, memberID, day(2026, 3, 7), day(2026, 4, 12))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("filters by status and dates", func(t *testing.T) {
		from := day(2026, 4, 1)
		items, total, err := repo.FindAll(ctx, leave.RequestFilter{
			Statuses: []leave.Status{leave.StatusPending},
			From:     &from,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, april.ID, items[0].ID)
	})

	t.Run("persists decisions", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, march.ID)
		require.NoError(t, err)
		assert.True(t, loaded.StartDate.Equal(day(2026, 3, 2)))

		require.NoError(t, loaded.Reject(uuid.New(), "Team coverage", time.Now()))
		require.NoError(t, repo.Update(ctx, loaded))

		count, err := repo.CountByStatus(ctx, &memberID, leave.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		rejected, err := repo.FindByID(ctx, march.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, rejected.Status)
		assert.Equal(t, "Team coverage", rejected.RejectionReason)
	})
}

func TestGormLeaveRequestRepository_CountAwaitingApproval(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormLeaveRequestRepository(db)
	orgID, approver, seniorHolder := uuid.New(), uuid.New(), uuid.New()
	ctx := tenantCtx(orgID)

	single, err := leave.NewLeaveType(orgID, "Annual", "AL", true, decimal.NewFromInt(14))
	require.NoError(t, err)
	delegated, err := leave.NewLeaveType(orgID, "Study", "SL", true, decimal.NewFromInt(5))
	require.NoError(t, err)
	delegated.RequiresSeniorApproval = true

	create := func(lt *leave.LeaveType, requester uuid.UUID, start time.Time) *leave.LeaveRequest {
		rng, err := shared.NewDateRange(start, start.AddDate(0, 0, 1))
		require.NoError(t, err)
		req, err := leave.NewLeaveRequest(leave.NewLeaveRequestInput{
			TenantID:        orgID,
			MemberID:        uuid.New(),
			RequesterUserID: requester,
			LeaveType:       lt,
			Range:           rng,
			Days:            decimal.NewFromInt(2),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, req))
		return req
	}

	create(single, uuid.New(), day(2026, 5, 4))
	create(single, approver, day(2026, 5, 11))
	create(delegated, uuid.New(), day(2026, 5, 18))
	stepped := create(delegated, uuid.New(), day(2026, 5, 25))
	require.NoError(t, stepped.SeniorApprove(seniorHolder, time.Now()))
	require.NoError(t, repo.Update(ctx, stepped))
	done := create(single, uuid.New(), day(2026, 6, 1))
	require.NoError(t, done.Approve(approver, time.Now()))
	require.NoError(t, repo.Update(ctx, done))

	all, _, err := repo.FindAll(ctx, leave.RequestFilter{})
	require.NoError(t, err)
	for _, tc := range []struct {
		name     string
		approver uuid.UUID
		senior   bool
		want     int64
	}{
		{"final approver skips own and delegated steps", approver, false, 2},
		{"senior holder sees delegated steps", seniorHolder, true, 4},
		{"senior approver skips own request", approver, true, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			count, err := repo.CountAwaitingApproval(ctx, tc.approver, tc.senior)
			require.NoError(t, err)
			assert.Equal(t, tc.want, count)

			var listed int64
			for _, r := range all {
				if r.AwaitsApprovalFrom(tc.approver, tc.senior) {
					listed++
				}
			}
			assert.Equal(t, listed, count)
		})
	}
}

func TestGormHolidayRepository_FindBetween(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormHolidayRepository(db)
	orgID := uuid.New()
	ctx := tenantCtx(orgID)

	newYear, err := leave.NewHoliday(orgID, day(2020, 1, 1), "New Year", true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, newYear))

	founding, err := leave.NewHoliday(orgID, day(2026, 5, 20), "Founding Day", false)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, founding))

	outside, err := leave.NewHoliday(orgID, day(2026, 9, 1), "Retreat", false)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, outside))

	got, err := repo.FindBetween(ctx, day(2026, 5, 1), day(2026, 5, 31))
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, h := range got {
		names[i] = h.Name
	}
	assert.ElementsMatch(t, []string{"New Year", "Founding Day"}, names)

	founding.SetTranslation("zh-Hant", "創立日")
	require.NoError(t, repo.Update(ctx, founding))
	loaded, err := repo.FindByID(ctx, founding.ID)
	require.NoError(t, err)
	assert.Equal(t, "創立日", loaded.NameFor("zh-Hant"))

	require.NoError(t, repo.Delete(ctx, outside.ID))
	assert.ErrorIs(t, repo.Delete(ctx, outside.ID), shared.ErrNotFound)
}
