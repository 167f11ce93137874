package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftPayroll(t *testing.T, orgID, memberID, userID, preparer uuid.UUID, month int) *payroll.PayrollRecord {
	t.Helper()
	p, err := payroll.NewPayrollRecord(payroll.NewPayrollRecordInput{
		TenantID:         orgID,
		EmployeeMemberID: memberID,
		EmployeeUserID:   userID,
		Year:             2026,
		Month:            month,
		Currency:         "usd",
		Items: []payroll.LineItemInput{
			{Kind: payroll.KindEarning, Label: "Base salary", Amount: decimal.NewFromInt(4000)},
			{Kind: payroll.KindDeduction, Label: "Pension", Amount: decimal.NewFromInt(200)},
		},
		CreatedBy: preparer,
	})
	require.NoError(t, err)
	return p
}

func TestGormPayrollRecordRepository_LineItems(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormPayrollRecordRepository(db)
	orgID, memberID, userID, preparer := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	ctx := tenantCtx(orgID)

	record := newDraftPayroll(t, orgID, memberID, userID, preparer, 3)
	require.NoError(t, repo.Create(ctx, record))

	exists, err := repo.ExistsForPeriod(ctx, memberID, 2026, 3)
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, loaded.LineItems, 2)
	assert.Equal(t, "Base salary", loaded.LineItems[0].Label)
	assert.True(t, loaded.Net.Equal(decimal.NewFromInt(3800)))

	stale, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)

	notes := "March with bonus"
	require.NoError(t, loaded.UpdateDraft([]payroll.LineItemInput{
		{Kind: payroll.KindEarning, Label: "Base salary", Amount: decimal.NewFromInt(4000)},
		{Kind: payroll.KindEarning, Label: "Bonus", Amount: decimal.NewFromInt(500)},
		{Kind: payroll.KindDeduction, Label: "Pension", Amount: decimal.NewFromInt(200)},
	}, &notes))
	require.NoError(t, repo.Update(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.LineItems, 3)
	assert.Equal(t, "Bonus", reloaded.LineItems[1].Label)
	assert.True(t, reloaded.Net.Equal(decimal.NewFromInt(4300)))
	assert.Equal(t, notes, reloaded.Notes)

	t.Run("stale update keeps the stored items", func(t *testing.T) {
		require.NoError(t, stale.UpdateDraft(nil, nil))
		assert.ErrorIs(t, repo.Update(ctx, stale), shared.ErrConcurrencyConflict)

		current, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Len(t, current.LineItems, 3)
	})

	t.Run("delete removes the items", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, record.ID))
		_, err := repo.FindByID(ctx, record.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPayrollRecordRepository_Workflow(t *testing.T) {
	db := newSQLiteDB(t)
	records := NewGormPayrollRecordRepository(db)
	notifications := NewGormPayrollNotificationRepository(db)
	orgID, memberID, userID, preparer, admin := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()
	ctx := tenantCtx(orgID)

	record := newDraftPayroll(t, orgID, memberID, userID, preparer, 4)
	require.NoError(t, records.Create(ctx, record))
	draft := newDraftPayroll(t, orgID, memberID, userID, preparer, 5)
	require.NoError(t, records.Create(ctx, draft))

	sentAt := time.Now().Add(-96 * time.Hour)
	require.NoError(t, record.SubmitForApproval(preparer, sentAt))
	n, err := record.Approve(admin, sentAt)
	require.NoError(t, err)
	require.NoError(t, records.Update(ctx, record))
	require.NoError(t, notifications.Create(ctx, n))

	t.Run("employee listing hides drafts", func(t *testing.T) {
		items, total, err := records.FindAll(ctx, payroll.RecordFilter{
			EmployeeUserID: &userID,
			Statuses:       []payroll.Status{payroll.StatusSentToEmployee},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Len(t, items[0].LineItems, 2)

		count, err := records.CountByStatus(ctx, nil, payroll.StatusDraft)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("awaiting confirmation spans organizations", func(t *testing.T) {
		got, err := records.FindAwaitingConfirmation(context.Background(), time.Now().Add(-72*time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, record.ID, got[0].ID)

		got, err = records.FindAwaitingConfirmation(context.Background(), sentAt.Add(-time.Hour), 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("notifications track read state", func(t *testing.T) {
		unread, err := notifications.CountUnread(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), unread)

		items, total, err := notifications.FindForRecipient(ctx, userID, true, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "2026-04", items[0].Period)

		items[0].MarkRead(time.Now())
		require.NoError(t, notifications.Update(ctx, items[0]))

		unread, err = notifications.CountUnread(ctx, userID)
		require.NoError(t, err)
		assert.Zero(t, unread)
	})

	t.Run("last reminder", func(t *testing.T) {
		last, err := notifications.LastReminderAt(ctx, record.ID)
		require.NoError(t, err)
		assert.Nil(t, last)

		reminder := payroll.NewNotification(record, payroll.NotificationReminder, time.Now())
		require.NoError(t, notifications.Create(ctx, reminder))

		last, err = notifications.LastReminderAt(ctx, record.ID)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.WithinDuration(t, reminder.CreatedAt, *last, time.Second)
	})
}
