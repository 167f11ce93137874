package payroll

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 6, 3, 10, 0, 0, 0, time.UTC)

func items() []payroll.LineItemInput {
	return []payroll.LineItemInput{
		{Kind: payroll.KindEarning, Label: "Basic salary", Amount: decimal.RequireFromString("5000")},
		{Kind: payroll.KindDeduction, Label: "Pension", Amount: decimal.RequireFromString("250")},
	}
}

type recordFixture struct {
	repos    *repoMocks
	tx       *fakeTx
	events   *recordingPublisher
	service  *RecordService
	tenantID uuid.UUID
	hr       identity.Principal
	admin    identity.Principal
	employee identity.Principal
}

func newRecordFixture() *recordFixture {
	repos, r := newRepoMocks()
	f := &recordFixture{
		repos:    repos,
		tx:       &fakeTx{},
		events:   &recordingPublisher{},
		tenantID: uuid.New(),
	}
	f.hr = principal(f.tenantID, identity.RoleHR)
	f.admin = principal(f.tenantID, identity.RoleAdmin)
	f.employee = principal(f.tenantID, identity.RoleEmployee)
	f.service = NewRecordService(r, f.tx, f.events, nil, Config{DefaultCurrency: "USD"}, zap.NewNop())
	f.service.now = func() time.Time { return fixedNow }
	return f
}

func (f *recordFixture) record(t *testing.T, status payroll.Status) *payroll.PayrollRecord {
	t.Helper()
	rec, err := payroll.NewPayrollRecord(payroll.NewPayrollRecordInput{
		TenantID:         f.tenantID,
		EmployeeMemberID: f.employee.MemberID,
		EmployeeUserID:   f.employee.UserID,
		Year:             2026,
		Month:            5,
		Currency:         "HKD",
		Items:            items(),
		CreatedBy:        f.hr.UserID,
	})
	require.NoError(t, err)
	rec.Status = status
	rec.ClearDomainEvents()
	rec.MarkPersisted()
	return rec
}

func TestCreatePayrollRecord(t *testing.T) {
	f := newRecordFixture()
	member := &identity.Member{TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID), UserID: f.employee.UserID}
	member.ID = f.employee.MemberID
	org, err := identity.NewOrganization("Acme", "acme")
	require.NoError(t, err)
	org.Settings.Currency = "HKD"

	f.repos.members.On("FindByID", mock.Anything, member.ID).Return(member, nil)
	f.repos.records.On("ExistsForPeriod", mock.Anything, member.ID, 2026, 5).Return(false, nil).Once()
	f.repos.orgs.On("FindByID", mock.Anything, f.tenantID).Return(org, nil)
	f.repos.records.On("Create", mock.Anything, mock.AnythingOfType("*payroll.PayrollRecord")).Return(nil)

	rec, err := f.service.CreatePayrollRecord(context.Background(), f.hr, CreateRecordInput{
		EmployeeMemberID: member.ID,
		Year:             2026,
		Month:            5,
		Items:            items(),
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusDraft, rec.Status)
	assert.Equal(t, "HKD", rec.Currency)
	assert.Equal(t, f.employee.UserID, rec.EmployeeUserID)
	assert.True(t, rec.Net.Equal(decimal.RequireFromString("4750")))

	f.repos.records.On("ExistsForPeriod", mock.Anything, member.ID, 2026, 5).Return(true, nil).Once()
	_, err = f.service.CreatePayrollRecord(context.Background(), f.hr, CreateRecordInput{EmployeeMemberID: member.ID, Year: 2026, Month: 5, Items: items()})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = f.service.CreatePayrollRecord(context.Background(), f.employee, CreateRecordInput{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestApprovePayroll_CreatesNotification(t *testing.T) {
	f := newRecordFixture()
	rec := f.record(t, payroll.StatusPendingAdminApproval)
	f.repos.records.On("FindByID", mock.Anything, rec.ID).Return(rec, nil)
	f.repos.records.On("Update", mock.Anything, rec).Return(nil)
	var notice *payroll.Notification
	f.repos.notices.On("Create", mock.Anything, mock.AnythingOfType("*payroll.Notification")).
		Run(func(args mock.Arguments) { notice = args.Get(1).(*payroll.Notification) }).Return(nil)

	got, err := f.service.ApprovePayroll(context.Background(), f.admin, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusSentToEmployee, got.Status)
	require.NotNil(t, got.SentAt)
	assert.Equal(t, fixedNow, *got.SentAt)
	require.NotNil(t, notice)
	assert.Equal(t, f.employee.UserID, notice.RecipientUserID)
	assert.Equal(t, payroll.NotificationSent, notice.Kind)
	assert.Equal(t, "2026-05", notice.Period)
	assert.Equal(t, 1, f.tx.calls)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, payroll.EventTypePayrollSentToEmployee, f.events.events[0].EventType())
}

func TestApprovePayroll_Rejections(t *testing.T) {
	f := newRecordFixture()

	_, err := f.service.ApprovePayroll(context.Background(), f.hr, uuid.New())
	assert.ErrorIs(t, err, shared.ErrForbidden)

	draft := f.record(t, payroll.StatusDraft)
	f.repos.records.On("FindByID", mock.Anything, draft.ID).Return(draft, nil)
	_, err = f.service.ApprovePayroll(context.Background(), f.admin, draft.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	pending := f.record(t, payroll.StatusPendingAdminApproval)
	f.repos.records.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	preparer := f.admin
	preparer.UserID = f.hr.UserID
	_, err = f.service.ApprovePayroll(context.Background(), preparer, pending.ID)
	assert.ErrorIs(t, err, shared.ErrSelfApproval)

	f.repos.notices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirmAndDispute(t *testing.T) {
	f := newRecordFixture()
	rec := f.record(t, payroll.StatusSentToEmployee)
	f.repos.records.On("FindByID", mock.Anything, rec.ID).Return(rec, nil)
	f.repos.records.On("Update", mock.Anything, rec).Return(nil)

	_, err := f.service.ConfirmPayroll(context.Background(), f.hr, rec.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	got, err := f.service.DisputePayroll(context.Background(), f.employee, rec.ID, "Overtime missing")
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusDisputed, got.Status)

	f.repos.notices.On("Create", mock.Anything, mock.MatchedBy(func(n *payroll.Notification) bool {
		return n.Kind == payroll.NotificationResolved
	})).Return(nil)
	adjusted := append(items(), payroll.LineItemInput{Kind: payroll.KindEarning, Label: "Overtime", Amount: decimal.RequireFromString("400")})
	got, err = f.service.ResolveDispute(context.Background(), f.admin, rec.ID, ResolveDisputeInput{Action: "adjust", Items: adjusted})
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusSentToEmployee, got.Status)
	assert.Equal(t, 2, got.Revision)
	assert.True(t, got.Net.Equal(decimal.RequireFromString("5150")))

	got, err = f.service.ConfirmPayroll(context.Background(), f.employee, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusConfirmed, got.Status)
}

func TestEmployeeVisibility(t *testing.T) {
	f := newRecordFixture()
	draft := f.record(t, payroll.StatusDraft)
	f.repos.records.On("FindByID", mock.Anything, draft.ID).Return(draft, nil)

	_, err := f.service.GetPayrollRecord(context.Background(), f.employee, draft.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.service.GetPayrollRecord(context.Background(), f.hr, draft.ID)
	require.NoError(t, err)

	f.repos.records.On("FindAll", mock.Anything, mock.MatchedBy(func(filter payroll.RecordFilter) bool {
		return filter.EmployeeUserID != nil && *filter.EmployeeUserID == f.employee.UserID &&
			filter.EmployeeMemberID == nil &&
			assert.ObjectsAreEqual([]payroll.Status{payroll.StatusSentToEmployee, payroll.StatusConfirmed, payroll.StatusDisputed}, filter.Statuses)
	})).Return([]*payroll.PayrollRecord{}, int64(0), nil).Once()
	other := uuid.New()
	_, err = f.service.ListPayrollRecords(context.Background(), f.employee, ListRecordsInput{EmployeeMemberID: &other})
	require.NoError(t, err)

	page, err := f.service.ListPayrollRecords(context.Background(), f.employee, ListRecordsInput{Statuses: []string{"draft"}})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	f.repos.records.AssertNumberOfCalls(t, "FindAll", 1)
}

func TestDeleteDraft(t *testing.T) {
	f := newRecordFixture()
	sent := f.record(t, payroll.StatusSentToEmployee)
	f.repos.records.On("FindByID", mock.Anything, sent.ID).Return(sent, nil)
	assert.ErrorIs(t, f.service.DeleteDraft(context.Background(), f.hr, sent.ID), shared.ErrInvalidState)

	draft := f.record(t, payroll.StatusDraft)
	f.repos.records.On("FindByID", mock.Anything, draft.ID).Return(draft, nil)
	f.repos.records.On("Delete", mock.Anything, draft.ID).Return(nil)
	require.NoError(t, f.service.DeleteDraft(context.Background(), f.hr, draft.ID))
}

func TestMarkNotificationRead(t *testing.T) {
	repos, r := newRepoMocks()
	s := NewReportService(r, nil, nil, zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	me := principal(uuid.New(), identity.RoleEmployee)
	n := &payroll.Notification{ID: uuid.New(), RecipientUserID: me.UserID}
	repos.notices.On("FindByID", mock.Anything, n.ID).Return(n, nil)
	repos.notices.On("Update", mock.Anything, n).Return(nil).Once()

	got, err := s.MarkNotificationRead(context.Background(), me, n.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadAt)

	_, err = s.MarkNotificationRead(context.Background(), me, n.ID)
	require.NoError(t, err)
	repos.notices.AssertNumberOfCalls(t, "Update", 1)

	_, err = s.MarkNotificationRead(context.Background(), principal(me.TenantID), n.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestExportPayrollRegister(t *testing.T) {
	f := newRecordFixture()
	repos, r := newRepoMocks()
	register := &captureRegister{}
	s := NewReportService(r, register, nil, zap.NewNop())
	s.now = func() time.Time { return fixedNow }

	org, _ := identity.NewOrganization("Acme", "acme")
	rec := f.record(t, payroll.StatusConfirmed)
	member := &identity.Member{EmployeeNumber: "E-007", Department: "Ops"}
	member.ID = rec.EmployeeMemberID
	profile := &identity.Profile{UserID: rec.EmployeeUserID, FullName: "Chan Tai Man"}

	repos.orgs.On("FindByID", mock.Anything, f.tenantID).Return(org, nil)
	repos.records.On("FindAll", mock.Anything, mock.MatchedBy(func(filter payroll.RecordFilter) bool {
		return *filter.Year == 2026 && *filter.Month == 5 && filter.Page == 1
	})).Return([]*payroll.PayrollRecord{rec}, int64(1), nil)
	repos.members.On("FindByIDs", mock.Anything, []uuid.UUID{rec.EmployeeMemberID}).Return([]*identity.Member{member}, nil)
	repos.profiles.On("FindByUserIDs", mock.Anything, []uuid.UUID{rec.EmployeeUserID}).Return([]*identity.Profile{profile}, nil)

	var buf bytes.Buffer
	require.NoError(t, s.ExportPayrollRegister(context.Background(), f.hr, 2026, 5, &buf))
	assert.Equal(t, "xlsx", buf.String())
	assert.Equal(t, "Acme", register.got.OrganizationName)
	require.Len(t, register.got.Rows, 1)
	row := register.got.Rows[0]
	assert.Equal(t, "E-007", row.EmployeeNumber)
	assert.Equal(t, "Chan Tai Man", row.EmployeeName)
	assert.Equal(t, "confirmed", row.Status)
	assert.True(t, row.Net.Equal(decimal.RequireFromString("4750")))

	assert.ErrorIs(t, s.ExportPayrollRegister(context.Background(), f.employee, 2026, 5, &buf), shared.ErrForbidden)
}

func TestRenderPayslip(t *testing.T) {
	f := newRecordFixture()
	repos, r := newRepoMocks()
	renderer := &capturePayslip{}
	s := NewReportService(r, nil, renderer, zap.NewNop())

	org, _ := identity.NewOrganization("Acme", "acme")
	rec := f.record(t, payroll.StatusSentToEmployee)
	repos.records.On("FindByID", mock.Anything, rec.ID).Return(rec, nil)
	repos.orgs.On("FindByID", mock.Anything, rec.TenantID).Return(org, nil)
	repos.members.On("FindByID", mock.Anything, rec.EmployeeMemberID).Return(&identity.Member{EmployeeNumber: "E-007"}, nil)
	repos.profiles.On("FindByUserID", mock.Anything, rec.EmployeeUserID).Return(nil, shared.ErrNotFound)

	pdf, name, err := s.RenderPayslip(context.Background(), f.employee, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(pdf))
	assert.Equal(t, "payslip-2026-05-E-007.pdf", name)
	assert.Len(t, renderer.got.Earnings, 1)
	assert.Len(t, renderer.got.Deductions, 1)

	_, _, err = s.RenderPayslip(context.Background(), principal(f.tenantID, identity.RoleEmployee), rec.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateConfirmationReminders(t *testing.T) {
	f := newRecordFixture()
	repos, r := newRepoMocks()
	s := NewReportService(r, nil, nil, zap.NewNop())
	s.now = func() time.Time { return fixedNow }

	fresh := f.record(t, payroll.StatusSentToEmployee)
	recent := f.record(t, payroll.StatusSentToEmployee)
	remindedAt := fixedNow.Add(-2 * time.Hour)

	repos.records.On("FindAwaitingConfirmation", mock.Anything, fixedNow.Add(-72*time.Hour), 500).
		Return([]*payroll.PayrollRecord{fresh, recent}, nil)
	repos.notices.On("LastReminderAt", mock.Anything, fresh.ID).Return(nil, nil)
	repos.notices.On("LastReminderAt", mock.Anything, recent.ID).Return(&remindedAt, nil)
	repos.notices.On("Create", mock.Anything, mock.MatchedBy(func(n *payroll.Notification) bool {
		return n.PayrollRecordID == fresh.ID && n.Kind == payroll.NotificationReminder
	})).Return(nil).Once()

	result, err := s.CreateConfirmationReminders(context.Background(), 72*time.Hour, 24*time.Hour, 500)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 1, result.SkippedRecent)
	require.Len(t, result.Reminded, 1)
	assert.Equal(t, fresh.ID, result.Reminded[0].PayrollRecordID)
	repos.notices.AssertExpectations(t)
}
