package payroll

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportService serves payroll notices, the register export, payslips and
// confirmation reminders
type ReportService struct {
	repos    Repositories
	register RegisterWriter
	payslips PayslipRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService creates a new payroll report service
func NewReportService(repos Repositories, register RegisterWriter, payslips PayslipRenderer, logger *zap.Logger) *ReportService {
	return &ReportService{repos: repos, register: register, payslips: payslips, logger: logger, now: time.Now}
}

// ListNotifications returns the caller's payroll notices
func (s *ReportService) ListNotifications(ctx context.Context, p identity.Principal, unreadOnly bool, page, pageSize int) (*shared.Paginated[*payroll.Notification], error) {
	norm := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	items, total, err := s.repos.Notifications.FindForRecipient(ctx, p.UserID, unreadOnly, norm.Page, norm.PageSize)
	if err != nil {
		return nil, err
	}
	out := shared.NewPaginated(items, total, norm.Page, norm.PageSize)
	return &out, nil
}

// MarkNotificationRead marks one of the caller's notices read
func (s *ReportService) MarkNotificationRead(ctx context.Context, p identity.Principal, id uuid.UUID) (*payroll.Notification, error) {
	n, err := s.repos.Notifications.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientUserID != p.UserID {
		return nil, shared.ErrNotFound
	}
	if n.IsRead() {
		return n, nil
	}
	n.MarkRead(s.now())
	if err := s.repos.Notifications.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// ExportPayrollRegister writes the register of a month as a spreadsheet (hr+)
func (s *ReportService) ExportPayrollRegister(ctx context.Context, p identity.Principal, year, month int, w io.Writer) error {
	if err := p.Require(identity.RoleHR); err != nil {
		return err
	}
	if month < 1 || month > 12 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Month must be between 1 and 12")
	}
	org, err := s.repos.Organizations.FindByID(ctx, p.TenantID)
	if err != nil {
		return err
	}
	records, err := s.periodRecords(ctx, year, month)
	if err != nil {
		return err
	}
	members, profiles, err := s.people(ctx, records)
	if err != nil {
		return err
	}

	register := Register{OrganizationName: org.Name, Year: year, Month: month, GeneratedAt: s.now()}
	for _, rec := range records {
		row := RegisterRow{
			Currency:   rec.Currency,
			Gross:      rec.Gross,
			Deductions: rec.Deductions,
			Net:        rec.Net,
			Status:     string(rec.Status),
			Revision:   rec.Revision,
		}
		if m, ok := members[rec.EmployeeMemberID]; ok {
			row.EmployeeNumber = m.EmployeeNumber
			row.Department = m.Department
		}
		if pr, ok := profiles[rec.EmployeeUserID]; ok {
			row.EmployeeName = pr.FullName
		}
		register.Rows = append(register.Rows, row)
	}
	if err := s.register.WriteRegister(w, register); err != nil {
		return err
	}
	s.logger.Info("Payroll register exported",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("rows", len(register.Rows)))
	return nil
}

// periodRecords loads every record of the month, page by page
func (s *ReportService) periodRecords(ctx context.Context, year, month int) ([]*payroll.PayrollRecord, error) {
	var out []*payroll.PayrollRecord
	for page := 1; ; page++ {
		items, total, err := s.repos.Records.FindAll(ctx, payroll.RecordFilter{
			Year:      &year,
			Month:     &month,
			Page:      page,
			PageSize:  shared.MaxPageSize,
			SortBy:    "created_at",
			SortOrder: "asc",
		})
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if len(items) == 0 || int64(len(out)) >= total {
			return out, nil
		}
	}
}

func (s *ReportService) people(ctx context.Context, records []*payroll.PayrollRecord) (map[uuid.UUID]*identity.Member, map[uuid.UUID]*identity.Profile, error) {
	memberIDs := make([]uuid.UUID, 0, len(records))
	userIDs := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		memberIDs = append(memberIDs, r.EmployeeMemberID)
		userIDs = append(userIDs, r.EmployeeUserID)
	}
	members, err := s.repos.Members.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, nil, err
	}
	profiles, err := s.repos.Profiles.FindByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, err
	}
	byMember := make(map[uuid.UUID]*identity.Member, len(members))
	for _, m := range members {
		byMember[m.ID] = m
	}
	byUser := make(map[uuid.UUID]*identity.Profile, len(profiles))
	for _, pr := range profiles {
		byUser[pr.UserID] = pr
	}
	return byMember, byUser, nil
}

// RenderPayslip renders the PDF payslip of a record. Employees may only
// render their own sent records.
func (s *ReportService) RenderPayslip(ctx context.Context, p identity.Principal, id uuid.UUID) ([]byte, string, error) {
	rec, err := s.repos.Records.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !p.AtLeast(identity.RoleHR) && (rec.EmployeeUserID != p.UserID || !rec.Status.VisibleToEmployee()) {
		return nil, "", shared.ErrNotFound
	}
	org, err := s.repos.Organizations.FindByID(ctx, rec.TenantID)
	if err != nil {
		return nil, "", err
	}
	slip := Payslip{
		OrganizationName: org.Name,
		Period:           rec.Period(),
		Currency:         rec.Currency,
		Gross:            rec.Gross,
		TotalDeductions:  rec.Deductions,
		Net:              rec.Net,
		Status:           string(rec.Status),
		Revision:         rec.Revision,
		Notes:            rec.Notes,
		ApprovedAt:       rec.ApprovedAt,
		ConfirmedAt:      rec.ConfirmedAt,
		GeneratedAt:      s.now(),
	}
	for _, item := range rec.LineItems {
		line := PayslipLine{Label: item.Label, Amount: item.Amount}
		if item.Kind == payroll.KindDeduction {
			slip.Deductions = append(slip.Deductions, line)
		} else {
			slip.Earnings = append(slip.Earnings, line)
		}
	}
	if m, err := s.repos.Members.FindByID(ctx, rec.EmployeeMemberID); err == nil {
		slip.EmployeeNumber = m.EmployeeNumber
		slip.Department = m.Department
		slip.Position = m.Position
	}
	if pr, err := s.repos.Profiles.FindByUserID(ctx, rec.EmployeeUserID); err == nil {
		slip.EmployeeName = pr.FullName
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, "", err
	}

	pdf, err := s.payslips.RenderPayslip(ctx, slip)
	if err != nil {
		s.logger.Error("Failed to render payslip", zap.String("record_id", id.String()), zap.Error(err))
		return nil, "", err
	}
	filename := "payslip-" + rec.Period()
	if slip.EmployeeNumber != "" {
		filename += "-" + slip.EmployeeNumber
	}
	return pdf, filename + ".pdf", nil
}

// CreateConfirmationReminders stores a reminder notice for every record
// of any organization that has waited for confirmation longer than after.
// Records reminded within repeat are skipped. The created notices are
// returned for push delivery.
func (s *ReportService) CreateConfirmationReminders(ctx context.Context, after, repeat time.Duration, limit int) (*ReminderResult, error) {
	now := s.now()
	records, err := s.repos.Records.FindAwaitingConfirmation(ctx, now.Add(-after), limit)
	if err != nil {
		return nil, err
	}
	result := &ReminderResult{Scanned: len(records)}
	for _, rec := range records {
		recCtx := logger.WithTenantID(ctx, rec.TenantID.String())
		last, err := s.repos.Notifications.LastReminderAt(recCtx, rec.ID)
		if err != nil {
			s.logger.Warn("Failed to read last payroll reminder", zap.String("record_id", rec.ID.String()), zap.Error(err))
			continue
		}
		if last != nil && now.Sub(*last) < repeat {
			result.SkippedRecent++
			continue
		}
		notice := payroll.NewNotification(rec, payroll.NotificationReminder, now)
		if err := s.repos.Notifications.Create(recCtx, notice); err != nil {
			s.logger.Warn("Failed to store payroll reminder", zap.String("record_id", rec.ID.String()), zap.Error(err))
			continue
		}
		result.Reminded = append(result.Reminded, notice)
	}
	s.logger.Info("Payroll confirmation reminders created",
		zap.Int("scanned", result.Scanned),
		zap.Int("reminded", len(result.Reminded)),
		zap.Int("skipped_recent", result.SkippedRecent))
	return result, nil
}
