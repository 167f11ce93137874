package payroll

import (
	"context"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repositories groups the stores the payroll services use
type Repositories struct {
	Records       payroll.RecordRepository
	Notifications payroll.NotificationRepository
	Organizations identity.OrganizationRepository
	Members       identity.MemberRepository
	Profiles      identity.ProfileRepository
}

// Config holds payroll policy knobs
type Config struct {
	DefaultCurrency string
}

// RecordService runs the payroll record lifecycle
type RecordService struct {
	repos   Repositories
	tx      shared.Transactor
	events  shared.EventPublisher
	metrics *telemetry.Metrics
	config  Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewRecordService creates a new payroll record service
func NewRecordService(
	repos Repositories,
	tx shared.Transactor,
	events shared.EventPublisher,
	metrics *telemetry.Metrics,
	config Config,
	logger *zap.Logger,
) *RecordService {
	return &RecordService{
		repos:   repos,
		tx:      tx,
		events:  events,
		metrics: metrics,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// CreatePayrollRecord prepares a draft for an employee (hr+). There is at
// most one record per employee and month.
func (s *RecordService) CreatePayrollRecord(ctx context.Context, p identity.Principal, input CreateRecordInput) (*payroll.PayrollRecord, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	member, err := s.repos.Members.FindByID(ctx, input.EmployeeMemberID)
	if err != nil {
		return nil, err
	}
	exists, err := s.repos.Records.ExistsForPeriod(ctx, member.ID, input.Year, input.Month)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "A payroll record already exists for this employee and period")
	}
	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency(ctx, p.TenantID)
	}
	rec, err := payroll.NewPayrollRecord(payroll.NewPayrollRecordInput{
		TenantID:         p.TenantID,
		EmployeeMemberID: member.ID,
		EmployeeUserID:   member.UserID,
		Year:             input.Year,
		Month:            input.Month,
		Currency:         currency,
		Items:            input.Items,
		Notes:            input.Notes,
		CreatedBy:        p.UserID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repos.Records.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.publish(ctx, rec)
	s.metrics.PayrollTransition(string(rec.Status))
	s.logger.Info("Payroll record created",
		zap.String("record_id", rec.ID.String()),
		zap.String("member_id", member.ID.String()),
		zap.String("period", rec.Period()),
		zap.String("net", rec.Net.StringFixed(2)))
	return rec, nil
}

func (s *RecordService) defaultCurrency(ctx context.Context, tenantID uuid.UUID) string {
	if org, err := s.repos.Organizations.FindByID(ctx, tenantID); err == nil && org.Settings.Currency != "" {
		return org.Settings.Currency
	}
	return s.config.DefaultCurrency
}

// UpdateDraft replaces the line items of a draft (hr+)
func (s *RecordService) UpdateDraft(ctx context.Context, p identity.Principal, id uuid.UUID, input UpdateDraftInput) (*payroll.PayrollRecord, error) {
	return s.transition(ctx, p, id, identity.RoleHR, "updated", func(rec *payroll.PayrollRecord) error {
		return rec.UpdateDraft(input.Items, input.Notes)
	})
}

// DeleteDraft removes a draft (hr+)
func (s *RecordService) DeleteDraft(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	if err := p.Require(identity.RoleHR); err != nil {
		return err
	}
	rec, err := s.repos.Records.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !rec.CanDelete() {
		return shared.NewDomainError(shared.CodeInvalidState, "Only draft payroll records can be deleted")
	}
	if err := s.repos.Records.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Payroll draft deleted", zap.String("record_id", id.String()))
	return nil
}

// SubmitForApproval hands a draft to an admin (hr+)
func (s *RecordService) SubmitForApproval(ctx context.Context, p identity.Principal, id uuid.UUID) (*payroll.PayrollRecord, error) {
	return s.transition(ctx, p, id, identity.RoleHR, "submitted", func(rec *payroll.PayrollRecord) error {
		return rec.SubmitForApproval(p.UserID, s.now())
	})
}

// ReturnToDraft sends a pending record back to its preparer (admin+)
func (s *RecordService) ReturnToDraft(ctx context.Context, p identity.Principal, id uuid.UUID, note string) (*payroll.PayrollRecord, error) {
	return s.transition(ctx, p, id, identity.RoleAdmin, "returned", func(rec *payroll.PayrollRecord) error {
		return rec.ReturnToDraft(p.UserID, note)
	})
}

// ApprovePayroll releases a pending record to the employee (admin+). The
// record update and the employee's notification row commit together.
func (s *RecordService) ApprovePayroll(ctx context.Context, p identity.Principal, id uuid.UUID) (*payroll.PayrollRecord, error) {
	return s.transitionWithNotice(ctx, p, id, "approved", func(rec *payroll.PayrollRecord) (*payroll.Notification, error) {
		return rec.Approve(p.UserID, s.now())
	})
}

// ResolveDispute settles a disputed record and re-sends it (admin+)
func (s *RecordService) ResolveDispute(ctx context.Context, p identity.Principal, id uuid.UUID, input ResolveDisputeInput) (*payroll.PayrollRecord, error) {
	return s.transitionWithNotice(ctx, p, id, "dispute resolved", func(rec *payroll.PayrollRecord) (*payroll.Notification, error) {
		return rec.ResolveDispute(p.UserID, payroll.ResolutionAction(input.Action), input.Note, input.Items, s.now())
	})
}

// ConfirmPayroll records the employee's acceptance
func (s *RecordService) ConfirmPayroll(ctx context.Context, p identity.Principal, id uuid.UUID) (*payroll.PayrollRecord, error) {
	return s.transition(ctx, p, id, identity.RoleEmployee, "confirmed", func(rec *payroll.PayrollRecord) error {
		return rec.Confirm(p.UserID, s.now())
	})
}

// DisputePayroll records the employee's objection
func (s *RecordService) DisputePayroll(ctx context.Context, p identity.Principal, id uuid.UUID, reason string) (*payroll.PayrollRecord, error) {
	return s.transition(ctx, p, id, identity.RoleEmployee, "disputed", func(rec *payroll.PayrollRecord) error {
		return rec.Dispute(p.UserID, reason, s.now())
	})
}

func (s *RecordService) transition(
	ctx context.Context,
	p identity.Principal,
	id uuid.UUID,
	role identity.Role,
	action string,
	apply func(rec *payroll.PayrollRecord) error,
) (*payroll.PayrollRecord, error) {
	if err := p.Require(role); err != nil {
		return nil, err
	}
	rec, err := s.repos.Records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(rec); err != nil {
		return nil, err
	}
	if err := s.repos.Records.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.publish(ctx, rec)
	s.metrics.PayrollTransition(string(rec.Status))
	s.logger.Info("Payroll record "+action,
		zap.String("record_id", rec.ID.String()),
		zap.String("status", string(rec.Status)),
		zap.String("by", p.UserID.String()))
	return rec, nil
}

func (s *RecordService) transitionWithNotice(
	ctx context.Context,
	p identity.Principal,
	id uuid.UUID,
	action string,
	apply func(rec *payroll.PayrollRecord) (*payroll.Notification, error),
) (*payroll.PayrollRecord, error) {
	if err := p.Require(identity.RoleAdmin); err != nil {
		return nil, err
	}
	var rec *payroll.PayrollRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.repos.Records.FindByID(ctx, id)
		if err != nil {
			return err
		}
		notice, err := apply(rec)
		if err != nil {
			return err
		}
		if err := s.repos.Records.Update(ctx, rec); err != nil {
			return err
		}
		return s.repos.Notifications.Create(ctx, notice)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, rec)
	s.metrics.PayrollTransition(string(rec.Status))
	s.logger.Info("Payroll record "+action,
		zap.String("record_id", rec.ID.String()),
		zap.String("period", rec.Period()),
		zap.Int("revision", rec.Revision),
		zap.String("by", p.UserID.String()))
	return rec, nil
}

// GetPayrollRecord returns a record. Employees see only their own records
// once they have been sent.
func (s *RecordService) GetPayrollRecord(ctx context.Context, p identity.Principal, id uuid.UUID) (*payroll.PayrollRecord, error) {
	rec, err := s.repos.Records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(p, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RecordService) checkVisible(p identity.Principal, rec *payroll.PayrollRecord) error {
	if p.AtLeast(identity.RoleHR) {
		return nil
	}
	if rec.EmployeeUserID != p.UserID || !rec.Status.VisibleToEmployee() {
		return shared.ErrNotFound
	}
	return nil
}

// ListPayrollRecords lists records. Employees are limited to their own
// sent records.
func (s *RecordService) ListPayrollRecords(ctx context.Context, p identity.Principal, input ListRecordsInput) (*shared.Paginated[*payroll.PayrollRecord], error) {
	filter := payroll.RecordFilter{
		EmployeeMemberID: input.EmployeeMemberID,
		Year:             input.Year,
		Month:            input.Month,
		SortBy:           input.SortBy,
		SortOrder:        input.SortOrder,
	}
	for _, raw := range input.Statuses {
		st := payroll.Status(raw)
		if !st.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown payroll status: "+raw)
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	if !p.AtLeast(identity.RoleHR) {
		self := p.UserID
		filter.EmployeeUserID = &self
		filter.EmployeeMemberID = nil
		filter.Statuses = visibleOnly(filter.Statuses)
	}
	norm := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	filter.Page, filter.PageSize = norm.Page, norm.PageSize
	if len(filter.Statuses) == 0 && !p.AtLeast(identity.RoleHR) {
		page := shared.NewPaginated([]*payroll.PayrollRecord{}, 0, filter.Page, filter.PageSize)
		return &page, nil
	}

	items, total, err := s.repos.Records.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// visibleOnly narrows a requested status list to the statuses employees
// may see. An empty request means all of them; a request for hidden
// statuses only yields an empty list.
func visibleOnly(requested []payroll.Status) []payroll.Status {
	all := []payroll.Status{payroll.StatusSentToEmployee, payroll.StatusConfirmed, payroll.StatusDisputed}
	if len(requested) == 0 {
		return all
	}
	out := make([]payroll.Status, 0, len(requested))
	for _, st := range requested {
		if st.VisibleToEmployee() {
			out = append(out, st)
		}
	}
	return out
}

func (s *RecordService) publish(ctx context.Context, rec *payroll.PayrollRecord) {
	if err := shared.PublishAndClear(ctx, s.events, rec); err != nil {
		s.logger.Warn("Failed to publish payroll events",
			zap.String("record_id", rec.ID.String()),
			zap.Error(err))
	}
}
