// Package jobs wires the application services into the scheduled jobs:
// payroll and document reminders, invitation expiry, the leave year
// rollover and profile document expiry notices.
package jobs

import (
	"context"
	"fmt"
	"time"

	documentapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/document"
	leaveapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/application/notification"
	payrollapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/scheduler"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job names
const (
	JobPayrollReminder    = "payroll_confirmation_reminder"
	JobDocumentReminder   = "document_discussion_reminder"
	JobInvitationExpiry   = "invitation_expiry"
	JobLeaveYear          = "leave_year_initialization"
	JobProfileExpiry      = "profile_document_expiry"
	defaultBatchSize      = 500
	defaultExpiryDays     = 30
	defaultReminderAfter  = 3 * 24 * time.Hour
	defaultDiscussionWait = 48 * time.Hour
)

// Pusher delivers push notifications
type Pusher interface {
	Dispatch(ctx context.Context, n notification.Notification) (notification.DispatchResult, error)
}

// PayrollReminders creates confirmation reminder notices
type PayrollReminders interface {
	CreateConfirmationReminders(ctx context.Context, after, repeat time.Duration, limit int) (*payrollapp.ReminderResult, error)
}

// DiscussionReminders finds threads waiting on document owners
type DiscussionReminders interface {
	FindDiscussionReminders(ctx context.Context, after time.Duration, limit int) ([]documentapp.DiscussionReminder, error)
}

// InvitationExpirer expires lapsed invitations
type InvitationExpirer interface {
	ExpireInvitations(ctx context.Context, limit int) (int, error)
}

// LeaveYearInitializer creates the balances of a new leave year
type LeaveYearInitializer interface {
	InitializeAllOrganizations(ctx context.Context, year int) (*leaveapp.InitializeResult, error)
}

// ProfileExpiryFinder finds profile documents about to expire
type ProfileExpiryFinder interface {
	FindExpiringAcrossOrganizations(ctx context.Context, days int) (map[uuid.UUID][]documentapp.ExpiringProfileDocument, error)
}

// RoleLookup resolves the users holding a role
type RoleLookup interface {
	FindUserIDsWithRole(ctx context.Context, tenantID uuid.UUID, roles ...identity.Role) ([]uuid.UUID, error)
}

// Config holds the thresholds of the jobs
type Config struct {
	PayrollReminderAfter    time.Duration
	PayrollReminderRepeat   time.Duration
	DiscussionReminderAfter time.Duration
	ExpiryNoticeDays        int
	BatchSize               int
}

// Services groups the use cases the jobs drive
type Services struct {
	Payroll     PayrollReminders
	Discussions DiscussionReminders
	Invitations InvitationExpirer
	Leave       LeaveYearInitializer
	Profiles    ProfileExpiryFinder
	Roles       RoleLookup
	Push        Pusher
}

// Runner executes the scheduled jobs
type Runner struct {
	services Services
	config   Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewRunner creates a new job runner
func NewRunner(services Services, config Config, logger *zap.Logger) *Runner {
	if config.BatchSize <= 0 {
		config.BatchSize = defaultBatchSize
	}
	if config.PayrollReminderAfter <= 0 {
		config.PayrollReminderAfter = defaultReminderAfter
	}
	if config.PayrollReminderRepeat <= 0 {
		config.PayrollReminderRepeat = config.PayrollReminderAfter
	}
	if config.DiscussionReminderAfter <= 0 {
		config.DiscussionReminderAfter = defaultDiscussionWait
	}
	if config.ExpiryNoticeDays <= 0 {
		config.ExpiryNoticeDays = defaultExpiryDays
	}
	return &Runner{services: services, config: config, logger: logger, now: time.Now}
}

// Schedules holds the cron expressions of the jobs. Empty ones are skipped.
type Schedules struct {
	PayrollReminder  string
	DocumentReminder string
	InvitationExpiry string
	LeaveYear        string
	ProfileExpiry    string
}

// Jobs returns the scheduler jobs for the configured schedules
func (r *Runner) Jobs(s Schedules) []scheduler.Job {
	candidates := []scheduler.Job{
		{Name: JobPayrollReminder, Spec: s.PayrollReminder, Run: r.PayrollReminders},
		{Name: JobDocumentReminder, Spec: s.DocumentReminder, Run: r.DocumentReminders},
		{Name: JobInvitationExpiry, Spec: s.InvitationExpiry, Run: r.ExpireInvitations},
		{Name: JobLeaveYear, Spec: s.LeaveYear, Run: r.InitializeLeaveYear},
		{Name: JobProfileExpiry, Spec: s.ProfileExpiry, Run: r.ProfileExpiryNotices},
	}
	out := make([]scheduler.Job, 0, len(candidates))
	for _, j := range candidates {
		if j.Spec != "" {
			out = append(out, j)
		}
	}
	return out
}

// PayrollReminders reminds employees of records still awaiting their
// confirmation and pushes each reminder
func (r *Runner) PayrollReminders(ctx context.Context) error {
	result, err := r.services.Payroll.CreateConfirmationReminders(ctx, r.config.PayrollReminderAfter, r.config.PayrollReminderRepeat, r.config.BatchSize)
	if err != nil {
		return err
	}
	for _, n := range result.Reminded {
		r.push(logger.WithTenantID(ctx, n.TenantID.String()), notification.Notification{
			UserIDs:  []uuid.UUID{n.RecipientUserID},
			Category: identity.CategoryPayroll,
			Title:    "Payslip awaiting confirmation",
			Body:     fmt.Sprintf("Please review and confirm your payslip for %s", n.Period),
			Data: map[string]string{
				"type":              "payroll_reminder",
				"payroll_record_id": n.PayrollRecordID.String(),
			},
		})
	}
	return nil
}

// DocumentReminders nudges document owners whose threads wait on them
func (r *Runner) DocumentReminders(ctx context.Context) error {
	reminders, err := r.services.Discussions.FindDiscussionReminders(ctx, r.config.DiscussionReminderAfter, r.config.BatchSize)
	if err != nil {
		return err
	}
	for _, rem := range reminders {
		d := rem.Document
		r.push(logger.WithTenantID(ctx, d.TenantID.String()), notification.Notification{
			UserIDs:  []uuid.UUID{d.OwnerUserID},
			Category: identity.CategoryDocument,
			Title:    "A reply is waiting for you",
			Body:     fmt.Sprintf("HR is waiting for your reply on %q", d.Title),
			Data: map[string]string{
				"type":        "document_discussion",
				"document_id": d.ID.String(),
			},
		})
	}
	return nil
}

// ExpireInvitations expires lapsed pending invitations
func (r *Runner) ExpireInvitations(ctx context.Context) error {
	_, err := r.services.Invitations.ExpireInvitations(ctx, r.config.BatchSize)
	return err
}

// InitializeLeaveYear creates the balances of the current year
func (r *Runner) InitializeLeaveYear(ctx context.Context) error {
	result, err := r.services.Leave.InitializeAllOrganizations(ctx, r.now().UTC().Year())
	if err != nil {
		return err
	}
	r.logger.Info("Leave year initialized",
		zap.Int("year", result.Year),
		zap.Int("organizations", result.Organizations),
		zap.Int("created", result.Created))
	return nil
}

// ProfileExpiryNotices tells hr of every organization which profile
// documents expire soon
func (r *Runner) ProfileExpiryNotices(ctx context.Context) error {
	byTenant, err := r.services.Profiles.FindExpiringAcrossOrganizations(ctx, r.config.ExpiryNoticeDays)
	if err != nil {
		return err
	}
	for tenantID, docs := range byTenant {
		if len(docs) == 0 {
			continue
		}
		tenantCtx := logger.WithTenantID(ctx, tenantID.String())
		hr, err := r.services.Roles.FindUserIDsWithRole(tenantCtx, tenantID, identity.RoleHR, identity.RoleAdmin, identity.RoleAdministrator)
		if err != nil {
			r.logger.Warn("Failed to resolve hr recipients", zap.String("tenant_id", tenantID.String()), zap.Error(err))
			continue
		}
		r.push(tenantCtx, notification.Notification{
			UserIDs:  hr,
			Category: identity.CategoryDocument,
			Title:    "Documents expiring soon",
			Body:     expiryBody(docs),
			Data:     map[string]string{"type": "profile_document_expiry"},
		})
	}
	return nil
}

func expiryBody(docs []documentapp.ExpiringProfileDocument) string {
	first := docs[0]
	name := first.HolderName
	if name == "" {
		name = "A member"
	}
	if len(docs) == 1 {
		return fmt.Sprintf("%s's %s expires in %d days", name, first.Document.Kind, first.DaysLeft)
	}
	return fmt.Sprintf("%s's %s and %d more documents expire within the notice window", name, first.Document.Kind, len(docs)-1)
}

func (r *Runner) push(ctx context.Context, n notification.Notification) {
	if r.services.Push == nil {
		return
	}
	if _, err := r.services.Push.Dispatch(ctx, n); err != nil {
		r.logger.Warn("Failed to push job notification",
			zap.String("title", n.Title),
			zap.Error(err))
	}
}
