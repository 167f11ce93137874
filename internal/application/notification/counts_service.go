package notification

import (
	"context"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/chat"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/task"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultPollInterval = 30 * time.Second

// DiscussionCounter counts document threads waiting on the caller
type DiscussionCounter interface {
	CountAwaitingReply(ctx context.Context, p identity.Principal) (int64, error)
}

// Counts are the badge counters clients poll for
type Counts struct {
	PendingLeaveApprovals   int64 `json:"pending_leave_approvals"`
	OwnPendingLeaveRequests int64 `json:"own_pending_leave_requests"`
	PayrollAwaitingConfirm  int64 `json:"payroll_awaiting_confirmation"`
	PayrollAwaitingApproval int64 `json:"payroll_awaiting_approval"`
	UnreadPayrollNotices    int64 `json:"unread_payroll_notifications"`
	UnreadChatMessages      int64 `json:"unread_chat_messages"`
	DocumentsAwaitingReply  int64 `json:"documents_awaiting_reply"`
	DocumentsPendingReview  int64 `json:"documents_pending_review"`
	OpenTasks               int64 `json:"open_tasks"`
	PollIntervalSeconds     int   `json:"poll_interval_seconds"`
}

// CountsRepositories groups the repositories the counters read
type CountsRepositories struct {
	LeaveRequests  leave.RequestRepository
	Payroll        payroll.RecordRepository
	PayrollNotices payroll.NotificationRepository
	Chat           chat.Repository
	Documents      document.Repository
	Tasks          task.Repository
}

// CountsService computes the polling counters
type CountsService struct {
	repos        CountsRepositories
	discussions  DiscussionCounter
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewCountsService creates a new counts service
func NewCountsService(repos CountsRepositories, discussions DiscussionCounter, pollInterval time.Duration, logger *zap.Logger) *CountsService {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &CountsService{repos: repos, discussions: discussions, pollInterval: pollInterval, logger: logger}
}

// GetCounts returns the counters for the caller. Role-gated counters are
// zero for callers below the role.
func (s *CountsService) GetCounts(ctx context.Context, p identity.Principal) (*Counts, error) {
	out := &Counts{PollIntervalSeconds: int(s.pollInterval / time.Second)}
	hr := p.AtLeast(identity.RoleHR)
	admin := p.AtLeast(identity.RoleAdmin)
	userID := p.UserID
	memberID := p.MemberID

	g, gctx := errgroup.WithContext(ctx)
	if hr {
		g.Go(func() (err error) {
			out.PendingLeaveApprovals, err = s.repos.LeaveRequests.CountAwaitingApproval(gctx, userID, p.Roles.IsSenior())
			return err
		})
		g.Go(func() (err error) {
			out.DocumentsPendingReview, err = s.repos.Documents.CountByStatus(gctx, nil, document.StatusPendingReview)
			return err
		})
	}
	if admin {
		g.Go(func() (err error) {
			out.PayrollAwaitingApproval, err = s.repos.Payroll.CountByStatus(gctx, nil, payroll.StatusPendingAdminApproval)
			return err
		})
	}
	g.Go(func() (err error) {
		out.OwnPendingLeaveRequests, err = s.repos.LeaveRequests.CountByStatus(gctx, &memberID, leave.StatusPending, leave.StatusSeniorApproved)
		return err
	})
	g.Go(func() (err error) {
		out.PayrollAwaitingConfirm, err = s.repos.Payroll.CountByStatus(gctx, &userID, payroll.StatusSentToEmployee)
		return err
	})
	g.Go(func() (err error) {
		out.UnreadPayrollNotices, err = s.repos.PayrollNotices.CountUnread(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.UnreadChatMessages, err = s.repos.Chat.CountUnread(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.OpenTasks, err = s.repos.Tasks.CountOpen(gctx, userID)
		return err
	})
	if s.discussions != nil {
		g.Go(func() (err error) {
			out.DocumentsAwaitingReply, err = s.discussions.CountAwaitingReply(gctx, p)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("Failed to compute notification counts", zap.Error(err))
		return nil, err
	}
	return out, nil
}
