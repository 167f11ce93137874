package leave

import (
	"context"
	"errors"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repositories groups the stores the leave services read and write
type Repositories struct {
	Types         leave.LeaveTypeRepository
	Balances      leave.BalanceRepository
	Requests      leave.RequestRepository
	Holidays      leave.HolidayRepository
	Organizations identity.OrganizationRepository
	Members       identity.MemberRepository
}

// Config holds the leave policy knobs
type Config struct {
	// EnforceBalance rejects paid requests the remaining balance cannot cover
	EnforceBalance bool
}

// RequestService runs the leave request workflow
type RequestService struct {
	repos     Repositories
	tx        shared.Transactor
	events    shared.EventPublisher
	evaluator leave.EligibilityEvaluator
	metrics   *telemetry.Metrics
	config    Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewRequestService creates a new leave request service
func NewRequestService(
	repos Repositories,
	tx shared.Transactor,
	events shared.EventPublisher,
	evaluator leave.EligibilityEvaluator,
	metrics *telemetry.Metrics,
	config Config,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		repos:     repos,
		tx:        tx,
		events:    events,
		evaluator: evaluator,
		metrics:   metrics,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitLeaveRequest files a request for the caller. Days are counted
// against the organization's work week and holidays, and reserved on the
// balance in the same transaction that stores the request.
func (s *RequestService) SubmitLeaveRequest(ctx context.Context, p identity.Principal, input SubmitInput) (*leave.LeaveRequest, error) {
	if p.MemberID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only members can submit leave requests")
	}
	dates, err := shared.NewDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	if err := leave.CheckSingleYear(dates); err != nil {
		return nil, err
	}
	lt, err := s.repos.Types.FindByID(ctx, input.LeaveTypeID)
	if err != nil {
		return nil, err
	}
	org, err := s.repos.Organizations.FindByID(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	holidays, err := s.repos.Holidays.FindBetween(ctx, dates.Start, dates.End)
	if err != nil {
		return nil, err
	}
	calendar := leave.NewWorkCalendar(org.Settings.WorkWeek, holidays)
	days := calendar.LeaveDays(dates, input.StartHalfDay, input.EndHalfDay)

	req, err := leave.NewLeaveRequest(leave.NewLeaveRequestInput{
		TenantID:        p.TenantID,
		MemberID:        p.MemberID,
		RequesterUserID: p.UserID,
		LeaveType:       lt,
		Range:           dates,
		StartHalfDay:    input.StartHalfDay,
		EndHalfDay:      input.EndHalfDay,
		Days:            days,
		Reason:          input.Reason,
	})
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.repos.Requests.FindForMemberInRange(ctx, p.MemberID, dates.Start, dates.End)
		if err != nil {
			return err
		}
		if conflict := leave.FindOverlap(dates, existing, uuid.Nil); conflict != nil {
			return leave.OverlapError(conflict)
		}
		balance, err := s.balanceFor(ctx, p.TenantID, p.MemberID, lt, req.Year())
		if err != nil {
			return err
		}
		if err := s.checkEligibility(ctx, p.MemberID, lt, req, balance); err != nil {
			return err
		}
		if err := balance.Reserve(days, s.config.EnforceBalance && lt.Paid); err != nil {
			return err
		}
		if err := s.repos.Balances.Save(ctx, balance); err != nil {
			return err
		}
		return s.repos.Requests.Create(ctx, req)
	})
	if err != nil {
		if de, ok := shared.AsDomainError(err); ok {
			s.metrics.LeaveEvent("rejected_" + de.Code)
		}
		return nil, err
	}

	s.publish(ctx, req)
	s.metrics.LeaveEvent("submitted")
	s.logger.Info("Leave request submitted",
		zap.String("request_id", req.ID.String()),
		zap.String("member_id", p.MemberID.String()),
		zap.String("leave_type", lt.Code),
		zap.String("days", days.String()))
	return req, nil
}

// balanceFor loads the balance, creating it from the type default when
// the member has none for the year yet
func (s *RequestService) balanceFor(ctx context.Context, tenantID, memberID uuid.UUID, lt *leave.LeaveType, year int) (*leave.LeaveBalance, error) {
	b, err := s.repos.Balances.Find(ctx, memberID, lt.ID, year)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return leave.NewLeaveBalance(tenantID, memberID, lt.ID, year, lt.DefaultAllowance)
}

func (s *RequestService) checkEligibility(ctx context.Context, memberID uuid.UUID, lt *leave.LeaveType, req *leave.LeaveRequest, balance *leave.LeaveBalance) error {
	if lt.EligibilityRule == "" || s.evaluator == nil {
		return nil
	}
	member, err := s.repos.Members.FindByID(ctx, memberID)
	if err != nil {
		return err
	}
	since := member.CreatedAt
	if member.HiredAt != nil {
		since = *member.HiredAt
	}
	tenure := int(req.StartDate.Sub(shared.DateOnly(since)).Hours() / 24)
	if tenure < 0 {
		tenure = 0
	}
	ok, err := s.evaluator.Evaluate(lt.EligibilityRule, leave.EligibilityInput{
		Days:       req.Days.InexactFloat64(),
		TenureDays: tenure,
		Remaining:  balance.Remaining().InexactFloat64(),
		LeaveCode:  lt.Code,
	})
	if err != nil {
		s.logger.Warn("Eligibility rule failed to evaluate",
			zap.String("leave_type", lt.Code),
			zap.Error(err))
		return shared.NewDomainError(shared.CodeRuleViolation, "Eligibility rule could not be evaluated")
	}
	if !ok {
		return shared.NewDomainError(shared.CodeRuleViolation, "You are not eligible for "+lt.Name+" on these dates")
	}
	return nil
}

// SeniorApprove records the delegated first approval (senior hr or admin)
func (s *RequestService) SeniorApprove(ctx context.Context, p identity.Principal, id uuid.UUID) (*leave.LeaveRequest, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	if !p.Roles.IsSenior() {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Senior approval requires a senior role")
	}
	req, err := s.repos.Requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.SeniorApprove(p.UserID, s.now()); err != nil {
		return nil, err
	}
	if err := s.repos.Requests.Update(ctx, req); err != nil {
		return nil, err
	}
	s.publish(ctx, req)
	s.metrics.LeaveEvent("senior_approved")
	s.logger.Info("Leave request senior-approved",
		zap.String("request_id", req.ID.String()),
		zap.String("by", p.UserID.String()))
	return req, nil
}

// Approve gives the final approval (hr+) and moves the days from pending to used
func (s *RequestService) Approve(ctx context.Context, p identity.Principal, id uuid.UUID) (*leave.LeaveRequest, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	var req *leave.LeaveRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.repos.Requests.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := req.Approve(p.UserID, s.now()); err != nil {
			return err
		}
		balance, err := s.repos.Balances.Find(ctx, req.MemberID, req.LeaveTypeID, req.Year())
		if err != nil {
			return err
		}
		balance.Consume(req.Days)
		if err := s.repos.Balances.Save(ctx, balance); err != nil {
			return err
		}
		return s.repos.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, req)
	s.metrics.LeaveEvent("approved")
	s.logger.Info("Leave request approved",
		zap.String("request_id", req.ID.String()),
		zap.String("by", p.UserID.String()))
	return req, nil
}

// Reject declines an open request (hr+) and releases its pending days
func (s *RequestService) Reject(ctx context.Context, p identity.Principal, id uuid.UUID, reason string) (*leave.LeaveRequest, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	var req *leave.LeaveRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.repos.Requests.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := req.Reject(p.UserID, reason, s.now()); err != nil {
			return err
		}
		if err := s.adjustBalance(ctx, req, leave.StatusPending); err != nil {
			return err
		}
		return s.repos.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, req)
	s.metrics.LeaveEvent("rejected")
	s.logger.Info("Leave request rejected",
		zap.String("request_id", req.ID.String()),
		zap.String("by", p.UserID.String()))
	return req, nil
}

// Cancel withdraws a request. The requester may cancel open requests;
// hr+ may also cancel approved ones, which restores the used days.
func (s *RequestService) Cancel(ctx context.Context, p identity.Principal, id uuid.UUID) (*leave.LeaveRequest, error) {
	var req *leave.LeaveRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.repos.Requests.FindByID(ctx, id)
		if err != nil {
			return err
		}
		prev, err := req.Cancel(p.UserID, p.AtLeast(identity.RoleHR), s.now())
		if err != nil {
			return err
		}
		if err := s.adjustBalance(ctx, req, prev); err != nil {
			return err
		}
		return s.repos.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, req)
	s.metrics.LeaveEvent("cancelled")
	s.logger.Info("Leave request cancelled",
		zap.String("request_id", req.ID.String()),
		zap.String("by", p.UserID.String()))
	return req, nil
}

// adjustBalance gives back the days of a request that left prev
func (s *RequestService) adjustBalance(ctx context.Context, req *leave.LeaveRequest, prev leave.Status) error {
	balance, err := s.repos.Balances.Find(ctx, req.MemberID, req.LeaveTypeID, req.Year())
	if err != nil {
		return err
	}
	if prev == leave.StatusApproved {
		balance.Restore(req.Days)
	} else {
		balance.ReleasePending(req.Days)
	}
	return s.repos.Balances.Save(ctx, balance)
}

// GetLeaveRequest returns a request. Employees only see their own.
func (s *RequestService) GetLeaveRequest(ctx context.Context, p identity.Principal, id uuid.UUID) (*leave.LeaveRequest, error) {
	req, err := s.repos.Requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.RequireSelfOr(req.RequesterUserID, identity.RoleHR); err != nil {
		return nil, err
	}
	return req, nil
}

// ListLeaveRequests lists requests. Employees are restricted to their own.
func (s *RequestService) ListLeaveRequests(ctx context.Context, p identity.Principal, input ListRequestsInput) (*shared.Paginated[*leave.LeaveRequest], error) {
	filter := leave.RequestFilter{
		MemberID:    input.MemberID,
		LeaveTypeID: input.LeaveTypeID,
		From:        input.From,
		To:          input.To,
		SortBy:      input.SortBy,
		SortOrder:   input.SortOrder,
	}
	if !p.AtLeast(identity.RoleHR) {
		own := p.MemberID
		filter.MemberID = &own
	}
	for _, raw := range input.Statuses {
		st := leave.Status(raw)
		if !st.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown leave status: "+raw)
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	norm := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	filter.Page, filter.PageSize = norm.Page, norm.PageSize

	items, total, err := s.repos.Requests.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListPendingApprovals returns the oldest open requests the caller can act
// on. Senior holders see requests waiting for the delegated step; every
// hr+ caller sees requests ready for final approval. The caller's own
// requests are excluded.
func (s *RequestService) ListPendingApprovals(ctx context.Context, p identity.Principal) ([]*leave.LeaveRequest, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	items, _, err := s.repos.Requests.FindAll(ctx, leave.RequestFilter{
		Statuses:  []leave.Status{leave.StatusPending, leave.StatusSeniorApproved},
		Page:      1,
		PageSize:  shared.MaxPageSize,
		SortBy:    "created_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, err
	}
	senior := p.Roles.IsSenior()
	out := make([]*leave.LeaveRequest, 0, len(items))
	for _, r := range items {
		if r.AwaitsApprovalFrom(p.UserID, senior) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *RequestService) publish(ctx context.Context, req *leave.LeaveRequest) {
	if err := shared.PublishAndClear(ctx, s.events, req); err != nil {
		s.logger.Warn("Failed to publish leave request events",
			zap.String("request_id", req.ID.String()),
			zap.Error(err))
	}
}
