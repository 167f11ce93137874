package handler

import (
	"context"
	"strconv"
	"time"

	appleave "github.com/We2399/idea-launcher-pro-sub001/internal/application/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeaveTypeUseCases manages leave types
type LeaveTypeUseCases interface {
	CreateLeaveType(ctx context.Context, p identity.Principal, input appleave.CreateLeaveTypeInput) (*leave.LeaveType, error)
	UpdateLeaveType(ctx context.Context, p identity.Principal, id uuid.UUID, update leave.LeaveTypeUpdate) (*leave.LeaveType, error)
	ListLeaveTypes(ctx context.Context, p identity.Principal, includeInactive bool) ([]*leave.LeaveType, error)
}

// LeaveBalanceUseCases reads and adjusts balances
type LeaveBalanceUseCases interface {
	GetBalances(ctx context.Context, p identity.Principal, memberID uuid.UUID, year int) ([]appleave.BalanceView, error)
	AdjustBalance(ctx context.Context, p identity.Principal, input appleave.AdjustBalanceInput) (*leave.LeaveBalance, error)
	InitializeYearBalances(ctx context.Context, p identity.Principal, year int) (*appleave.InitializeResult, error)
}

// LeaveRequestUseCases runs the request workflow
type LeaveRequestUseCases interface {
	SubmitLeaveRequest(ctx context.Context, p identity.Principal, input appleave.SubmitInput) (*leave.LeaveRequest, error)
	SeniorApprove(ctx context.Context, p identity.Principal, id uuid.UUID) (*leave.LeaveRequest, error)
	Approve(ctx context.Context, p identity.Principal, id uuid.UUID) (*leave.LeaveRequest, error)
	Reject(ctx context.Context, p identity.Principal, id uuid.UUID, reason string) (*leave.LeaveRequest, error)
	Cancel(ctx context.Context, p identity.Principal, id uuid.UUID) (*leave.LeaveRequest, error)
	GetLeaveRequest(ctx context.Context, p identity.Principal, id uuid.UUID) (*leave.LeaveRequest, error)
	ListLeaveRequests(ctx context.Context, p identity.Principal, input appleave.ListRequestsInput) (*shared.Paginated[*leave.LeaveRequest], error)
	ListPendingApprovals(ctx context.Context, p identity.Principal) ([]*leave.LeaveRequest, error)
}

// HolidayUseCases manages the holiday calendar
type HolidayUseCases interface {
	CreateHoliday(ctx context.Context, p identity.Principal, input appleave.CreateHolidayInput) (*appleave.HolidayView, error)
	ListHolidays(ctx context.Context, year int, locale string) ([]appleave.HolidayView, error)
	DeleteHoliday(ctx context.Context, p identity.Principal, id uuid.UUID) error
	TranslateHoliday(ctx context.Context, p identity.Principal, id uuid.UUID, targets []string) (*appleave.HolidayView, error)
}

// LeaveHandler serves leave types, balances, requests and holidays
type LeaveHandler struct {
	BaseHandler
	types    LeaveTypeUseCases
	balances LeaveBalanceUseCases
	requests LeaveRequestUseCases
	holidays HolidayUseCases
	now      func() time.Time
}

// NewLeaveHandler creates a new leave handler
func NewLeaveHandler(types LeaveTypeUseCases, balances LeaveBalanceUseCases, requests LeaveRequestUseCases, holidays HolidayUseCases) *LeaveHandler {
	return &LeaveHandler{types: types, balances: balances, requests: requests, holidays: holidays, now: time.Now}
}

// ListTypes returns the leave types; HR may include inactive ones
func (h *LeaveHandler) ListTypes(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	includeInactive, _ := strconv.ParseBool(c.Query("include_inactive"))
	types, err := h.types.ListLeaveTypes(c.Request.Context(), p, includeInactive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapSlice(types, toLeaveTypeResponse))
}

// CreateType defines a leave type
func (h *LeaveHandler) CreateType(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreateLeaveTypeRequest
	if !h.bind(c, &req) {
		return
	}
	t, err := h.types.CreateLeaveType(c.Request.Context(), p, appleave.CreateLeaveTypeInput{
		Name:                   req.Name,
		Code:                   req.Code,
		Paid:                   req.Paid,
		RequiresSeniorApproval: req.RequiresSeniorApproval,
		DefaultAllowance:       req.DefaultAllowance,
		EligibilityRule:        req.EligibilityRule,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toLeaveTypeResponse(t))
}

// UpdateType changes a leave type
func (h *LeaveHandler) UpdateType(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req UpdateLeaveTypeRequest
	if !h.bind(c, &req) {
		return
	}
	t, err := h.types.UpdateLeaveType(c.Request.Context(), p, id, leave.LeaveTypeUpdate{
		Name:                   req.Name,
		Paid:                   req.Paid,
		RequiresSeniorApproval: req.RequiresSeniorApproval,
		DefaultAllowance:       req.DefaultAllowance,
		EligibilityRule:        req.EligibilityRule,
		Active:                 req.Active,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLeaveTypeResponse(t))
}

// Balances returns a member's balances for a year. Without member_id it
// returns the caller's own.
func (h *LeaveHandler) Balances(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	memberID := p.MemberID
	if raw := c.Query("member_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid member_id")
			return
		}
		memberID = id
	}
	year, ok := queryInt(c, "year", h.now().Year())
	if !ok {
		h.BadRequest(c, "Invalid year")
		return
	}
	balances, err := h.balances.GetBalances(c.Request.Context(), p, memberID, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balances)
}

// AdjustBalance sets a member's entitlement
func (h *LeaveHandler) AdjustBalance(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req AdjustBalanceRequest
	if !h.bind(c, &req) {
		return
	}
	b, err := h.balances.AdjustBalance(c.Request.Context(), p, appleave.AdjustBalanceInput{
		MemberID:    uuid.MustParse(req.MemberID),
		LeaveTypeID: uuid.MustParse(req.LeaveTypeID),
		Year:        req.Year,
		Entitled:    req.Entitled,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLeaveBalanceResponse(b))
}

// InitializeBalances creates missing balances for every active member
func (h *LeaveHandler) InitializeBalances(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req InitializeBalancesRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.balances.InitializeYearBalances(c.Request.Context(), p, req.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Submit files a leave request
func (h *LeaveHandler) Submit(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req SubmitLeaveRequest
	if !h.bind(c, &req) {
		return
	}
	start, err := shared.ParseDate(req.StartDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	end, err := shared.ParseDate(req.EndDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	r, err := h.requests.SubmitLeaveRequest(c.Request.Context(), p, appleave.SubmitInput{
		LeaveTypeID:  uuid.MustParse(req.LeaveTypeID),
		StartDate:    start,
		EndDate:      end,
		StartHalfDay: req.StartHalfDay,
		EndHalfDay:   req.EndHalfDay,
		Reason:       req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toLeaveRequestResponse(r))
}

// ListRequests returns leave requests. Employees only see their own.
func (h *LeaveHandler) ListRequests(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q ListLeaveRequestsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	input := appleave.ListRequestsInput{
		Statuses:  splitList(q.Status),
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	input.MemberID, _ = parseOptionalUUID(q.MemberID)
	input.LeaveTypeID, _ = parseOptionalUUID(q.LeaveTypeID)
	input.From, _ = parseOptionalDate(q.From)
	input.To, _ = parseOptionalDate(q.To)

	page, err := h.requests.ListLeaveRequests(c.Request.Context(), p, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginate(&h.BaseHandler, c, page, toLeaveRequestResponse)
}

// PendingApprovals lists requests waiting on the caller's decision
func (h *LeaveHandler) PendingApprovals(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	requests, err := h.requests.ListPendingApprovals(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapSlice(requests, toLeaveRequestResponse))
}

// GetRequest returns one leave request
func (h *LeaveHandler) GetRequest(c *gin.Context) {
	h.transition(c, h.requests.GetLeaveRequest)
}

// SeniorApprove records the first of two approvals
func (h *LeaveHandler) SeniorApprove(c *gin.Context) {
	h.transition(c, h.requests.SeniorApprove)
}

// Approve gives final approval and consumes the balance
func (h *LeaveHandler) Approve(c *gin.Context) {
	h.transition(c, h.requests.Approve)
}

// Cancel withdraws a request and restores the balance
func (h *LeaveHandler) Cancel(c *gin.Context) {
	h.transition(c, h.requests.Cancel)
}

// Reject declines a request with a reason
func (h *LeaveHandler) Reject(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if !h.bind(c, &req) {
		return
	}
	r, err := h.requests.Reject(c.Request.Context(), p, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLeaveRequestResponse(r))
}

func (h *LeaveHandler) transition(c *gin.Context, fn func(context.Context, identity.Principal, uuid.UUID) (*leave.LeaveRequest, error)) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	r, err := fn(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLeaveRequestResponse(r))
}

// ListHolidays returns a year's holidays with names in the requested locale
func (h *LeaveHandler) ListHolidays(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	year, ok := queryInt(c, "year", h.now().Year())
	if !ok {
		h.BadRequest(c, "Invalid year")
		return
	}
	holidays, err := h.holidays.ListHolidays(c.Request.Context(), year, c.Query("locale"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if holidays == nil {
		holidays = []appleave.HolidayView{}
	}
	h.Success(c, holidays)
}

// CreateHoliday adds a holiday to the calendar
func (h *LeaveHandler) CreateHoliday(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreateHolidayRequest
	if !h.bind(c, &req) {
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	holiday, err := h.holidays.CreateHoliday(c.Request.Context(), p, appleave.CreateHolidayInput{
		Date:      date,
		Name:      req.Name,
		Recurring: req.Recurring,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, holiday)
}

// DeleteHoliday removes a holiday
func (h *LeaveHandler) DeleteHoliday(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.holidays.DeleteHoliday(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// TranslateHoliday fills in machine translations of the holiday name
func (h *LeaveHandler) TranslateHoliday(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req TranslateHolidayRequest
	if !h.bind(c, &req) {
		return
	}
	holiday, err := h.holidays.TranslateHoliday(c.Request.Context(), p, id, req.Targets)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, holiday)
}
