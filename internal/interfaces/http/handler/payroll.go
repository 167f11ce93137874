package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	apppayroll "github.com/We2399/idea-launcher-pro-sub001/internal/application/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// PayrollRecordUseCases runs the payroll approval workflow
type PayrollRecordUseCases interface {
	CreatePayrollRecord(ctx context.Context, p identity.Principal, input apppayroll.CreateRecordInput) (*payroll.PayrollRecord, error)
	UpdateDraft(ctx context.Context, p identity.Principal, id uuid.UUID, input apppayroll.UpdateDraftInput) (*payroll.PayrollRecord, error)
	DeleteDraft(ctx context.Context, p identity.Principal, id uuid.UUID) error
	SubmitForApproval(ctx context.Context, p identity.Principal, id uuid.UUID) (*payroll.PayrollRecord, error)
	ReturnToDraft(ctx context.Context, p identity.Principal, id uuid.UUID, note string) (*payroll.PayrollRecord, error)
	ApprovePayroll(ctx context.Context, p identity.Principal, id uuid.UUID) (*payroll.PayrollRecord, error)
	ResolveDispute(ctx context.Context, p identity.Principal, id uuid.UUID, input apppayroll.ResolveDisputeInput) (*payroll.PayrollRecord, error)
	ConfirmPayroll(ctx context.Context, p identity.Principal, id uuid.UUID) (*payroll.PayrollRecord, error)
	DisputePayroll(ctx context.Context, p identity.Principal, id uuid.UUID, reason string) (*payroll.PayrollRecord, error)
	GetPayrollRecord(ctx context.Context, p identity.Principal, id uuid.UUID) (*payroll.PayrollRecord, error)
	ListPayrollRecords(ctx context.Context, p identity.Principal, input apppayroll.ListRecordsInput) (*shared.Paginated[*payroll.PayrollRecord], error)
}

// PayrollReportUseCases serves notices, the register and payslips
type PayrollReportUseCases interface {
	ListNotifications(ctx context.Context, p identity.Principal, unreadOnly bool, page, pageSize int) (*shared.Paginated[*payroll.Notification], error)
	MarkNotificationRead(ctx context.Context, p identity.Principal, id uuid.UUID) (*payroll.Notification, error)
	ExportPayrollRegister(ctx context.Context, p identity.Principal, year, month int, w io.Writer) error
	RenderPayslip(ctx context.Context, p identity.Principal, id uuid.UUID) ([]byte, string, error)
}

// PayrollHandler serves payroll records and their reports
type PayrollHandler struct {
	BaseHandler
	records PayrollRecordUseCases
	reports PayrollReportUseCases
}

// NewPayrollHandler creates a new payroll handler
func NewPayrollHandler(records PayrollRecordUseCases, reports PayrollReportUseCases) *PayrollHandler {
	return &PayrollHandler{records: records, reports: reports}
}

// Create prepares a draft record
func (h *PayrollHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreatePayrollRequest
	if !h.bind(c, &req) {
		return
	}
	rec, err := h.records.CreatePayrollRecord(c.Request.Context(), p, apppayroll.CreateRecordInput{
		EmployeeMemberID: uuid.MustParse(req.EmployeeMemberID),
		Year:             req.Year,
		Month:            req.Month,
		Currency:         req.Currency,
		Items:            toLineItemInputs(req.Items),
		Notes:            req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPayrollResponse(rec))
}

// UpdateDraft replaces a draft's line items
func (h *PayrollHandler) UpdateDraft(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePayrollDraftRequest
	if !h.bind(c, &req) {
		return
	}
	rec, err := h.records.UpdateDraft(c.Request.Context(), p, id, apppayroll.UpdateDraftInput{
		Items: toLineItemInputs(req.Items),
		Notes: req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPayrollResponse(rec))
}

// Delete removes a draft
func (h *PayrollHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.records.DeleteDraft(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get returns one record
func (h *PayrollHandler) Get(c *gin.Context) {
	h.transition(c, h.records.GetPayrollRecord)
}

// Submit hands a draft to an admin for approval
func (h *PayrollHandler) Submit(c *gin.Context) {
	h.transition(c, h.records.SubmitForApproval)
}

// Approve sends the record to the employee
func (h *PayrollHandler) Approve(c *gin.Context) {
	h.transition(c, h.records.ApprovePayroll)
}

// Confirm is the employee accepting their payroll
func (h *PayrollHandler) Confirm(c *gin.Context) {
	h.transition(c, h.records.ConfirmPayroll)
}

// Return sends a pending record back to draft
func (h *PayrollHandler) Return(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req ReturnPayrollRequest
	if c.Request.ContentLength > 0 && !h.bind(c, &req) {
		return
	}
	rec, err := h.records.ReturnToDraft(c.Request.Context(), p, id, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPayrollResponse(rec))
}

// Dispute is the employee objecting to their payroll
func (h *PayrollHandler) Dispute(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req DisputePayrollRequest
	if !h.bind(c, &req) {
		return
	}
	rec, err := h.records.DisputePayroll(c.Request.Context(), p, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPayrollResponse(rec))
}

// Resolve settles a dispute
func (h *PayrollHandler) Resolve(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req ResolveDisputeRequest
	if !h.bind(c, &req) {
		return
	}
	input := apppayroll.ResolveDisputeInput{Action: req.Action, Note: req.Note}
	if len(req.Items) > 0 {
		input.Items = toLineItemInputs(req.Items)
	}
	rec, err := h.records.ResolveDispute(c.Request.Context(), p, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPayrollResponse(rec))
}

func (h *PayrollHandler) transition(c *gin.Context, fn func(context.Context, identity.Principal, uuid.UUID) (*payroll.PayrollRecord, error)) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	rec, err := fn(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPayrollResponse(rec))
}

// List returns payroll records. Employees only see their own sent records.
func (h *PayrollHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q ListPayrollQuery
	if !h.bindQuery(c, &q) {
		return
	}
	input := apppayroll.ListRecordsInput{
		Statuses:  splitList(q.Status),
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	input.EmployeeMemberID, _ = parseOptionalUUID(q.EmployeeMemberID)
	if q.Year != 0 {
		input.Year = &q.Year
	}
	if q.Month != 0 {
		input.Month = &q.Month
	}
	page, err := h.records.ListPayrollRecords(c.Request.Context(), p, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginate(&h.BaseHandler, c, page, toPayrollResponse)
}

// Notifications lists the caller's payroll notices
func (h *PayrollHandler) Notifications(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q dto.ListRequest
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()
	unreadOnly, _ := strconv.ParseBool(c.Query("unread_only"))
	page, err := h.reports.ListNotifications(c.Request.Context(), p, unreadOnly, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginate(&h.BaseHandler, c, page, toPayrollNotificationResponse)
}

// MarkNotificationRead marks a notice read
func (h *PayrollHandler) MarkNotificationRead(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	n, err := h.reports.MarkNotificationRead(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPayrollNotificationResponse(n))
}

// Register downloads the month's payroll register as a spreadsheet. The
// workbook is buffered so that a failure still produces a JSON error.
func (h *PayrollHandler) Register(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q RegisterQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var buf bytes.Buffer
	if err := h.reports.ExportPayrollRegister(c.Request.Context(), p, q.Year, q.Month, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	attachment(c, fmt.Sprintf("payroll-register-%04d-%02d.xlsx", q.Year, q.Month), contentTypeXLSX, buf.Bytes())
}

// Payslip downloads a record's PDF payslip
func (h *PayrollHandler) Payslip(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.reports.RenderPayslip(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	attachment(c, filename, contentTypePDF, pdf)
}

func attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, body)
}
