package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/application/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePDF struct {
	req *RenderRequest
	err error
}

func (c *capturePDF) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	c.req = req
	if c.err != nil {
		return nil, c.err
	}
	return &RenderResult{PDFData: []byte("%PDF-fake"), PageCount: 1}, nil
}

func (c *capturePDF) Close() error { return nil }

func sampleSlip() payroll.Payslip {
	approved := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	return payroll.Payslip{
		OrganizationName: "Acme <HK>",
		EmployeeName:     "Ana Cruz",
		EmployeeNumber:   "E001",
		Department:       "Ops",
		Period:           "2026-03",
		Currency:         "HKD",
		Earnings: []payroll.PayslipLine{
			{Label: "Basic salary", Amount: decimal.NewFromInt(21000)},
			{Label: "Overtime", Amount: decimal.RequireFromString("1250.5")},
		},
		Deductions:      []payroll.PayslipLine{{Label: "MPF", Amount: decimal.NewFromInt(1500)}},
		Gross:           decimal.RequireFromString("22250.5"),
		TotalDeductions: decimal.NewFromInt(1500),
		Net:             decimal.RequireFromString("20750.5"),
		Status:          "sent_to_employee",
		Revision:        2,
		ApprovedAt:      &approved,
	}
}

func TestPayslipRenderer_RenderHTML(t *testing.T) {
	r := NewPayslipRenderer(&capturePDF{}, time.Second, nil)

	doc, err := r.RenderHTML(sampleSlip())
	require.NoError(t, err)

	assert.Contains(t, doc, "Acme &lt;HK&gt;")
	assert.Contains(t, doc, "Ana Cruz (E001)")
	assert.Contains(t, doc, "21,000.00")
	assert.Contains(t, doc, "1,250.50")
	assert.Contains(t, doc, "Net pay HKD 20,750.50")
	assert.Contains(t, doc, "Issued")
	assert.Contains(t, doc, "2 Apr 2026")
	// empty position falls back to a dash
	assert.Contains(t, doc, `<td class="label">Position</td><td>-</td>`)
}

func TestPayslipRenderer_OmitsEmptyDeductions(t *testing.T) {
	slip := sampleSlip()
	slip.Deductions = nil
	doc, err := NewPayslipRenderer(&capturePDF{}, time.Second, nil).RenderHTML(slip)
	require.NoError(t, err)
	assert.NotContains(t, doc, "Total deductions")
}

func TestPayslipRenderer_RenderPayslip(t *testing.T) {
	pdf := &capturePDF{}
	r := NewPayslipRenderer(pdf, 5*time.Second, nil)

	data, err := r.RenderPayslip(context.Background(), sampleSlip())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), data)

	require.NotNil(t, pdf.req)
	assert.Equal(t, "Payslip 2026-03", pdf.req.Title)
	assert.Equal(t, 5*time.Second, pdf.req.Timeout)
	assert.Equal(t, DefaultMargins(), pdf.req.Margins)
	assert.Contains(t, pdf.req.FooterHTML, "pageNumber")
}

func TestPayslipRenderer_PropagatesRenderError(t *testing.T) {
	boom := NewRenderError(ErrCodeRenderTimeout, "timed out", context.DeadlineExceeded)
	r := NewPayslipRenderer(&capturePDF{err: boom}, time.Second, nil)

	_, err := r.RenderPayslip(context.Background(), sampleSlip())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFormatMoneyRaw(t *testing.T) {
	assert.Equal(t, "0.00", formatMoneyRaw(decimal.Zero))
	assert.Equal(t, "999.90", formatMoneyRaw("999.9"))
	assert.Equal(t, "1,234,567.00", formatMoneyRaw(1234567))
	assert.Equal(t, "-12,000.50", formatMoneyRaw(decimal.RequireFromString("-12000.5")))
	assert.Equal(t, "USD 10.00", formatMoney("USD", 10))
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Draft", statusText("draft"))
	assert.Equal(t, "Pending approval", statusText("pending_admin_approval"))
	assert.Equal(t, "Issued", statusText("sent_to_employee"))
	assert.Equal(t, "Confirmed", statusText("confirmed"))
	assert.Equal(t, "Disputed", statusText("disputed"))
}
