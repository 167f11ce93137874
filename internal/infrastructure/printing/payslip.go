package printing

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/application/payroll"
	"go.uber.org/zap"
)

//go:embed templates/payslip.html
var payslipTemplate string

const payslipFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#888;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// PayslipRenderer implements payroll.PayslipRenderer on top of a PDFRenderer
type PayslipRenderer struct {
	engine  *TemplateEngine
	tmpl    *template.Template
	pdf     PDFRenderer
	timeout time.Duration
	logger  *zap.Logger
}

var _ payroll.PayslipRenderer = (*PayslipRenderer)(nil)

// NewPayslipRenderer parses the embedded payslip layout. It panics only if
// the embedded template is malformed.
func NewPayslipRenderer(pdf PDFRenderer, timeout time.Duration, logger *zap.Logger) *PayslipRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := NewTemplateEngine()
	tmpl, err := engine.Parse("payslip", payslipTemplate)
	if err != nil {
		panic(err)
	}
	return &PayslipRenderer{engine: engine, tmpl: tmpl, pdf: pdf, timeout: timeout, logger: logger}
}

// RenderHTML executes the payslip template without converting it
func (r *PayslipRenderer) RenderHTML(slip payroll.Payslip) (string, error) {
	return r.engine.Execute(r.tmpl, slip)
}

// RenderPayslip renders the payslip as a PDF document
func (r *PayslipRenderer) RenderPayslip(ctx context.Context, slip payroll.Payslip) ([]byte, error) {
	doc, err := r.RenderHTML(slip)
	if err != nil {
		return nil, err
	}
	res, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       doc,
		Title:      fmt.Sprintf("Payslip %s", slip.Period),
		Margins:    DefaultMargins(),
		FooterHTML: payslipFooter,
		Timeout:    r.timeout,
	})
	if err != nil {
		r.logger.Warn("payslip render failed",
			zap.String("period", slip.Period),
			zap.String("employee_number", slip.EmployeeNumber),
			zap.Error(err))
		return nil, err
	}
	return res.PDFData, nil
}
