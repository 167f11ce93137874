// Package printing renders payslips to PDF. HTML comes from an embedded
// html/template and is printed by headless Chrome through chromedp.
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	payslips := NewPayslipRenderer(renderer, 30*time.Second, logger)
//	pdf, err := payslips.RenderPayslip(ctx, slip)
package printing
