// Package payroll implements the payroll record workflow, employee
// notices, the monthly register export and payslip rendering.
package payroll

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRow is one employee line of the payroll register
type RegisterRow struct {
	EmployeeNumber string
	EmployeeName   string
	Department     string
	Currency       string
	Gross          decimal.Decimal
	Deductions     decimal.Decimal
	Net            decimal.Decimal
	Status         string
	Revision       int
}

// Register is the monthly payroll register export
type Register struct {
	OrganizationName string
	Year             int
	Month            int
	Rows             []RegisterRow
	GeneratedAt      time.Time
}

// RegisterWriter encodes a register as a spreadsheet
type RegisterWriter interface {
	WriteRegister(w io.Writer, register Register) error
}

// PayslipLine is one earning or deduction printed on a payslip
type PayslipLine struct {
	Label  string
	Amount decimal.Decimal
}

// Payslip is the data printed on an employee payslip
type Payslip struct {
	OrganizationName string
	EmployeeName     string
	EmployeeNumber   string
	Department       string
	Position         string
	Period           string
	Currency         string
	Earnings         []PayslipLine
	Deductions       []PayslipLine
	Gross            decimal.Decimal
	TotalDeductions  decimal.Decimal
	Net              decimal.Decimal
	Status           string
	Revision         int
	Notes            string
	ApprovedAt       *time.Time
	ConfirmedAt      *time.Time
	GeneratedAt      time.Time
}

// PayslipRenderer turns a payslip into a PDF
type PayslipRenderer interface {
	RenderPayslip(ctx context.Context, slip Payslip) ([]byte, error)
}
