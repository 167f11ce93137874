package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/We2399/idea-launcher-pro-sub001/internal/application/payroll"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// RegisterSheet is the worksheet holding the register rows
const RegisterSheet = "Register"

var registerHeader = []any{
	"Employee No", "Name", "Department", "Currency", "Gross", "Deductions", "Net", "Status", "Revision",
}

// amount columns E:G
const (
	firstAmountCol = 5
	lastAmountCol  = 7
)

// ExcelRegisterWriter implements payroll.RegisterWriter with excelize
type ExcelRegisterWriter struct{}

// NewExcelRegisterWriter creates the writer
func NewExcelRegisterWriter() *ExcelRegisterWriter {
	return &ExcelRegisterWriter{}
}

var _ payroll.RegisterWriter = (*ExcelRegisterWriter)(nil)

// WriteRegister writes one row per record, then one totals row per
// currency, and streams the workbook to w.
func (x *ExcelRegisterWriter) WriteRegister(w io.Writer, register payroll.Register) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RegisterSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := newRegisterStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetCellValue(RegisterSheet, "A1",
		fmt.Sprintf("%s payroll register %04d-%02d", register.OrganizationName, register.Year, register.Month)); err != nil {
		return err
	}
	if err := f.SetCellStyle(RegisterSheet, "A1", "A1", styles.title); err != nil {
		return err
	}

	row := 3
	if err := setRow(f, row, registerHeader); err != nil {
		return err
	}
	if err := styleRow(f, row, styles.header); err != nil {
		return err
	}
	firstData := row + 1

	totals := make(map[string]*currencyTotal)
	for _, r := range register.Rows {
		row++
		if err := setRow(f, row, []any{
			r.EmployeeNumber, r.EmployeeName, r.Department, r.Currency,
			r.Gross.InexactFloat64(), r.Deductions.InexactFloat64(), r.Net.InexactFloat64(),
			r.Status, r.Revision,
		}); err != nil {
			return err
		}
		t, ok := totals[r.Currency]
		if !ok {
			t = &currencyTotal{}
			totals[r.Currency] = t
		}
		t.add(r)
	}
	if row >= firstData {
		if err := styleAmounts(f, firstData, row, styles.amount); err != nil {
			return err
		}
	}

	currencies := make([]string, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		row++
		t := totals[c]
		if err := setRow(f, row, []any{
			"Total", fmt.Sprintf("%d employee(s)", t.count), "", c,
			t.gross.InexactFloat64(), t.deductions.InexactFloat64(), t.net.InexactFloat64(),
		}); err != nil {
			return err
		}
		if err := styleRow(f, row, styles.total); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(RegisterSheet, "A", "D", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(RegisterSheet, "E", "G", 14); err != nil {
		return err
	}
	if err := f.SetPanes(RegisterSheet, &excelize.Panes{
		Freeze: true, YSplit: 3, TopLeftCell: "A4", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Payroll register %04d-%02d", register.Year, register.Month),
		Creator: register.OrganizationName,
		Created: register.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type currencyTotal struct {
	count      int
	gross      decimal.Decimal
	deductions decimal.Decimal
	net        decimal.Decimal
}

func (t *currencyTotal) add(r payroll.RegisterRow) {
	t.count++
	t.gross = t.gross.Add(r.Gross)
	t.deductions = t.deductions.Add(r.Deductions)
	t.net = t.net.Add(r.Net)
}

type registerStyles struct {
	title, header, amount, total int
}

func newRegisterStyles(f *excelize.File) (registerStyles, error) {
	var s registerStyles
	var err error
	amountFmt := "#,##0.00"
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	}); err != nil {
		return s, err
	}
	if s.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt}); err != nil {
		return s, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &amountFmt,
		Border:       []excelize.Border{{Type: "top", Color: "000000", Style: 1}},
	}); err != nil {
		return s, err
	}
	return s, nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(RegisterSheet, cell, &values)
}

func styleRow(f *excelize.File, row, style int) error {
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(len(registerHeader), row)
	return f.SetCellStyle(RegisterSheet, from, to, style)
}

func styleAmounts(f *excelize.File, fromRow, toRow, style int) error {
	from, _ := excelize.CoordinatesToCellName(firstAmountCol, fromRow)
	to, _ := excelize.CoordinatesToCellName(lastAmountCol, toRow)
	return f.SetCellStyle(RegisterSheet, from, to, style)
}
