package printing

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders HTML templates with the formatting helpers the
// payslip layout uses.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// NewTemplateEngine creates an engine with the default helpers
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{funcMap: template.FuncMap{
		"formatMoney":    formatMoney,
		"formatMoneyRaw": formatMoneyRaw,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"statusText":     statusText,
		"title":          titleCase,
		"upper":          strings.ToUpper,
		"default":        defaultFunc,
	}}
}

// Parse compiles a named template with the helpers attached
func (e *TemplateEngine) Parse(name, content string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "parse template "+name, err)
	}
	return tmpl, nil
}

// Execute renders tmpl with data
func (e *TemplateEngine) Execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "execute template "+tmpl.Name(), err)
	}
	return buf.String(), nil
}

// formatMoney prefixes the ISO currency code
// Example: ("USD", 1234.5) -> "USD 1,234.50"
func formatMoney(currency string, v any) string {
	return strings.TrimSpace(currency + " " + formatMoneyRaw(v))
}

// formatMoneyRaw adds thousand separators and two decimals
// Example: 1234.56 -> "1,234.56"
func formatMoneyRaw(v any) string {
	d := toDecimal(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")
	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return sign + result.String() + "." + decPart
}

func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006")
}

func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006 15:04 MST")
}

// statusText turns a payroll status into a label
func statusText(status string) string {
	switch status {
	case "pending_admin_approval":
		return "Pending approval"
	case "sent_to_employee":
		return "Issued"
	}
	return titleCase(strings.ReplaceAll(status, "_", " "))
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func defaultFunc(def, v any) any {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return def
	}
	if v == nil {
		return def
	}
	return v
}

func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func toTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case string:
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02", val); err == nil {
			return t
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
