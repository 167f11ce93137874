package leave

import (
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holiday is a public holiday observed by an organization
type Holiday struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Date         time.Time
	Name         string
	Translations map[string]string
	Recurring    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewHoliday creates a holiday
func NewHoliday(tenantID uuid.UUID, date time.Time, name string, recurring bool) (*Holiday, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Holiday name must be 1-200 characters")
	}
	now := time.Now()
	return &Holiday{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Date:         shared.DateOnly(date),
		Name:         name,
		Translations: make(map[string]string),
		Recurring:    recurring,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NameFor returns the translated name, falling back to the base name
func (h *Holiday) NameFor(locale string) string {
	if n, ok := h.Translations[locale]; ok && n != "" {
		return n
	}
	if i := strings.IndexByte(locale, '-'); i > 0 {
		if n, ok := h.Translations[locale[:i]]; ok && n != "" {
			return n
		}
	}
	return h.Name
}

// SetTranslation stores a translated name
func (h *Holiday) SetTranslation(locale, name string) {
	if h.Translations == nil {
		h.Translations = make(map[string]string)
	}
	h.Translations[locale] = strings.TrimSpace(name)
	h.UpdatedAt = time.Now()
}

// OccursOn reports whether the holiday falls on day. Recurring holidays
// match on month and day in any year.
func (h *Holiday) OccursOn(day time.Time) bool {
	day = shared.DateOnly(day)
	if h.Recurring {
		return h.Date.Month() == day.Month() && h.Date.Day() == day.Day()
	}
	return h.Date.Equal(day)
}

// WorkCalendar decides which days count against a leave balance
type WorkCalendar struct {
	workdays map[time.Weekday]bool
	holidays []*Holiday
}

// NewWorkCalendar builds a calendar. An empty work week means Monday to Friday.
func NewWorkCalendar(workWeek []time.Weekday, holidays []*Holiday) *WorkCalendar {
	if len(workWeek) == 0 {
		workWeek = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	}
	wd := make(map[time.Weekday]bool, len(workWeek))
	for _, d := range workWeek {
		wd[d] = true
	}
	return &WorkCalendar{workdays: wd, holidays: holidays}
}

// IsWorkingDay reports whether day is a workday that is not a holiday
func (c *WorkCalendar) IsWorkingDay(day time.Time) bool {
	if !c.workdays[day.Weekday()] {
		return false
	}
	for _, h := range c.holidays {
		if h.OccursOn(day) {
			return false
		}
	}
	return true
}

var half = decimal.NewFromFloat(0.5)

// LeaveDays counts the working days in r. A half-day flag takes half a
// day off its end of the range when that end is a working day. A single
// day with either flag counts as half a day.
func (c *WorkCalendar) LeaveDays(r shared.DateRange, startHalf, endHalf bool) decimal.Decimal {
	total := decimal.Zero
	r.EachDay(func(day time.Time) {
		if c.IsWorkingDay(day) {
			total = total.Add(decimal.NewFromInt(1))
		}
	})
	if total.IsZero() {
		return total
	}
	if r.Start.Equal(r.End) {
		if startHalf || endHalf {
			return half
		}
		return total
	}
	if startHalf && c.IsWorkingDay(r.Start) {
		total = total.Sub(half)
	}
	if endHalf && c.IsWorkingDay(r.End) {
		total = total.Sub(half)
	}
	return total
}
