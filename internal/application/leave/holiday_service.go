package leave

import (
	"context"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocaleResolver normalizes locale tags against the supported set
type LocaleResolver interface {
	Match(raw string) string
	Supported(tag string) bool
	Locales() []string
}

// HolidayService manages the organization holiday calendar
type HolidayService struct {
	holidays   leave.HolidayRepository
	translator HolidayTranslator
	locales    LocaleResolver
	logger     *zap.Logger
}

// NewHolidayService creates a new holiday service. translator may be nil
// when no LLM gateway is configured.
func NewHolidayService(holidays leave.HolidayRepository, translator HolidayTranslator, locales LocaleResolver, logger *zap.Logger) *HolidayService {
	return &HolidayService{holidays: holidays, translator: translator, locales: locales, logger: logger}
}

// CreateHoliday adds a holiday (hr+)
func (s *HolidayService) CreateHoliday(ctx context.Context, p identity.Principal, input CreateHolidayInput) (*HolidayView, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	h, err := leave.NewHoliday(p.TenantID, input.Date, input.Name, input.Recurring)
	if err != nil {
		return nil, err
	}
	if err := s.holidays.Create(ctx, h); err != nil {
		return nil, err
	}
	s.logger.Info("Holiday created",
		zap.String("holiday_id", h.ID.String()),
		zap.String("date", h.Date.Format(shared.DateLayout)),
		zap.Bool("recurring", h.Recurring))
	v := toHolidayView(h, "")
	return &v, nil
}

// ListHolidays returns the holidays falling in year, recurring ones
// included, with names resolved for locale
func (s *HolidayService) ListHolidays(ctx context.Context, year int, locale string) ([]HolidayView, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	holidays, err := s.holidays.FindBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if s.locales != nil {
		locale = s.locales.Match(locale)
	}
	views := make([]HolidayView, 0, len(holidays))
	for _, h := range holidays {
		v := toHolidayView(h, locale)
		if h.Recurring {
			v.Date = time.Date(year, h.Date.Month(), h.Date.Day(), 0, 0, 0, 0, time.UTC).Format(shared.DateLayout)
		}
		views = append(views, v)
	}
	return views, nil
}

// DeleteHoliday removes a holiday (hr+)
func (s *HolidayService) DeleteHoliday(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	if err := p.Require(identity.RoleHR); err != nil {
		return err
	}
	if _, err := s.holidays.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.holidays.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Holiday deleted", zap.String("holiday_id", id.String()))
	return nil
}

// TranslateHoliday fills the holiday's translations for the target
// locales through the LLM gateway (hr+). An empty target list means every
// supported locale.
func (s *HolidayService) TranslateHoliday(ctx context.Context, p identity.Principal, id uuid.UUID, targets []string) (*HolidayView, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	if s.translator == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Holiday translation is not configured")
	}
	locales, err := s.targetLocales(targets)
	if err != nil {
		return nil, err
	}
	h, err := s.holidays.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	names, err := s.translator.Translate(ctx, h.Name, locales)
	if err != nil {
		s.logger.Warn("Holiday translation failed",
			zap.String("holiday_id", id.String()),
			zap.Error(err))
		return nil, err
	}
	for _, locale := range locales {
		if name, ok := names[locale]; ok {
			h.SetTranslation(locale, name)
		}
	}
	if err := s.holidays.Update(ctx, h); err != nil {
		return nil, err
	}
	s.logger.Info("Holiday translated",
		zap.String("holiday_id", id.String()),
		zap.Strings("locales", locales),
		zap.Int("translated", len(names)))
	v := toHolidayView(h, "")
	return &v, nil
}

func (s *HolidayService) targetLocales(targets []string) ([]string, error) {
	if s.locales == nil {
		return targets, nil
	}
	if len(targets) == 0 {
		return s.locales.Locales(), nil
	}
	out := make([]string, 0, len(targets))
	seen := make(map[string]bool, len(targets))
	for _, raw := range targets {
		raw = strings.TrimSpace(raw)
		if !s.locales.Supported(raw) {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unsupported locale: "+raw)
		}
		if !seen[raw] {
			seen[raw] = true
			out = append(out, raw)
		}
	}
	return out, nil
}
