// Package leave implements the leave workflows: leave types, yearly
// balances, requests with their approval chain, and the holiday calendar.
package leave

import "context"

// HolidayTranslator translates a holiday name into the target locales
type HolidayTranslator interface {
	Translate(ctx context.Context, name string, targets []string) (map[string]string, error)
}
