package scheduler

import "errors"

var (
	// ErrInvalidSchedule is returned for cron expressions that do not parse
	ErrInvalidSchedule = errors.New("invalid cron schedule")

	// ErrDuplicateJob is returned when two jobs share a name
	ErrDuplicateJob = errors.New("job already registered")

	// ErrAlreadyRunning is returned when registering after Start
	ErrAlreadyRunning = errors.New("scheduler is already running")
)
