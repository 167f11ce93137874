// Package scheduler runs the background jobs (reminders, invitation expiry,
// leave year rollover) on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/telemetry"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled unit of work
type Job struct {
	Name string
	// Spec is a standard five-field cron expression or a descriptor such as @hourly
	Spec string
	Run  func(ctx context.Context) error
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// JobTimeout bounds a single run
	JobTimeout time.Duration
	// Location evaluates schedules, defaults to UTC
	Location *time.Location
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		JobTimeout: 10 * time.Minute,
		Location:   time.UTC,
	}
}

// CronTrigger owns the cron runner. A job never overlaps with itself: a run
// that is still going when the next tick fires causes that tick to be skipped.
type CronTrigger struct {
	config  CronTriggerConfig
	cron    *cron.Cron
	metrics *telemetry.Metrics
	logger  *zap.Logger

	mu        sync.Mutex
	jobs      map[string]cron.EntryID
	isRunning bool
	baseCtx   context.Context
	cancel    context.CancelFunc
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, metrics *telemetry.Metrics, logger *zap.Logger) *CronTrigger {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultCronTriggerConfig().JobTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger: logger}
	return &CronTrigger{
		config:  config,
		metrics: metrics,
		logger:  logger,
		jobs:    make(map[string]cron.EntryID),
		cron: cron.New(
			cron.WithLocation(config.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

// Register adds a job. An empty spec disables the job.
func (c *CronTrigger) Register(job Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return ErrAlreadyRunning
	}
	if _, ok := c.jobs[job.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}
	if job.Spec == "" {
		c.logger.Info("Scheduled job disabled", zap.String("job", job.Name))
		return nil
	}
	id, err := c.cron.AddFunc(job.Spec, func() { c.execute(job) })
	if err != nil {
		return fmt.Errorf("%w %q for %s: %v", ErrInvalidSchedule, job.Spec, job.Name, err)
	}
	c.jobs[job.Name] = id
	return nil
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.baseCtx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))
	c.isRunning = true
	c.cron.Start()

	for name, id := range c.jobs {
		c.logger.Info("Scheduled job registered",
			zap.String("job", name),
			zap.Time("next_run", c.cron.Entry(id).Next))
	}
	return nil
}

// Stop stops scheduling and waits for running jobs, bounded by ctx
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	cancel := c.cancel
	c.mu.Unlock()

	done := c.cron.Stop().Done()
	select {
	case <-done:
		cancel()
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// RunNow executes a registered or ad hoc job immediately, outside the schedule
func (c *CronTrigger) RunNow(ctx context.Context, job Job) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.JobTimeout)
	defer cancel()
	return c.run(ctx, job)
}

// Jobs returns the names of scheduled jobs
func (c *CronTrigger) Jobs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.jobs))
	for name := range c.jobs {
		names = append(names, name)
	}
	return names
}

func (c *CronTrigger) execute(job Job) {
	c.mu.Lock()
	base := c.baseCtx
	c.mu.Unlock()
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithTimeout(base, c.config.JobTimeout)
	defer cancel()
	_ = c.run(ctx, job)
}

func (c *CronTrigger) run(ctx context.Context, job Job) error {
	start := time.Now()
	err := job.Run(ctx)
	elapsed := time.Since(start)
	c.metrics.JobRun(job.Name, elapsed, err)
	if err != nil {
		c.logger.Error("Scheduled job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return err
	}
	c.logger.Info("Scheduled job completed",
		zap.String("job", job.Name),
		zap.Duration("duration", elapsed))
	return nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, zap.Error(err), zap.Any("details", keysAndValues))
}
