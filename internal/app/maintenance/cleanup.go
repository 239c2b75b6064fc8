package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/clinicore/clinicore/internal/services"
	"github.com/clinicore/clinicore/pkg/logger"
)

const (
	defaultAuditRetentionDays = 365
	defaultAuditSpec          = "@daily"
	defaultSweepSpec          = "@hourly"
)

// Sweeper removes expired entries from a cache and reports how many were dropped.
type Sweeper interface {
	Sweep() int
}

// Cleaner coordinates background maintenance: enforcing audit retention and
// sweeping expired permission-cache entries.
type Cleaner struct {
	audit     *services.AuditService
	sweeper   Sweeper
	cron      *cron.Cron
	log       *zap.Logger
	retention int

	auditSchedule string
	sweepSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithAuditSchedule overrides the cron expression for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// WithSweeper attaches a cache sweeper job.
func WithSweeper(s Sweeper) Option {
	return func(cleaner *Cleaner) {
		cleaner.sweeper = s
	}
}

// WithSweepSchedule overrides the cron expression for cache sweeping.
func WithSweepSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sweepSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil audit service
// results in the retention job being skipped.
func NewCleaner(audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		audit:         audit,
		retention:     defaultAuditRetentionDays,
		auditSchedule: defaultAuditSpec,
		sweepSchedule: defaultSweepSpec,
		log:           logger.WithComponent("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers jobs with the cron scheduler and launches it if at least one job is configured.
func (c *Cleaner) Start() error {
	registered := false

	if c.audit != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			if removed, err := c.audit.CleanupOlderThan(context.Background(), c.retention); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			} else if removed > 0 {
				c.log.Info("audit retention enforced", zap.Int64("removed", removed))
			}
		}); err != nil {
			return err
		}
		registered = true
	}

	if c.sweeper != nil {
		if _, err := c.cron.AddFunc(c.sweepSchedule, func() {
			if dropped := c.sweeper.Sweep(); dropped > 0 {
				c.log.Debug("cache sweep", zap.Int("dropped", dropped))
			}
		}); err != nil {
			return err
		}
		registered = true
	}

	if registered {
		c.cron.Start()
	}
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured maintenance routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.audit != nil && c.retention > 0 {
		if _, err := c.audit.CleanupOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.sweeper != nil {
		c.sweeper.Sweep()
	}

	return errs
}
