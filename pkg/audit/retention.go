package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionWorker purges audit events older than the retention period on a
// cron schedule. Purging is idempotent, so every replica may run one.
type RetentionWorker struct {
	store     *Store
	retention time.Duration
	schedule  string
	loc       *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewRetentionWorker creates a RetentionWorker for cfg.
func NewRetentionWorker(store *Store, cfg Config, logger *slog.Logger) *RetentionWorker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &RetentionWorker{
		store:     store,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		schedule:  cfg.RetentionSchedule,
		loc:       cfg.Location,
		logger:    logger.With("component", "audit-retention"),
		now:       time.Now,
	}
	if w.schedule == "" {
		w.schedule = DefaultConfig().RetentionSchedule
	}
	if w.loc == nil {
		w.loc = time.UTC
	}
	return w
}

// Start schedules the purge and returns the running cron, which the caller
// stops on shutdown. It returns nil when there is no store or events are
// kept forever.
func (w *RetentionWorker) Start(ctx context.Context) (*cron.Cron, error) {
	days := int(w.retention / (24 * time.Hour))
	if w.store == nil || w.retention <= 0 {
		w.logger.Info("audit retention disabled", "hasStore", w.store != nil, "retentionDays", days)
		return nil, nil
	}

	cl := cronLogger{w.logger}
	c := cron.New(
		cron.WithLocation(w.loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule audit retention %q: %w", w.schedule, err)
	}
	c.Start()
	w.logger.Info("audit retention scheduled", "retentionDays", days, "schedule", w.schedule, "tz", w.loc.String())
	return c, nil
}

// RunOnce purges expired events now and returns how many were deleted.
func (w *RetentionWorker) RunOnce(ctx context.Context) int64 {
	cutoff := w.now().UTC().Add(-w.retention)
	n, err := w.store.DeleteOlderThan(ctx, cutoff)
	switch {
	case err != nil:
		w.logger.Error("audit retention purge failed", "error", err)
		return 0
	case n > 0:
		w.logger.Info("audit events purged", "deleted", n, "cutoff", cutoff.Format(time.RFC3339))
	}
	return n
}

// cronLogger adapts slog to cron.Logger. Cron's routine wakeups are logged
// at debug level.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Debug("cron: "+msg, kv...)
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error("cron: "+msg, append(kv, "error", err)...)
}
