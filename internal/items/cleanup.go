package items

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"campus-find/lostfound-backend/internal/config"
)

// Cleaner closes active items that sat unclaimed past the retention window.
// It runs on a cron schedule inside the worker process.
type Cleaner struct {
	repo   Repository
	cron   *cron.Cron
	cfg    config.CleanupConfig
	logger *zap.Logger
}

func NewCleaner(repo Repository, cfg config.CleanupConfig, logger *zap.Logger) *Cleaner {
	return &Cleaner{
		repo:   repo,
		cron:   cron.New(),
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the schedule and begins running. An unparsable schedule is
// a startup error, not a silent no-op.
func (c *Cleaner) Start() error {
	if _, err := c.cron.AddFunc(c.cfg.Schedule, c.run); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", c.cfg.Schedule, err)
	}

	c.cron.Start()
	c.logger.Info("cleanup worker started",
		zap.String("schedule", c.cfg.Schedule),
		zap.Int("retention_days", c.cfg.RetentionDays))
	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (c *Cleaner) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
	c.logger.Info("cleanup worker stopped")
}

// Run executes one cleanup pass immediately.
func (c *Cleaner) Run(ctx context.Context) (int64, error) {
	return c.repo.CloseStale(ctx, c.cfg.RetentionDays)
}

func (c *Cleaner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	closed, err := c.Run(ctx)
	if err != nil {
		c.logger.Error("cleanup pass failed", zap.Error(err))
		return
	}
	if closed > 0 {
		c.logger.Info("closed stale items", zap.Int64("count", closed))
	}
}
