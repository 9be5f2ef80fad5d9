package workers

import (
	"context"
	"time"

	"github.com/tiplinehq/tipline/internal/logger"
)

// ExpiredDeleter is the slice of the submission repository the cleanup
// worker needs.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CleanupWorker periodically deletes submissions past their expiration
// date, together with their answers, files and recipient tips.
type CleanupWorker struct {
	submissions ExpiredDeleter
	interval    time.Duration

	now    func() time.Time
	logger *logger.Logger

	stop chan struct{}
}

func NewCleanupWorker(submissions ExpiredDeleter, interval time.Duration, logger *logger.Logger) *CleanupWorker {
	return &CleanupWorker{
		submissions: submissions,
		interval:    interval,
		now:         time.Now,
		logger:      logger,
		stop:        make(chan struct{}),
	}
}

// Run starts the periodic sweep in a background goroutine and returns
// immediately.
func (c *CleanupWorker) Run() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// Close stops the sweep loop.
func (c *CleanupWorker) Close() {
	close(c.stop)
}

func (c *CleanupWorker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), c.interval)
	defer cancel()

	deleted, err := c.submissions.DeleteExpired(ctx, c.now().UTC())
	if err != nil {
		c.logger.Err(err).Msg("expired submission sweep failed")
		return
	}
	if deleted > 0 {
		c.logger.Info().Int64("deleted", deleted).Msg("expired submissions removed")
	}
}
