package workers

import (
	"context"
	"time"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/tenant"
)

// RefreshWorker periodically reloads the in-memory tenant cache so that
// tenant configuration edits take effect without a restart.
type RefreshWorker struct {
	cache    *tenant.Cache
	interval time.Duration

	logger *logger.Logger

	stop chan struct{}
}

func NewRefreshWorker(cache *tenant.Cache, interval time.Duration, logger *logger.Logger) *RefreshWorker {
	return &RefreshWorker{
		cache:    cache,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Run starts the periodic reload in a background goroutine and returns
// immediately.
func (r *RefreshWorker) Run() {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), r.interval)
				if err := r.cache.Reload(ctx); err != nil {
					r.logger.Err(err).Msg("tenant cache reload failed")
				}
				cancel()
			case <-r.stop:
				return
			}
		}
	}()
}

// Close stops the reload loop.
func (r *RefreshWorker) Close() {
	close(r.stop)
}
