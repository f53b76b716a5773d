package scheduler

import (
	"context"
	"time"

	"github.com/phishblock/phishguard/internal/cache"
	"github.com/phishblock/phishguard/internal/logger"
)

// CacheJanitor periodically sweeps expired prediction-cache entries. The
// cache itself never self-schedules; this is the external scheduler the
// core expects.
type CacheJanitor struct {
	cache    *cache.Cache
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewCacheJanitor(c *cache.Cache, log logger.Logger, interval time.Duration) *CacheJanitor {
	return &CacheJanitor{
		cache:    c,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (j *CacheJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := j.cache.Cleanup(); removed > 0 {
					j.logger.Debug("cache cleanup",
						logger.Int("removed", removed),
						logger.Int("remaining", j.cache.Len()))
				}
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the janitor.
func (j *CacheJanitor) Stop() {
	close(j.stopCh)
}
