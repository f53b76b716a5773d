package scheduler

import (
	"context"
	"time"

	"github.com/phishblock/phishguard/internal/engine"
	"github.com/phishblock/phishguard/internal/logger"
	"github.com/phishblock/phishguard/internal/store"
)

// StatePersister periodically writes the whitelist, threshold config and
// running counters to the store, and flushes once more on Stop so a clean
// shutdown loses nothing.
type StatePersister struct {
	engine   *engine.Engine
	store    store.Store
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewStatePersister(e *engine.Engine, st store.Store, log logger.Logger, interval time.Duration) *StatePersister {
	return &StatePersister{
		engine:   e,
		store:    st,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins periodic persistence.
func (p *StatePersister) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		defer close(p.doneCh)
		for {
			select {
			case <-ticker.C:
				if err := p.Persist(ctx); err != nil {
					p.logger.Warn("periodic state persistence failed",
						logger.Error(err))
				}
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and performs a final best-effort flush.
func (p *StatePersister) Stop() {
	close(p.stopCh)
	<-p.doneCh

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Persist(flushCtx); err != nil {
		p.logger.Warn("final state flush failed", logger.Error(err))
	}
}

// Persist writes all persisted state in one pass. Partial failures are
// aggregated into the first error but every save is attempted.
func (p *StatePersister) Persist(ctx context.Context) error {
	var firstErr error

	if err := p.store.SaveWhitelist(ctx, p.engine.Whitelist().All()); err != nil {
		firstErr = err
	}
	if err := p.store.SaveThresholds(ctx, p.engine.Thresholds().Current()); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := p.store.SaveCounters(ctx, p.engine.Counters()); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
