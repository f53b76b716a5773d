package scheduler

import (
	"context"
	"time"

	"github.com/phishblock/phishguard/internal/logger"
	"github.com/phishblock/phishguard/internal/policy"
)

// PolicyReloader refreshes the popular-domain set from its YAML file on a
// cadence, plus on demand through the trigger channel. A failed reload
// keeps the previous set.
type PolicyReloader struct {
	path     string
	popular  *policy.PopularDomains
	logger   logger.Logger
	interval time.Duration
	trigger  chan struct{}
	stopCh   chan struct{}
}

func NewPolicyReloader(
	path string,
	popular *policy.PopularDomains,
	log logger.Logger,
	interval time.Duration,
	trigger chan struct{},
) *PolicyReloader {
	return &PolicyReloader{
		path:     path,
		popular:  popular,
		logger:   log,
		interval: interval,
		trigger:  trigger,
		stopCh:   make(chan struct{}),
	}
}

// Start loads the policy file immediately, then refreshes periodically.
// The initial load failing is an error so a bad file path is visible at
// startup rather than on the first tick.
func (r *PolicyReloader) Start(ctx context.Context) error {
	if err := r.Reload(); err != nil {
		return err
	}

	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.reloadAndLog()
			case <-r.trigger:
				r.logger.Info("manual policy reload triggered")
				r.reloadAndLog()
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop stops the reloader.
func (r *PolicyReloader) Stop() {
	close(r.stopCh)
}

// Reload replaces the popular set from the file.
func (r *PolicyReloader) Reload() error {
	domains, err := policy.LoadFile(r.path)
	if err != nil {
		return err
	}
	r.popular.Replace(domains)
	r.logger.Info("popular-domain policy loaded",
		logger.String("file", r.path),
		logger.Int("domains", len(domains)))
	return nil
}

func (r *PolicyReloader) reloadAndLog() {
	if err := r.Reload(); err != nil {
		r.logger.Warn("policy reload failed, keeping previous set",
			logger.Error(err))
	}
}
