package memory

import (
	"context"
	"sync"

	"github.com/phishblock/phishguard/internal/domain"
	"github.com/phishblock/phishguard/internal/thresholds"
)

// Store is the in-process fallback used when no redis address is
// configured, and the fixture store for tests. State does not survive a
// restart.
type Store struct {
	mu sync.RWMutex

	whitelist    []string
	hasWhitelist bool

	cfg    thresholds.Config
	hasCfg bool

	counters    domain.Counters
	hasCounters bool
}

func New() *Store {
	return &Store{}
}

func (s *Store) LoadWhitelist(_ context.Context) ([]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasWhitelist {
		return nil, false, nil
	}
	out := make([]string, len(s.whitelist))
	copy(out, s.whitelist)
	return out, true, nil
}

func (s *Store) SaveWhitelist(_ context.Context, domains []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.whitelist = make([]string, len(domains))
	copy(s.whitelist, domains)
	s.hasWhitelist = true
	return nil
}

func (s *Store) LoadThresholds(_ context.Context) (thresholds.Config, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.hasCfg, nil
}

func (s *Store) SaveThresholds(_ context.Context, cfg thresholds.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.hasCfg = true
	return nil
}

func (s *Store) LoadCounters(_ context.Context) (domain.Counters, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters, s.hasCounters, nil
}

func (s *Store) SaveCounters(_ context.Context, c domain.Counters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = c
	s.hasCounters = true
	return nil
}

func (s *Store) Close() error { return nil }
