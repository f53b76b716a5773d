package store

import (
	"context"

	"github.com/phishblock/phishguard/internal/domain"
	"github.com/phishblock/phishguard/internal/thresholds"
)

// Store is the opaque persistence boundary for user state: whitelist,
// threshold config and running counters. The decision path never touches
// it; only startup restore and the background persister do.
//
// Load methods return found=false (no error) when nothing was persisted yet.
type Store interface {
	LoadWhitelist(ctx context.Context) ([]string, bool, error)
	SaveWhitelist(ctx context.Context, domains []string) error

	LoadThresholds(ctx context.Context) (thresholds.Config, bool, error)
	SaveThresholds(ctx context.Context, cfg thresholds.Config) error

	LoadCounters(ctx context.Context) (domain.Counters, bool, error)
	SaveCounters(ctx context.Context, c domain.Counters) error

	Close() error
}
