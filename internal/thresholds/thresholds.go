package thresholds

import (
	"errors"
	"fmt"
	"sync"

	"github.com/phishblock/phishguard/internal/domain"
)

var (
	// ErrUnknownProfile is returned by SetProfile for unrecognized names.
	// State is never mutated on failure.
	ErrUnknownProfile = errors.New("unknown threshold profile")

	// ErrInvalidThresholds is returned when custom values violate
	// 0 <= warn < block <= 1.
	ErrInvalidThresholds = errors.New("invalid threshold values")
)

// Config is the decision-boundary policy in effect.
type Config struct {
	Block   float64 `json:"block_threshold"`
	Warn    float64 `json:"warn_threshold"`
	Popular float64 `json:"popular_domain_threshold"`
	Profile string  `json:"active_profile"`
}

// Profile is a named (block, warn) pair.
type Profile struct {
	Block float64
	Warn  float64
}

const (
	ProfileConservative = "conservative"
	ProfileBalanced     = "balanced"
	ProfileAggressive   = "aggressive"
	profileCustom       = "custom"

	// DefaultPopularThreshold is the raised bar for well-known domains:
	// below it they are always allowed, whatever the block threshold says.
	DefaultPopularThreshold = 0.80
)

var profiles = map[string]Profile{
	ProfileConservative: {Block: 0.70, Warn: 0.50},
	ProfileBalanced:     {Block: 0.50, Warn: 0.30},
	ProfileAggressive:   {Block: 0.30, Warn: 0.15},
}

// Manager holds the mutable threshold config behind a lock so interleaved
// decisions always observe a coherent (block, warn) pair.
type Manager struct {
	mu  sync.RWMutex
	cfg Config
}

// NewManager starts on the balanced profile.
func NewManager() *Manager {
	p := profiles[ProfileBalanced]
	return &Manager{cfg: Config{
		Block:   p.Block,
		Warn:    p.Warn,
		Popular: DefaultPopularThreshold,
		Profile: ProfileBalanced,
	}}
}

// SetProfile activates a named profile. Unknown names leave the current
// config untouched.
func (m *Manager) SetProfile(name string) error {
	p, ok := profiles[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Block = p.Block
	m.cfg.Warn = p.Warn
	m.cfg.Profile = name
	return nil
}

// SetCustom installs explicit block/warn values under the "custom" profile
// name. The warn < block invariant is enforced here, at the boundary.
func (m *Manager) SetCustom(block, warn float64) error {
	if warn < 0 || block > 1 || warn >= block {
		return fmt.Errorf("%w: warn=%.2f block=%.2f", ErrInvalidThresholds, warn, block)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Block = block
	m.cfg.Warn = warn
	m.cfg.Profile = profileCustom
	return nil
}

// Restore replaces the whole config, used when loading persisted state.
// Invalid persisted values are rejected so a corrupt store cannot disable
// blocking.
func (m *Manager) Restore(cfg Config) error {
	if cfg.Warn < 0 || cfg.Block > 1 || cfg.Warn >= cfg.Block {
		return fmt.Errorf("%w: warn=%.2f block=%.2f", ErrInvalidThresholds, cfg.Warn, cfg.Block)
	}
	if cfg.Popular <= 0 || cfg.Popular > 1 {
		cfg.Popular = DefaultPopularThreshold
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	return nil
}

// Current returns a copy of the active config.
func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// GetAction maps a probability to the enforced action.
//
// Popular domains get a materially higher bar: below the popular threshold
// they are allowed regardless of block/warn. Otherwise the block check runs
// first and its boundary is inclusive.
func (m *Manager) GetAction(probability float64, isPopularDomain bool) domain.Action {
	m.mu.RLock()
	cfg := m.cfg
	m.mu.RUnlock()

	if isPopularDomain && probability < cfg.Popular {
		return domain.ActionAllow
	}
	switch {
	case probability >= cfg.Block:
		return domain.ActionBlock
	case probability >= cfg.Warn:
		return domain.ActionWarn
	default:
		return domain.ActionAllow
	}
}

// Profiles returns the available profile names with their values.
func Profiles() map[string]Profile {
	out := make(map[string]Profile, len(profiles))
	for name, p := range profiles {
		out[name] = p
	}
	return out
}
