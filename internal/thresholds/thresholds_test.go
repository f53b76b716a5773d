package thresholds

import (
	"errors"
	"testing"

	"github.com/phishblock/phishguard/internal/domain"
)

func TestNewManagerStartsBalanced(t *testing.T) {
	m := NewManager()
	cfg := m.Current()
	if cfg.Profile != ProfileBalanced {
		t.Errorf("Profile = %q, want %q", cfg.Profile, ProfileBalanced)
	}
	if cfg.Block != 0.50 || cfg.Warn != 0.30 {
		t.Errorf("thresholds = (%v, %v), want (0.50, 0.30)", cfg.Block, cfg.Warn)
	}
	if cfg.Popular != DefaultPopularThreshold {
		t.Errorf("Popular = %v, want %v", cfg.Popular, DefaultPopularThreshold)
	}
}

func TestSetProfile(t *testing.T) {
	tests := []struct {
		profile string
		block   float64
		warn    float64
	}{
		{ProfileConservative, 0.70, 0.50},
		{ProfileBalanced, 0.50, 0.30},
		{ProfileAggressive, 0.30, 0.15},
	}
	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			m := NewManager()
			if err := m.SetProfile(tt.profile); err != nil {
				t.Fatalf("SetProfile(%q) error: %v", tt.profile, err)
			}
			cfg := m.Current()
			if cfg.Block != tt.block || cfg.Warn != tt.warn {
				t.Errorf("thresholds = (%v, %v), want (%v, %v)",
					cfg.Block, cfg.Warn, tt.block, tt.warn)
			}
			if cfg.Profile != tt.profile {
				t.Errorf("Profile = %q, want %q", cfg.Profile, tt.profile)
			}
		})
	}
}

func TestSetProfileUnknownLeavesStateUntouched(t *testing.T) {
	m := NewManager()
	before := m.Current()

	err := m.SetProfile("paranoid")
	if !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("SetProfile() error = %v, want ErrUnknownProfile", err)
	}
	if m.Current() != before {
		t.Errorf("config changed on failed SetProfile: %+v", m.Current())
	}
}

func TestSetCustom(t *testing.T) {
	m := NewManager()
	if err := m.SetCustom(0.60, 0.40); err != nil {
		t.Fatalf("SetCustom() error: %v", err)
	}
	cfg := m.Current()
	if cfg.Block != 0.60 || cfg.Warn != 0.40 {
		t.Errorf("thresholds = (%v, %v), want (0.60, 0.40)", cfg.Block, cfg.Warn)
	}
	if cfg.Profile != "custom" {
		t.Errorf("Profile = %q, want custom", cfg.Profile)
	}
}

func TestSetCustomRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		block float64
		warn  float64
	}{
		{"warn above block", 0.40, 0.60},
		{"warn equals block", 0.50, 0.50},
		{"negative warn", 0.50, -0.10},
		{"block above one", 1.50, 0.30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			before := m.Current()
			err := m.SetCustom(tt.block, tt.warn)
			if !errors.Is(err, ErrInvalidThresholds) {
				t.Fatalf("SetCustom() error = %v, want ErrInvalidThresholds", err)
			}
			if m.Current() != before {
				t.Errorf("config changed on failed SetCustom: %+v", m.Current())
			}
		})
	}
}

func TestRestore(t *testing.T) {
	m := NewManager()
	err := m.Restore(Config{Block: 0.65, Warn: 0.35, Popular: 0.85, Profile: "custom"})
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	cfg := m.Current()
	if cfg.Block != 0.65 || cfg.Warn != 0.35 || cfg.Popular != 0.85 {
		t.Errorf("restored config = %+v", cfg)
	}
}

func TestRestoreRejectsCorruptState(t *testing.T) {
	m := NewManager()
	err := m.Restore(Config{Block: 0.20, Warn: 0.90})
	if !errors.Is(err, ErrInvalidThresholds) {
		t.Fatalf("Restore() error = %v, want ErrInvalidThresholds", err)
	}
	if m.Current().Profile != ProfileBalanced {
		t.Error("failed restore must not change the active config")
	}
}

func TestRestoreBackfillsPopularThreshold(t *testing.T) {
	m := NewManager()
	if err := m.Restore(Config{Block: 0.50, Warn: 0.30, Profile: ProfileBalanced}); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if got := m.Current().Popular; got != DefaultPopularThreshold {
		t.Errorf("Popular = %v, want backfilled default %v", got, DefaultPopularThreshold)
	}
}

func TestGetAction(t *testing.T) {
	m := NewManager() // block 0.50, warn 0.30, popular 0.80

	tests := []struct {
		name      string
		prob      float64
		isPopular bool
		want      domain.Action
	}{
		{"low probability allows", 0.10, false, domain.ActionAllow},
		{"warn band warns", 0.40, false, domain.ActionWarn},
		{"warn boundary is inclusive", 0.30, false, domain.ActionWarn},
		{"block boundary is inclusive", 0.50, false, domain.ActionBlock},
		{"high probability blocks", 0.95, false, domain.ActionBlock},
		{"popular domain overrides a would-be block", 0.60, true, domain.ActionAllow},
		{"popular domain overrides a would-be warn", 0.40, true, domain.ActionAllow},
		{"popular domain above its own bar still blocks", 0.85, true, domain.ActionBlock},
		{"popular bar is exclusive at the boundary", 0.80, true, domain.ActionBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.GetAction(tt.prob, tt.isPopular); got != tt.want {
				t.Errorf("GetAction(%v, %v) = %v, want %v", tt.prob, tt.isPopular, got, tt.want)
			}
		})
	}
}

func TestProfilesSnapshotIsACopy(t *testing.T) {
	p := Profiles()
	p[ProfileBalanced] = Profile{Block: 0.99, Warn: 0.98}
	if Profiles()[ProfileBalanced].Block != 0.50 {
		t.Error("mutating the returned map must not affect the package table")
	}
}
