package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/phishblock/phishguard/internal/cache"
	"github.com/phishblock/phishguard/internal/domain"
	"github.com/phishblock/phishguard/internal/features"
	"github.com/phishblock/phishguard/internal/model"
	"github.com/phishblock/phishguard/internal/policy"
	"github.com/phishblock/phishguard/internal/predictor"
	"github.com/phishblock/phishguard/internal/thresholds"
	"github.com/phishblock/phishguard/internal/whitelist"
)

// newTestEngine wires an engine around a one-leaf model that predicts the
// same probability for every URL, which lets each test pin the pipeline to
// one branch of the decision logic.
func newTestEngine(t *testing.T, probability float64) *Engine {
	t.Helper()

	names := make([]string, len(features.Names))
	for i, n := range features.Names {
		names[i] = fmt.Sprintf("%q", n)
	}
	meta := fmt.Sprintf(`{"version":"test","feature_names":[%s]}`, strings.Join(names, ","))
	artifact := fmt.Sprintf(`{
		"base_score": %g,
		"trees": [{
			"left_children": [-1], "right_children": [-1],
			"split_indices": [0], "split_conditions": [0], "base_weights": [0]
		}]
	}`, math.Log(probability/(1-probability)))

	ens, err := model.Parse([]byte(artifact), []byte(meta))
	if err != nil {
		t.Fatalf("model.Parse() error: %v", err)
	}

	return New(Options{
		Predictor:  predictor.New(ens),
		Cache:      cache.New(100, time.Hour),
		Whitelist:  whitelist.New(),
		Thresholds: thresholds.NewManager(),
		Popular:    policy.Default(),
	})
}

func TestDecideBlocksPhishing(t *testing.T) {
	e := newTestEngine(t, 0.90)
	d := e.Decide("http://secure-login-update.biz/verify")

	if d.Action != domain.ActionBlock {
		t.Errorf("Action = %v, want block", d.Action)
	}
	if d.Level != domain.LevelPhishing {
		t.Errorf("Level = %v, want phishing", d.Level)
	}
	if d.Reason != domain.ReasonMLPrediction {
		t.Errorf("Reason = %q, want %q", d.Reason, domain.ReasonMLPrediction)
	}
	if d.Cached {
		t.Error("first decision must not be marked cached")
	}
	if math.Abs(d.Probability-0.90) > 1e-9 {
		t.Errorf("Probability = %v, want 0.90", d.Probability)
	}
}

func TestDecideWarnsSuspicious(t *testing.T) {
	e := newTestEngine(t, 0.40)
	d := e.Decide("http://somewhat-odd.example.net")

	if d.Action != domain.ActionWarn {
		t.Errorf("Action = %v, want warn", d.Action)
	}
	if d.Level != domain.LevelSuspicious {
		t.Errorf("Level = %v, want suspicious", d.Level)
	}
}

func TestDecideAllowsSafe(t *testing.T) {
	e := newTestEngine(t, 0.05)
	d := e.Decide("https://ordinary.example.org/docs")

	if d.Action != domain.ActionAllow {
		t.Errorf("Action = %v, want allow", d.Action)
	}
	if d.Level != domain.LevelSafe {
		t.Errorf("Level = %v, want safe", d.Level)
	}
	if math.Abs(d.Confidence-0.95) > 1e-9 {
		t.Errorf("Confidence = %v, want 0.95", d.Confidence)
	}
}

func TestDecideWhitelistShortCircuits(t *testing.T) {
	// The model would block everything, but the whitelist runs first.
	e := newTestEngine(t, 0.99)
	e.Whitelist().Add("trusted.example.com")

	d := e.Decide("https://sub.trusted.example.com/login")
	if d.Action != domain.ActionAllow {
		t.Errorf("Action = %v, want allow", d.Action)
	}
	if d.Reason != domain.ReasonWhitelisted {
		t.Errorf("Reason = %q, want %q", d.Reason, domain.ReasonWhitelisted)
	}
	if d.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1", d.Confidence)
	}
	if e.Cache().Len() != 0 {
		t.Error("whitelisted decisions must not be cached")
	}
}

func TestDecideCachesAndMarksSecondHit(t *testing.T) {
	e := newTestEngine(t, 0.90)
	url := "http://phishy.example.biz/login"

	first := e.Decide(url)
	if first.Cached {
		t.Fatal("first decision marked cached")
	}

	second := e.Decide(url)
	if !second.Cached {
		t.Error("second decision should come from cache")
	}
	if second.Action != first.Action || second.Probability != first.Probability {
		t.Errorf("cached decision diverged: %+v vs %+v", second, first)
	}

	// Fragment-only variation reuses the same entry
	third := e.Decide(url + "#section")
	if !third.Cached {
		t.Error("fragment variant should hit the cache")
	}

	c := e.Counters()
	if c.CacheHits != 2 {
		t.Errorf("CacheHits = %d, want 2", c.CacheHits)
	}
}

func TestDecidePopularDomainOverride(t *testing.T) {
	// Probability 0.60 is above the block threshold but below the popular
	// bar, so a popular domain is allowed where an unknown one is blocked.
	e := newTestEngine(t, 0.60)

	popular := e.Decide("https://www.google.com/search?q=test")
	if popular.Action != domain.ActionAllow {
		t.Errorf("popular Action = %v, want allow", popular.Action)
	}
	if popular.Reason != domain.ReasonPopularCheck {
		t.Errorf("popular Reason = %q, want %q", popular.Reason, domain.ReasonPopularCheck)
	}

	unknown := e.Decide("https://www.goog1e-search.com/q")
	if unknown.Action != domain.ActionBlock {
		t.Errorf("unknown Action = %v, want block", unknown.Action)
	}
	if unknown.Reason != domain.ReasonMLPrediction {
		t.Errorf("unknown Reason = %q, want %q", unknown.Reason, domain.ReasonMLPrediction)
	}
}

func TestDecideFailsOpenOnUnparseableURL(t *testing.T) {
	e := newTestEngine(t, 0.99)
	d := e.Decide("http://exa mple.com/\x7f")

	if d.Action != domain.ActionAllow {
		t.Errorf("Action = %v, want allow (fail open)", d.Action)
	}
	if d.Level != domain.LevelUnknown {
		t.Errorf("Level = %v, want unknown", d.Level)
	}
	if d.Reason != domain.ReasonError {
		t.Errorf("Reason = %q, want %q", d.Reason, domain.ReasonError)
	}
	if d.Error == "" {
		t.Error("fail-open decision should carry the error text")
	}

	c := e.Counters()
	if c.Errors != 1 {
		t.Errorf("Errors = %d, want 1", c.Errors)
	}
	if c.Allowed != 1 {
		t.Errorf("Allowed = %d, want 1 (fail-open counts as allowed)", c.Allowed)
	}
}

func TestDecisionLatencyInMilliseconds(t *testing.T) {
	e := newTestEngine(t, 0.90)
	base := time.Unix(1700000000, 0)
	calls := 0
	e.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 250 * time.Millisecond)
	}

	// The clock advances 250ms between the start stamp and the latency
	// measurement.
	d := e.Decide("http://phishy.example.biz/login")
	if d.LatencyMs != 250 {
		t.Errorf("LatencyMs = %v, want 250", d.LatencyMs)
	}

	payload, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(payload), `"latency_ms":250`) {
		t.Errorf("payload = %s, want latency_ms carrying milliseconds", payload)
	}
}

func TestCounters(t *testing.T) {
	e := newTestEngine(t, 0.90)
	e.Whitelist().Add("safe.example.com")

	e.Decide("http://bad.example.biz")      // block
	e.Decide("http://bad.example.biz")      // cached block
	e.Decide("https://safe.example.com")    // whitelisted allow
	e.Decide("http://exa mple.com/\x7f")    // fail open

	c := e.Counters()
	if c.TotalChecks != 4 {
		t.Errorf("TotalChecks = %d, want 4", c.TotalChecks)
	}
	if c.Blocked != 2 {
		t.Errorf("Blocked = %d, want 2 (cached decisions count)", c.Blocked)
	}
	if c.Allowed != 2 {
		t.Errorf("Allowed = %d, want 2", c.Allowed)
	}
	if c.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", c.CacheHits)
	}
	if c.Errors != 1 {
		t.Errorf("Errors = %d, want 1", c.Errors)
	}
	if c.InstalledAt.IsZero() {
		t.Error("InstalledAt should be set")
	}
}

func TestResetCounters(t *testing.T) {
	e := newTestEngine(t, 0.90)
	e.Decide("http://bad.example.biz")

	e.ResetCounters()
	c := e.Counters()
	if c.TotalChecks != 0 || c.Blocked != 0 {
		t.Errorf("counters not reset: %+v", c)
	}
	if c.ResetAt.IsZero() {
		t.Error("ResetAt should be stamped after a reset")
	}
}

func TestRestoreCounters(t *testing.T) {
	e := newTestEngine(t, 0.90)
	installed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	e.RestoreCounters(domain.Counters{
		TotalChecks: 40,
		Blocked:     7,
		InstalledAt: installed,
	})

	e.Decide("http://bad.example.biz")
	c := e.Counters()
	if c.TotalChecks != 41 {
		t.Errorf("TotalChecks = %d, want 41", c.TotalChecks)
	}
	if c.Blocked != 8 {
		t.Errorf("Blocked = %d, want 8", c.Blocked)
	}
	if !c.InstalledAt.Equal(installed) {
		t.Errorf("InstalledAt = %v, want %v", c.InstalledAt, installed)
	}
}

func TestStats(t *testing.T) {
	e := newTestEngine(t, 0.90)
	e.Whitelist().Add("safe.example.com")
	e.Decide("http://bad.example.biz")

	s := e.Stats()
	if s.Counters.TotalChecks != 1 {
		t.Errorf("Counters.TotalChecks = %d, want 1", s.Counters.TotalChecks)
	}
	if s.WhitelistSize != 1 {
		t.Errorf("WhitelistSize = %d, want 1", s.WhitelistSize)
	}
	if s.PopularDomains == 0 {
		t.Error("PopularDomains should reflect the default set")
	}
	if s.ModelVersion != "test" {
		t.Errorf("ModelVersion = %q, want test", s.ModelVersion)
	}
	if s.ModelTrees != 1 {
		t.Errorf("ModelTrees = %d, want 1", s.ModelTrees)
	}
	if s.FeatureCount != features.Count() {
		t.Errorf("FeatureCount = %d, want %d", s.FeatureCount, features.Count())
	}
	if s.Cache.Size != 1 {
		t.Errorf("Cache.Size = %d, want 1", s.Cache.Size)
	}
}
