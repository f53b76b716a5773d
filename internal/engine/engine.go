package engine

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/phishblock/phishguard/internal/cache"
	"github.com/phishblock/phishguard/internal/domain"
	"github.com/phishblock/phishguard/internal/features"
	"github.com/phishblock/phishguard/internal/logger"
	"github.com/phishblock/phishguard/internal/metrics"
	"github.com/phishblock/phishguard/internal/policy"
	"github.com/phishblock/phishguard/internal/predictor"
	"github.com/phishblock/phishguard/internal/thresholds"
	"github.com/phishblock/phishguard/internal/urlx"
	"github.com/phishblock/phishguard/internal/whitelist"
)

// ErrParse marks a URL the parser could not analyze. Recoverable: the
// decision fails open.
var ErrParse = errors.New("unable to parse url")

// Engine orchestrates the decision pipeline. It owns the cache, whitelist,
// threshold manager and predictor by composition; lifecycle is tied to
// process start/stop, never ambient package state.
//
// Safe for concurrent use. Two racing decisions for the same URL may both
// miss the cache and both write; that is benign (last write wins, the
// result is idempotent for identical inputs).
type Engine struct {
	log     logger.Logger
	pred    *predictor.Predictor
	cache   *cache.Cache
	wl      *whitelist.Whitelist
	th      *thresholds.Manager
	popular *policy.PopularDomains
	metrics *metrics.Metrics

	now func() time.Time

	totalChecks atomic.Int64
	blocked     atomic.Int64
	warned      atomic.Int64
	allowed     atomic.Int64
	cacheHits   atomic.Int64
	errorCount  atomic.Int64
	installedAt time.Time
	resetAt     atomic.Int64 // unix nanos, 0 = never
}

// Options are the engine's collaborators. Predictor, Cache, Whitelist and
// Thresholds are required; the rest have working defaults.
type Options struct {
	Logger     logger.Logger
	Predictor  *predictor.Predictor
	Cache      *cache.Cache
	Whitelist  *whitelist.Whitelist
	Thresholds *thresholds.Manager
	Popular    *policy.PopularDomains
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

func New(opts Options) *Engine {
	e := &Engine{
		log:     opts.Logger,
		pred:    opts.Predictor,
		cache:   opts.Cache,
		wl:      opts.Whitelist,
		th:      opts.Thresholds,
		popular: opts.Popular,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if e.popular == nil {
		e.popular = policy.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.installedAt = e.now()
	return e
}

// Decide runs the short-circuit pipeline for one URL:
// whitelist, cache, feature extraction, model prediction, popular-domain
// policy, action. It never returns an error: any internal failure fails
// open to an allow/unknown decision carrying the error text. A broken
// detector must never brick navigation.
func (e *Engine) Decide(url string) domain.Decision {
	start := e.now()
	e.totalChecks.Add(1)

	if e.wl.IsWhitelisted(url) {
		d := domain.Decision{
			URL:         url,
			Action:      domain.ActionAllow,
			Level:       domain.LevelSafe,
			Probability: 0,
			Confidence:  1,
			Reason:      domain.ReasonWhitelisted,
			Timestamp:   start,
			LatencyMs:   e.msSince(start),
		}
		e.count(d)
		return d
	}

	if cached, ok := e.cache.Get(url); ok {
		e.cacheHits.Add(1)
		e.metrics.ObserveCache(true)
		cached.Cached = true
		e.count(cached)
		return cached
	}
	e.metrics.ObserveCache(false)

	d := e.evaluate(url, start)
	e.count(d)
	return d
}

// evaluate is the uncached slice of the pipeline: steps 3 through 6.
func (e *Engine) evaluate(url string, start time.Time) domain.Decision {
	vec := features.Extract(url)
	if vec == nil {
		return e.failOpen(url, start, ErrParse)
	}

	cfg := e.th.Current()
	result, err := e.pred.PredictWithConfidence(features.ToArray(vec), cfg.Block)
	if err != nil {
		return e.failOpen(url, start, err)
	}

	reason := domain.ReasonMLPrediction
	isPopular := e.popular.Contains(urlx.RegistrableDomain(url))
	if isPopular {
		reason = domain.ReasonPopularCheck
	}
	action := e.th.GetAction(result.Probability, isPopular)

	d := domain.Decision{
		URL:         url,
		Action:      action,
		Level:       result.Level,
		Probability: result.Probability,
		Confidence:  result.Confidence,
		Reason:      reason,
		Timestamp:   start,
		LatencyMs:   e.msSince(start),
	}
	e.cache.Set(url, d)

	if e.log != nil && action != domain.ActionAllow {
		e.log.Info("flagged url",
			logger.String("url", url),
			logger.String("action", string(action)),
			logger.Float64("probability", result.Probability))
	}
	return d
}

// failOpen converts an internal error into the least-restrictive decision.
// Deliberate policy, not an accident: availability beats a missed
// detection when the pipeline itself is broken.
func (e *Engine) failOpen(url string, start time.Time, err error) domain.Decision {
	e.errorCount.Add(1)
	if e.log != nil {
		e.log.Warn("decision pipeline failed open",
			logger.String("url", url),
			logger.Error(err))
	}
	return domain.Decision{
		URL:       url,
		Action:    domain.ActionAllow,
		Level:     domain.LevelUnknown,
		Reason:    domain.ReasonError,
		Error:     err.Error(),
		Timestamp: start,
		LatencyMs: e.msSince(start),
	}
}

func (e *Engine) count(d domain.Decision) {
	switch d.Action {
	case domain.ActionBlock:
		e.blocked.Add(1)
	case domain.ActionWarn:
		e.warned.Add(1)
	default:
		e.allowed.Add(1)
	}
	e.metrics.ObserveDecision(string(d.Action), d.LatencyMs/1000)
}

// msSince measures elapsed wall-clock time in milliseconds with sub-ms
// resolution.
func (e *Engine) msSince(start time.Time) float64 {
	return float64(e.now().Sub(start).Microseconds()) / 1000
}

// Whitelist exposes the owned whitelist for the management surface.
func (e *Engine) Whitelist() *whitelist.Whitelist { return e.wl }

// Thresholds exposes the owned threshold manager.
func (e *Engine) Thresholds() *thresholds.Manager { return e.th }

// Cache exposes the owned prediction cache.
func (e *Engine) Cache() *cache.Cache { return e.cache }

// PopularDomains exposes the popular-domain policy set.
func (e *Engine) PopularDomains() *policy.PopularDomains { return e.popular }

// Predictor exposes the predictor (model metadata, batch evaluation).
func (e *Engine) Predictor() *predictor.Predictor { return e.pred }

// Counters snapshots the running totals for persistence and stats.
func (e *Engine) Counters() domain.Counters {
	c := domain.Counters{
		TotalChecks: e.totalChecks.Load(),
		Blocked:     e.blocked.Load(),
		Warned:      e.warned.Load(),
		Allowed:     e.allowed.Load(),
		CacheHits:   e.cacheHits.Load(),
		Errors:      e.errorCount.Load(),
		InstalledAt: e.installedAt,
	}
	if ns := e.resetAt.Load(); ns != 0 {
		c.ResetAt = time.Unix(0, ns)
	}
	return c
}

// RestoreCounters seeds the totals from persisted state at startup.
func (e *Engine) RestoreCounters(c domain.Counters) {
	e.totalChecks.Store(c.TotalChecks)
	e.blocked.Store(c.Blocked)
	e.warned.Store(c.Warned)
	e.allowed.Store(c.Allowed)
	e.cacheHits.Store(c.CacheHits)
	e.errorCount.Store(c.Errors)
	if !c.InstalledAt.IsZero() {
		e.installedAt = c.InstalledAt
	}
	if !c.ResetAt.IsZero() {
		e.resetAt.Store(c.ResetAt.UnixNano())
	}
}

// ResetCounters zeroes the totals and stamps the reset time.
func (e *Engine) ResetCounters() {
	e.totalChecks.Store(0)
	e.blocked.Store(0)
	e.warned.Store(0)
	e.allowed.Store(0)
	e.cacheHits.Store(0)
	e.errorCount.Store(0)
	e.resetAt.Store(e.now().UnixNano())
}

// Stats aggregates the state every management caller wants in one call.
type Stats struct {
	Counters       domain.Counters   `json:"counters"`
	Cache          cache.Stats       `json:"cache"`
	WhitelistSize  int               `json:"whitelist_size"`
	PopularDomains int               `json:"popular_domains"`
	Thresholds     thresholds.Config `json:"thresholds"`
	ModelVersion   string            `json:"model_version"`
	ModelTrees     int               `json:"model_trees"`
	FeatureCount   int               `json:"feature_count"`
	ModelAnomalies int64             `json:"model_anomalies"`
}

func (e *Engine) Stats() Stats {
	m := e.pred.Model()
	return Stats{
		Counters:       e.Counters(),
		Cache:          e.cache.Stats(),
		WhitelistSize:  e.wl.Len(),
		PopularDomains: e.popular.Len(),
		Thresholds:     e.th.Current(),
		ModelVersion:   m.Metadata().Version,
		ModelTrees:     m.NumTrees(),
		FeatureCount:   m.NumFeatures(),
		ModelAnomalies: m.Anomalies(),
	}
}
