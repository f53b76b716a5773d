package domain

import "time"

// Action is the verdict the caller should enforce for a URL.
type Action string

const (
	ActionBlock Action = "block"
	ActionWarn  Action = "warn"
	ActionAllow Action = "allow"
)

// Level classifies the model's view of a URL independently of the
// enforced action (a popular-domain override can allow a suspicious URL).
type Level string

const (
	LevelSafe       Level = "safe"
	LevelSuspicious Level = "suspicious"
	LevelPhishing   Level = "phishing"
	LevelUnknown    Level = "unknown"
)

// Reasons attached to a Decision. Exactly one applies per decision.
const (
	ReasonWhitelisted  = "whitelisted"
	ReasonMLPrediction = "ml_prediction"
	ReasonPopularCheck = "popular_domain_check"
	ReasonError        = "error"
)

// Decision is the engine's answer for a single URL check.
//
// A Decision is immutable once returned. The same value may be stored
// verbatim as a cache entry payload; the Cached flag is set on the copy
// returned from cache, never on the stored entry.
type Decision struct {
	URL         string    `json:"url"`
	Action      Action    `json:"action"`
	Level       Level     `json:"level"`
	Probability float64   `json:"probability"`
	Confidence  float64   `json:"confidence"`
	Reason      string    `json:"reason"`
	Cached      bool      `json:"cached"`
	Timestamp   time.Time `json:"timestamp"`

	// LatencyMs is the wall-clock cost of producing this decision, in
	// milliseconds. Observability only; it never affects policy.
	LatencyMs float64 `json:"latency_ms"`

	// Error carries the failure text on the fail-open path, empty otherwise.
	Error string `json:"error,omitempty"`
}
