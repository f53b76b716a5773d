package domain

import "time"

// Counters are the engine's running totals. They are monotonic for the
// process lifetime and periodically persisted; a reset only happens through
// an explicit operator action that also stamps ResetAt.
type Counters struct {
	TotalChecks int64     `json:"total_checks"`
	Blocked     int64     `json:"blocked"`
	Warned      int64     `json:"warned"`
	Allowed     int64     `json:"allowed"`
	CacheHits   int64     `json:"cache_hits"`
	Errors      int64     `json:"errors"`
	InstalledAt time.Time `json:"installed_at"`
	ResetAt     time.Time `json:"reset_at,omitempty"`
}
