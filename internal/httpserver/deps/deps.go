package deps

import (
	"net/http"
	"time"

	"github.com/phishblock/phishguard/internal/engine"
	"github.com/phishblock/phishguard/internal/logger"
	"github.com/phishblock/phishguard/internal/store"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	Engine       *engine.Engine   // the decision pipeline, sole entry point for checks
	Store        store.Store      // persisted state (whitelist, thresholds, counters)
	Metrics      http.Handler     // prometheus exposition handler (nil = metrics disabled)
	PolicyReload chan struct{}    // channel to trigger manual policy reload (nil if no policy file)
}
