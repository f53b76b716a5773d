package handlers

import (
	"net/http"

	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/logger"
)

// Stats returns the engine's aggregate view: counters, cache, whitelist,
// thresholds and model identity.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Engine.Stats())
	}
}

// StatsReset zeroes the running counters and persists the reset so it
// survives a restart.
func StatsReset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Engine.ResetCounters()
		if err := d.Store.SaveCounters(r.Context(), d.Engine.Counters()); err != nil {
			d.Logger.Warn("failed to persist counter reset", logger.Error(err))
		}
		d.Logger.Info("counters reset")
		writeJSON(w, http.StatusOK, d.Engine.Counters())
	}
}

type cacheClearResponse struct {
	Cleared bool `json:"cleared"`
}

// CacheClear drops every cached decision and resets cache instrumentation.
func CacheClear(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Engine.Cache().Clear()
		d.Logger.Info("prediction cache cleared")
		writeJSON(w, http.StatusOK, cacheClearResponse{Cleared: true})
	}
}
