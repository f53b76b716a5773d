package handlers

import (
	"net/http"

	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/logger"
)

type reloadResponse struct {
	Triggered bool `json:"triggered"`
}

// PolicyReload triggers an immediate refresh of the popular-domain policy
// file, ahead of the next scheduled tick. The send is non-blocking: a
// reload already in flight wins over a second trigger.
func PolicyReload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.PolicyReload == nil {
			writeError(w, http.StatusNotFound, "no policy file configured")
			return
		}

		select {
		case d.PolicyReload <- struct{}{}:
			d.Logger.Info("manual policy reload triggered",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{Triggered: true})
		default:
			d.Logger.Warn("policy reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeError(w, http.StatusTooManyRequests, "reload already in progress")
		}
	}
}
