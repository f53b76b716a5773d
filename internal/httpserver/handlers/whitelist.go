package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/logger"
)

type whitelistRequest struct {
	Domain string `json:"domain"`
}

type whitelistResponse struct {
	Domain  string   `json:"domain,omitempty"`
	Changed bool     `json:"changed"`
	Domains []string `json:"domains,omitempty"`
	Count   int      `json:"count"`
}

// WhitelistGet lists all trusted domains.
func WhitelistGet(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domains := d.Engine.Whitelist().All()
		writeJSON(w, http.StatusOK, whitelistResponse{
			Domains: domains,
			Count:   len(domains),
		})
	}
}

// WhitelistAdd trusts a domain (or the domain of a full URL) and persists
// the updated set immediately so a crash cannot lose user intent.
func WhitelistAdd(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeWhitelistRequest(w, r)
		if !ok {
			return
		}

		stored, changed := d.Engine.Whitelist().Add(req.Domain)
		if stored == "" {
			writeError(w, http.StatusBadRequest, "domain could not be parsed")
			return
		}
		if changed {
			persistWhitelist(r, d)
			d.Logger.Info("domain whitelisted", logger.String("domain", stored))
		}

		writeJSON(w, http.StatusOK, whitelistResponse{
			Domain:  stored,
			Changed: changed,
			Count:   d.Engine.Whitelist().Len(),
		})
	}
}

// WhitelistRemove removes a trusted domain.
func WhitelistRemove(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeWhitelistRequest(w, r)
		if !ok {
			return
		}

		removed, changed := d.Engine.Whitelist().Remove(req.Domain)
		if removed == "" {
			writeError(w, http.StatusBadRequest, "domain could not be parsed")
			return
		}
		if changed {
			persistWhitelist(r, d)
			d.Logger.Info("domain removed from whitelist", logger.String("domain", removed))
		}

		writeJSON(w, http.StatusOK, whitelistResponse{
			Domain:  removed,
			Changed: changed,
			Count:   d.Engine.Whitelist().Len(),
		})
	}
}

func decodeWhitelistRequest(w http.ResponseWriter, r *http.Request) (whitelistRequest, bool) {
	var req whitelistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	req.Domain = strings.TrimSpace(req.Domain)
	if req.Domain == "" {
		writeError(w, http.StatusBadRequest, "missing domain")
		return req, false
	}
	return req, true
}

func persistWhitelist(r *http.Request, d deps.Deps) {
	if err := d.Store.SaveWhitelist(r.Context(), d.Engine.Whitelist().All()); err != nil {
		d.Logger.Warn("failed to persist whitelist", logger.Error(err))
	}
}
