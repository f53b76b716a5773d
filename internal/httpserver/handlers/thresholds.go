package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/logger"
	"github.com/phishblock/phishguard/internal/thresholds"
)

type profileRequest struct {
	Profile string `json:"profile"`
}

type customRequest struct {
	Block float64 `json:"block_threshold"`
	Warn  float64 `json:"warn_threshold"`
}

type thresholdsResponse struct {
	Config   thresholds.Config             `json:"config"`
	Profiles map[string]thresholds.Profile `json:"profiles"`
}

// ThresholdsGet returns the active config and the available profiles.
func ThresholdsGet(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, thresholdsResponse{
			Config:   d.Engine.Thresholds().Current(),
			Profiles: thresholds.Profiles(),
		})
	}
}

// ThresholdsSetProfile activates a named profile. Unknown names are
// rejected with 404 and leave state untouched.
func ThresholdsSetProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := d.Engine.Thresholds().SetProfile(req.Profile); err != nil {
			if errors.Is(err, thresholds.ErrUnknownProfile) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		persistThresholds(r, d)
		d.Logger.Info("threshold profile activated", logger.String("profile", req.Profile))

		writeJSON(w, http.StatusOK, thresholdsResponse{
			Config:   d.Engine.Thresholds().Current(),
			Profiles: thresholds.Profiles(),
		})
	}
}

// ThresholdsSetCustom installs explicit block/warn values.
func ThresholdsSetCustom(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req customRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := d.Engine.Thresholds().SetCustom(req.Block, req.Warn); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		persistThresholds(r, d)
		d.Logger.Info("custom thresholds set",
			logger.Float64("block", req.Block),
			logger.Float64("warn", req.Warn))

		writeJSON(w, http.StatusOK, thresholdsResponse{
			Config:   d.Engine.Thresholds().Current(),
			Profiles: thresholds.Profiles(),
		})
	}
}

func persistThresholds(r *http.Request, d deps.Deps) {
	if err := d.Store.SaveThresholds(r.Context(), d.Engine.Thresholds().Current()); err != nil {
		d.Logger.Warn("failed to persist thresholds", logger.Error(err))
	}
}
