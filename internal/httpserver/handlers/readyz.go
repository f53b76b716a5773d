package handlers

import (
	"net/http"

	"github.com/phishblock/phishguard/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready        bool   `json:"ready"`
	ModelVersion string `json:"model_version,omitempty"`
	ModelTrees   int    `json:"model_trees,omitempty"`
	FeatureCount int    `json:"feature_count,omitempty"`
}

// Readyz reports readiness. The engine is constructed only after a
// successful model load, so a non-nil engine means ready.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Engine == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		m := d.Engine.Predictor().Model()
		writeJSON(w, http.StatusOK, readyzResponse{
			Ready:        true,
			ModelVersion: m.Metadata().Version,
			ModelTrees:   m.NumTrees(),
			FeatureCount: m.NumFeatures(),
		})
	}
}
