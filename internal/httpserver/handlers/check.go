package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/phishblock/phishguard/internal/domain"
	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/logger"
)

// maxBatchSize bounds a single batch request.
const maxBatchSize = 100

type checkResponse struct {
	domain.Decision
	Recommendation string `json:"recommendation"`
}

type batchRequest struct {
	URLs []string `json:"urls"`
}

type batchResponse struct {
	Results          []checkResponse `json:"results"`
	TotalAnalyzed    int             `json:"total_analyzed"`
	PhishingDetected int             `json:"phishing_detected"`
}

// Check classifies a single URL: GET /check?url=...
func Check(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := strings.TrimSpace(r.URL.Query().Get("url"))
		if url == "" {
			writeError(w, http.StatusBadRequest, "missing url parameter")
			return
		}

		decision := d.Engine.Decide(url)
		d.Logger.Debug("check",
			logger.String("url", url),
			logger.String("action", string(decision.Action)),
			logger.Float64("probability", decision.Probability),
			logger.Bool("cached", decision.Cached))

		writeJSON(w, http.StatusOK, checkResponse{
			Decision:       decision,
			Recommendation: recommend(decision),
		})
	}
}

// CheckBatch classifies up to maxBatchSize URLs independently:
// POST /check/batch {"urls": [...]}. Unparseable entries degrade to their
// fail-open decisions instead of failing the batch.
func CheckBatch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.URLs) == 0 {
			writeError(w, http.StatusBadRequest, "no urls provided")
			return
		}
		if len(req.URLs) > maxBatchSize {
			writeError(w, http.StatusBadRequest, "maximum 100 urls per batch")
			return
		}

		resp := batchResponse{Results: make([]checkResponse, 0, len(req.URLs))}
		for _, url := range req.URLs {
			decision := d.Engine.Decide(strings.TrimSpace(url))
			if decision.Level == domain.LevelPhishing {
				resp.PhishingDetected++
			}
			resp.Results = append(resp.Results, checkResponse{
				Decision:       decision,
				Recommendation: recommend(decision),
			})
		}
		resp.TotalAnalyzed = len(resp.Results)

		writeJSON(w, http.StatusOK, resp)
	}
}

func recommend(d domain.Decision) string {
	switch {
	case d.Reason == domain.ReasonWhitelisted:
		return "This domain is on your trusted list."
	case d.Reason == domain.ReasonPopularCheck && d.Action == domain.ActionAllow:
		return "This appears to be a legitimate popular website."
	case d.Action == domain.ActionBlock:
		return "WARNING: This URL shows strong phishing indicators. Do not enter any personal information."
	case d.Action == domain.ActionWarn:
		return "Exercise caution. Verify the website's authenticity before proceeding."
	case d.Reason == domain.ReasonError:
		return "Could not analyze this URL."
	default:
		return "No significant phishing indicators detected."
	}
}
