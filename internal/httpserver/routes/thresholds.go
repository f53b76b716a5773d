package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/httpserver/handlers"
)

func init() { Register(registerThresholds) }

func registerThresholds(r chi.Router, d deps.Deps) {
	r.Get("/thresholds", handlers.ThresholdsGet(d))
	r.Put("/thresholds/profile", handlers.ThresholdsSetProfile(d))
	r.Put("/thresholds/custom", handlers.ThresholdsSetCustom(d))
}
