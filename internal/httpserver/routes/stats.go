package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/httpserver/handlers"
)

func init() { Register(registerStats) }

func registerStats(r chi.Router, d deps.Deps) {
	r.Get("/stats", handlers.Stats(d))
	r.Delete("/stats", handlers.StatsReset(d))
	r.Delete("/cache", handlers.CacheClear(d))
}
