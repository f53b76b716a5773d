package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/httpserver/handlers"
)

func init() { Register(registerCheck) }

func registerCheck(r chi.Router, d deps.Deps) {
	r.Get("/check", handlers.Check(d))
	r.Post("/check/batch", handlers.CheckBatch(d))
}
