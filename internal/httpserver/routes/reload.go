package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/httpserver/handlers"
)

func init() { Register(registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	r.Post("/policy/reload", handlers.PolicyReload(d))
}
