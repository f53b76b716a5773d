package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/httpserver/handlers"
)

func init() { Register(registerWhitelist) }

func registerWhitelist(r chi.Router, d deps.Deps) {
	r.Get("/whitelist", handlers.WhitelistGet(d))
	r.Post("/whitelist", handlers.WhitelistAdd(d))
	r.Delete("/whitelist", handlers.WhitelistRemove(d))
}
