package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/coursedocs/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// runner, if non-nil, is exposed at POST /runs to trigger a pipeline pass.
func NewRouter(svc *docservice.Service, runner Runner, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc, runner)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/*", h.GetDocument)

	r.Get("/search", h.Search)

	r.Get("/runs/latest", h.LatestRun)
	if runner != nil {
		r.Post("/runs", h.TriggerRun)
	}

	return r
}
