package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/genedata/internal/proteinservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *proteinservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/catalog", h.Catalog)
	r.Get("/records/{name}", h.GetRecord)

	// Queries.
	r.Get("/search", h.Search)
	r.Get("/diff", h.Diff)
	r.Get("/mode", h.Mode)
	r.Post("/report", h.Report)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
