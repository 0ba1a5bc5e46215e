package search

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the /searches router. Basic-tier searches are open to
// anonymous callers, so Run takes optional auth.
func (h *Handler) Routes(authMiddleware, optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Post("/", h.Run)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.History)
	})

	return r
}

// UtilityRoutes returns the /search router with the tier catalog and the
// advisory pre-check.
func (h *Handler) UtilityRoutes(optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/tiers", h.Tiers)

	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Post("/validate", h.Validate)
	})

	return r
}
