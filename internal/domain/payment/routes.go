package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns payment router. The webhook stays outside auth, the
// gateway authenticates with its HMAC signature instead.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/packages", h.Packages)
	r.Post("/webhook", h.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/checkout", h.Checkout)
		r.Get("/", h.History)
	})

	return r
}
