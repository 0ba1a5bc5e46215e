package listing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns listing router. Browsing is public; mutations need an
// agent account.
func (h *Handler) Routes(authMiddleware, requireAgent func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(requireAgent)

		r.Post("/", h.Create)
		r.Get("/mine", h.ListMine)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)

		r.Post("/{id}/photos/presign", h.PresignPhoto)
		r.Post("/{id}/photos/confirm", h.ConfirmPhoto)
		r.Delete("/{id}/photos/{photoID}", h.DeletePhoto)
	})

	return r
}
