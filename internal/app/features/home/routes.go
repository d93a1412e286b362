// internal/app/features/home/routes.go
package home

import "github.com/go-chi/chi/v5"

// Routes serves the landing page. It is public; counts are only shown to
// signed-in users.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	r.Head("/", h.ServeRoot)
	return r
}
