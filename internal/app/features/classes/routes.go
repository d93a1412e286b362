// internal/app/features/classes/routes.go
package classes

import (
	"github.com/dalemusser/quickclass/internal/app/system/auth"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the list manager under /classes. Admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeManager)
	r.Post("/", h.HandleAction)
	return r
}

// APIRoutes mounts the JSON API under /api/classes. Admin sessions and
// bearer API tokens are both accepted.
func APIRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleSave)
	r.Post("/import", h.HandleImport)
	return r
}
