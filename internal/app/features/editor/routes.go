// internal/app/features/editor/routes.go
package editor

import (
	"github.com/dalemusser/quickclass/internal/app/system/auth"
	"github.com/dalemusser/quickclass/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the block editor under /blocks.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(authz.BlockEditorRoles...))

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeBlock)
	r.Post("/{id}/selector", h.HandleSelector)
	return r
}

// APIRoutes mounts the editor's JSON endpoints under /api/editor.
func APIRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(authz.BlockEditorRoles...))
	r.Get("/classes", h.ServeClasses)
	return r
}
