// internal/app/features/staff/routes.go
package staff

import (
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /staff behind the signed-in guard; the admin gate
// itself is the backend's (a 403 on the list redirects home).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Post("/invite", h.HandleInvite)
		pr.Post("/permissions", h.HandleToggle)
		pr.Post("/delete", h.HandleDelete)
	})
	return r
}
