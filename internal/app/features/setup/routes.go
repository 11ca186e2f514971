// internal/app/features/setup/routes.go
package setup

import (
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeWizard)
		pr.Post("/", h.HandleStep)
	})
	return r
}
