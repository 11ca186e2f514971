// internal/app/features/dashboard/routes.go
package dashboard

import "github.com/go-chi/chi/v5"

// Routes serves the overview and the not-yet-built module pages. Mounted
// at / behind the signed-in guard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeOverview)
	r.Get("/students", h.placeholder("Students"))
	r.Get("/fees", h.placeholder("Fees"))
	r.Get("/upload", h.placeholder("Upload Data"))
	r.Get("/research", h.placeholder("Research AI"))
	r.Post("/theme", h.HandleThemeToggle)
	return r
}
