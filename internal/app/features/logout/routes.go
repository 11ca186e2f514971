// internal/app/features/logout/routes.go
package logout

import "github.com/go-chi/chi/v5"

// Routes serves /logout. Deliberately not behind RequireSignedIn: clearing
// a dead session must always work.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogout)
	return r
}
