// internal/app/features/passwordreset/routes.go
package passwordreset

import "github.com/go-chi/chi/v5"

// Routes is mounted at /password-reset.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/confirm/{uid}/{token}", h.ServeConfirm)
	r.Post("/confirm/{uid}/{token}", h.HandleConfirmPost)
	return r
}
