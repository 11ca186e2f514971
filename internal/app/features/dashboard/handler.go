// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

type overviewData struct {
	viewdata.BaseVM
}

type placeholderData struct {
	viewdata.BaseVM
	Module string
}

// ServeOverview handles GET /.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	data := overviewData{
		BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Dashboard", "/"),
	}
	templates.Render(w, r, "dashboard_overview", data)
}

// placeholder returns a handler for a module that exists in the navigation
// but has no implementation yet.
func (h *Handler) placeholder(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := placeholderData{
			BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, title, "/"),
			Module: title,
		}
		templates.Render(w, r, "module_placeholder", data)
	}
}

// HandleThemeToggle flips the light/dark preference and bounces back.
func (h *Handler) HandleThemeToggle(w http.ResponseWriter, r *http.Request) {
	next := "dark"
	if c, err := r.Cookie("theme_pref"); err == nil && c.Value == "dark" {
		next = "light"
	}
	viewdata.SetTheme(w, next)

	back := r.Referer()
	if back == "" {
		back = "/"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
