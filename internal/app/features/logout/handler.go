// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/edusphere/console/internal/app/system/auditlog"
	"github.com/edusphere/console/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// ServeLogout handles GET /logout. Works from any state, including
// mid-onboarding; the tokens are simply dropped and the backend never
// hears about it (it has no logout endpoint).
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, u.ID, u.Email)
	}

	h.SessionMgr.ClearSession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
