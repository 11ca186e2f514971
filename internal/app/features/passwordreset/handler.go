// internal/app/features/passwordreset/handler.go
package passwordreset

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"

	uierrors "github.com/edusphere/console/internal/app/features/errors"
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/app/system/timeouts"
	"github.com/edusphere/console/internal/app/system/viewdata"
	"github.com/edusphere/console/internal/edusphere"
	"go.uber.org/zap"
)

// Handler serves the confirm step of the emailed password-reset link. The
// request step lives on the login page's forgot tab.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
	}
}

type confirmPageData struct {
	viewdata.BaseVM
	UID   string
	Token string
	Error string
}

// ServeConfirm handles GET /password-reset/confirm/{uid}/{token}.
func (h *Handler) ServeConfirm(w http.ResponseWriter, r *http.Request) {
	data := confirmPageData{
		BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Set a new password", "/login"),
		UID:    chi.URLParam(r, "uid"),
		Token:  chi.URLParam(r, "token"),
	}
	templates.Render(w, r, "password_reset_confirm", data)
}

// HandleConfirmPost handles the new-password submission. The uid/token pair
// rides along in hidden fields; validity is only known once the backend
// answers.
func (h *Handler) HandleConfirmPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	uid := chi.URLParam(r, "uid")
	token := chi.URLParam(r, "token")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("password_confirm")

	renderErr := func(msg string) {
		data := confirmPageData{
			BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Set a new password", "/login"),
			UID:    uid,
			Token:  token,
			Error:  msg,
		}
		templates.Render(w, r, "password_reset_confirm", data)
	}

	if password == "" {
		renderErr("Please enter a new password.")
		return
	}
	if password != confirm {
		renderErr("Passwords do not match.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.SessionMgr.API().ResetPasswordConfirm(ctx, uid, token, password); err != nil {
		h.ErrLog.LogError(r, "password reset confirm failed", err)
		renderErr(edusphere.ErrorMessage(err, "Invalid or expired link."))
		return
	}

	h.SessionMgr.AddFlash(w, r, "success", "Password reset successful. Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
