// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/edusphere/console/internal/app/features/errors"
	"github.com/edusphere/console/internal/app/system/auditlog"
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/app/system/inputval"
	"github.com/edusphere/console/internal/app/system/timeouts"
	"github.com/edusphere/console/internal/app/system/viewdata"
	"github.com/edusphere/console/internal/edusphere"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger

	GoogleEnabled bool // show the Google sign-in button
	SplitName     bool // split display name into first/last at registration
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	googleEnabled bool,
	splitName bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      audit,
		GoogleEnabled: googleEnabled,
		SplitName:     splitName,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginPageData struct {
	viewdata.BaseVM
	Tab           string // "signin" | "register" | "forgot"
	Error         string
	Notice        string
	Email         string // re-filled on error
	Name          string
	ReturnURL     string
	GoogleEnabled bool
}

func (h *Handler) pageData(w http.ResponseWriter, r *http.Request, tab string) loginPageData {
	return loginPageData{
		BaseVM:        viewdata.NewBaseVM(w, r, h.SessionMgr, "Sign in", "/"),
		Tab:           tab,
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	}
}

// oauthFailureNotices maps ?error= codes set by the Google callback to
// user-facing banner text.
var oauthFailureNotices = map[string]string{
	"google_denied":         "Google sign-in was cancelled.",
	"google_failed":         "Google login failed.",
	"invalid_state":         "Sign-in session expired. Please try again.",
	"google_not_configured": "Google sign-in is not available.",
	"internal":              "Something went wrong. Please try again.",
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	tab := query.Get(r, "tab")
	if tab != "register" && tab != "forgot" {
		tab = "signin"
	}
	data := h.pageData(w, r, tab)
	if code := query.Get(r, "error"); code != "" {
		if msg, ok := oauthFailureNotices[code]; ok {
			data.Error = msg
		} else {
			data.Error = "Sign-in failed. Please try again."
		}
	}
	templates.Render(w, r, "login", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login (sign in)                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	returnURL := r.PostFormValue("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.SessionMgr.API().Login(ctx, email, password)
	if err != nil {
		h.ErrLog.LogError(r, "login failed", err)
		h.AuditLog.LoginFailed(ctx, r, email, "invalid credentials")

		data := h.pageData(w, r, "signin")
		data.Error = edusphere.ErrorMessage(err, "Invalid credentials.")
		data.Email = email
		data.ReturnURL = returnURL
		templates.Render(w, r, "login", data)
		return
	}

	h.finishSignIn(w, r, result, returnURL)
	h.AuditLog.LoginSuccess(r.Context(), r, result.User.ID, result.User.Email)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login/register                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	returnURL := r.PostFormValue("return")

	renderErr := func(msg string) {
		data := h.pageData(w, r, "register")
		data.Error = msg
		data.Name = name
		data.Email = email
		data.ReturnURL = returnURL
		templates.Render(w, r, "login", data)
	}

	if name == "" || password == "" {
		renderErr("Name and password are required.")
		return
	}
	if !inputval.ValidEmail(email) {
		renderErr("Please enter a valid email address.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.SessionMgr.API().Register(ctx, edusphere.RegisterParams{
		Name:      name,
		Email:     email,
		Password:  password,
		SplitName: h.SplitName,
	})
	if err != nil {
		h.ErrLog.LogError(r, "registration failed", err)
		renderErr(registrationMessage(err))
		return
	}

	h.finishSignIn(w, r, result, returnURL)
	h.AuditLog.Registered(r.Context(), r, result.User.ID, result.User.Email)
}

// registrationMessage resolves a registration error with the form's own
// field order: username, then email, then password, then the fallback.
func registrationMessage(err error) string {
	var apiErr *edusphere.APIError
	if !errors.As(err, &apiErr) {
		return "Registration failed."
	}
	if apiErr.Status == 0 {
		return edusphere.NetworkErrorMessage
	}
	for _, field := range []string{"username", "email", "password1"} {
		if msg := apiErr.Field(field); msg != "" {
			return msg
		}
	}
	return apiErr.Message("Registration failed.")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login/forgot                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleForgotPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))

	data := h.pageData(w, r, "forgot")
	data.Email = email

	if !inputval.ValidEmail(email) {
		data.Error = "Please enter a valid email address."
		templates.Render(w, r, "login", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.SessionMgr.API().ResetPassword(ctx, email); err != nil {
		h.ErrLog.LogError(r, "password reset request failed", err)
		data.Error = edusphere.ErrorMessage(err, "Failed to send reset email.")
		templates.Render(w, r, "login", data)
		return
	}

	h.AuditLog.PasswordResetRequested(r.Context(), r, email)
	data.Notice = "Check your inbox for a password reset link."
	data.Email = ""
	templates.Render(w, r, "login", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Shared                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// finishSignIn stores the token pair and sends the browser where the
// redirect policy says a fresh session should land.
func (h *Handler) finishSignIn(w http.ResponseWriter, r *http.Request, result *edusphere.AuthResult, returnURL string) {
	if err := h.SessionMgr.EstablishSession(w, r, result); err != nil {
		h.ErrLog.LogError(r, "establish session", err)
		data := h.pageData(w, r, "signin")
		data.Error = "Could not start your session. Please try again."
		templates.Render(w, r, "login", data)
		return
	}
	http.Redirect(w, r, auth.PostAuthRedirect(&result.User, returnURL), http.StatusSeeOther)
}
