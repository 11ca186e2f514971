// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/gorilla/securecookie"
	uierrors "github.com/edusphere/console/internal/app/features/errors"
	"github.com/edusphere/console/internal/app/system/auditlog"
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Session keys for the in-flight OAuth handshake. The state lives in the
// same signed cookie session as the tokens, so no server-side store is
// needed for the ten-odd seconds the flow takes.
const (
	stateKey  = "oauth_state"
	returnKey = "oauth_return"
)

// Handler drives the Google sign-in code flow. The console never inspects
// the Google identity itself; the backend receives the Google access token
// and decides who the user is.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://console.example.com/auth/google/callback"
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		ErrLog:       errLog,
		AuditLog:     audit,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/google/callback",
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.ErrLog.LogError(r, "generate OAuth state", err)
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("session decode failed starting OAuth flow", zap.Error(err))
	}
	sess.Values[stateKey] = state
	sess.Values[returnKey] = query.Get(r, "return")
	if err := sess.Save(r, w); err != nil {
		h.ErrLog.LogError(r, "save OAuth state", err)
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("session decode failed in OAuth callback", zap.Error(err))
	}
	wantState, _ := sess.Values[stateKey].(string)
	returnURL, _ := sess.Values[returnKey].(string)
	delete(sess.Values, stateKey)
	delete(sess.Values, returnKey)

	state := r.URL.Query().Get("state")
	if state == "" || wantState == "" || state != wantState {
		h.Log.Warn("invalid or expired OAuth state")
		_ = sess.Save(r, w)
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		_ = sess.Save(r, w)
		http.Redirect(w, r, "/login?error=google_failed", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.ErrLog.LogError(r, "exchange OAuth code", err)
		_ = sess.Save(r, w)
		http.Redirect(w, r, "/login?error=google_failed", http.StatusSeeOther)
		return
	}

	// Hand the Google access token to the backend; it verifies the token
	// with Google and issues the console's own pair.
	result, err := h.SessionMgr.API().GoogleLogin(ctx, token.AccessToken)
	if err != nil {
		h.ErrLog.LogError(r, "backend google login", err)
		_ = sess.Save(r, w)
		http.Redirect(w, r, "/login?error=google_failed", http.StatusSeeOther)
		return
	}

	if err := h.SessionMgr.EstablishSession(w, r, result); err != nil {
		h.ErrLog.LogError(r, "establish session after google login", err)
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	h.AuditLog.GoogleLogin(r.Context(), r, result.User.ID, result.User.Email)
	http.Redirect(w, r, auth.PostAuthRedirect(&result.User, returnURL), http.StatusSeeOther)
}

// generateState returns a URL-safe random state parameter.
func generateState() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", errors.New("random source unavailable")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
