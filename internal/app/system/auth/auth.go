// internal/app/system/auth/auth.go
package auth

// Session layout:
//   - access_token / refresh_token: the opaque bearer pair issued by the
//     EduSphere backend. These are the only durable things the console
//     keeps; everything else is refetched per request.
//   - flashes: one-shot notifications (gorilla session flashes).
//
// Token validity is never judged locally; the backend's response codes are
// the only authority (a 401 triggers the client's single refresh cycle).

import (
	"context"
	"encoding/gob"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/edusphere/console/internal/app/system/timeouts"
	"github.com/edusphere/console/internal/domain/models"
	"github.com/edusphere/console/internal/edusphere"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
)

// Flash is a one-shot notification rendered as a toast on the next page.
type Flash struct {
	Type    string // "success" | "error"
	Message string
}

func init() {
	gob.Register(Flash{})
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// SessionManager owns the cookie session holding the backend token pair,
// rebuilds the current user from the backend on each request, and provides
// the route-guard and redirect-policy middleware.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	api   *edusphere.Client
	log   *zap.Logger
}

// NewSessionManager builds a manager over a cookie store signed with
// sessionKey. The `secure` flag controls the Secure cookie attribute;
// SameSite stays Lax so the OAuth callback redirect carries the cookie.
func NewSessionManager(sessionKey, sessionName, domain string, secure bool, api *edusphere.Client, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store: store,
		name:  sessionName,
		api:   api,
		log:   logger,
	}, nil
}

// Store exposes the underlying cookie store (logout needs its options).
func (m *SessionManager) Store() *sessions.CookieStore { return m.store }

// API returns the backend client the manager authenticates against.
func (m *SessionManager) API() *edusphere.Client { return m.api }

// GetSession returns the request's session, creating a fresh one when the
// cookie is missing or undecodable.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, m.name)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-user helpers                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// CurrentUser returns the user loaded by LoadSessionUser, if any.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*models.User)
	return u, ok
}

// WithUser injects a user into the request context. Exported for tests;
// handlers should read via CurrentUser.
func WithUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser rebuilds the current user on every request. If an access
// token is stored, the profile is fetched through the refresh-aware client
// binding; a fetch failure clears both tokens (forced logout) and the
// request continues anonymously. No token means anonymous immediately.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.GetSession(r)
		if err != nil {
			m.log.Warn("session decode failed; continuing anonymous", zap.Error(err))
		}

		tokens := NewSessionTokens(sess)
		if tokens.AccessToken() == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		user, err := m.api.Bind(tokens).Me(ctx)
		cancel()

		if err != nil {
			// The refresh already had its one chance inside the client;
			// any failure here ends the session.
			m.log.Info("profile fetch failed; clearing session", zap.Error(err))
			tokens.Clear()
			if saveErr := sess.Save(r, w); saveErr != nil {
				m.log.Error("save session after teardown", zap.Error(saveErr))
			}
			next.ServeHTTP(w, r)
			return
		}

		// Persist a rotated access token, if the client refreshed one.
		if tokens.Dirty() {
			if saveErr := sess.Save(r, w); saveErr != nil {
				m.log.Error("save session after refresh", zap.Error(saveErr))
			}
		}

		next.ServeHTTP(w, WithUser(r, user))
	})
}

// RequireSignedIn is the route guard for protected pages. Anonymous
// requests are redirected to /login with the originally requested location
// preserved for post-login return; non-HTML callers get a plain 401.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		if wantsHTML(r) {
			ret := url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// policyExempt lists path prefixes the redirect policy never touches:
// logout must stay reachable mid-onboarding, and static assets, health,
// and the OAuth callback are not page navigations.
var policyExempt = []string{"/logout", "/static", "/health", "/auth/"}

// RedirectPolicy enforces post-authentication navigation on every request
// made with a live session:
//   - setup incomplete: go to /setup (unless already there, to avoid a loop)
//   - setup complete but sitting on /login or /setup: go to the dashboard
//   - anywhere else: stay put (deep links are respected)
//
// Anonymous requests pass through untouched.
func (m *SessionManager) RedirectPolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		path := r.URL.Path
		for _, prefix := range policyExempt {
			if strings.HasPrefix(path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		onSetup := path == "/setup" || strings.HasPrefix(path, "/setup/")
		switch {
		case !u.IsSetupComplete && !onSetup:
			http.Redirect(w, r, "/setup", http.StatusSeeOther)
		case u.IsSetupComplete && (onSetup || path == "/login"):
			http.Redirect(w, r, "/", http.StatusSeeOther)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session lifecycle                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// EstablishSession stores a freshly issued token pair. Called after
// successful login, registration, and Google sign-in.
func (m *SessionManager) EstablishSession(w http.ResponseWriter, r *http.Request, result *edusphere.AuthResult) error {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Warn("session decode failed during login, using fresh session", zap.Error(err))
	}
	sess.Values[accessTokenKey] = result.Access
	sess.Values[refreshTokenKey] = result.Refresh
	return sess.Save(r, w)
}

// PostAuthRedirect returns where a just-authenticated user should land:
// the onboarding wizard until setup completes, then the requested return
// URL (if local), then the dashboard root.
func PostAuthRedirect(u *models.User, returnURL string) string {
	if u != nil && !u.IsSetupComplete {
		return "/setup"
	}
	if returnURL != "" && strings.HasPrefix(returnURL, "/") && !strings.HasPrefix(returnURL, "//") {
		return returnURL
	}
	return "/"
}

// ClearSession removes both tokens and expires the cookie. Callable from
// any state; the caller decides where to navigate afterwards.
func (m *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Warn("session decode failed during logout", zap.Error(err))
	}

	// Match the deletion cookie to the store's settings so browsers
	// actually drop it.
	if opts := m.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1

	if err := sess.Save(r, w); err != nil {
		m.log.Error("logout: save session", zap.Error(err))
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Flash notifications                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// AddFlash queues a one-shot notification for the next rendered page.
func (m *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Warn("session decode failed while adding flash", zap.Error(err))
	}
	sess.AddFlash(Flash{Type: kind, Message: message})
	if err := sess.Save(r, w); err != nil {
		m.log.Error("save session after flash", zap.Error(err))
	}
}

// PopFlashes drains and returns queued notifications.
func (m *SessionManager) PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := m.GetSession(r)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		m.log.Error("save session after draining flashes", zap.Error(err))
	}
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html")
}
