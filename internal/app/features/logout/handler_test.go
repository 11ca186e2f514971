package logout_test

import (
	"net/http"
	"testing"

	"github.com/edusphere/console/internal/app/features/logout"
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/edusphere"
	"github.com/edusphere/console/internal/testutil"
	"go.uber.org/zap"
)

func newSessionMgr(t *testing.T) *auth.SessionManager {
	t.Helper()
	api := edusphere.New("http://backend.invalid", zap.NewNop())
	mgr, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "edusphere_session", "", false, api, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return mgr
}

func TestServeLogout_RedirectsToLogin(t *testing.T) {
	mgr := newSessionMgr(t)
	h := logout.NewHandler(mgr, nil, zap.NewNop())

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/logout", testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.ServeLogout(rec, req)

	rec.AssertRedirect(t, "/login")
}

func TestServeLogout_AnonymousStillWorks(t *testing.T) {
	mgr := newSessionMgr(t)
	h := logout.NewHandler(mgr, nil, zap.NewNop())

	req := testutil.NewRequest(http.MethodGet, "/logout")
	rec := testutil.NewRecorder()

	h.ServeLogout(rec, req)

	rec.AssertRedirect(t, "/login")

	// The deletion cookie must be present and expired.
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "edusphere_session" && c.MaxAge < 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected an expired session cookie")
	}
}
