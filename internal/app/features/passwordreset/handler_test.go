package passwordreset_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/edusphere/console/internal/app/features/passwordreset"
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/edusphere"
	"github.com/edusphere/console/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (chi.Router, *testutil.FakeBackend) {
	t.Helper()
	fb := testutil.NewFakeBackend()
	t.Cleanup(fb.Close)

	api := edusphere.New(fb.URL(), zap.NewNop())
	sessionMgr, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "edusphere_session", "", false, api, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	handler := passwordreset.NewHandler(sessionMgr, nil, zap.NewNop())
	return passwordreset.Routes(handler), fb
}

func TestHandleConfirmPost_Success(t *testing.T) {
	router, fb := newTestRouter(t)

	form := url.Values{
		"password":         {"new-pass-123"},
		"password_confirm": {"new-pass-123"},
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewFormRequest("/confirm/uid123/tok456", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/login" {
		t.Errorf("Location: got %q, want %q", location, "/login")
	}
	if n := fb.CallCount(http.MethodPost, "/api/auth/password/reset/confirm/"); n != 1 {
		t.Errorf("expected one confirm POST, got %d", n)
	}
}

func TestHandleConfirmPost_MismatchStaysLocal(t *testing.T) {
	router, fb := newTestRouter(t)

	form := url.Values{
		"password":         {"new-pass-123"},
		"password_confirm": {"different"},
	}

	rec := httptest.NewRecorder()

	// Re-renders the form, which panics without initialized templates
	func() {
		defer func() { recover() }()
		router.ServeHTTP(rec, testutil.NewFormRequest("/confirm/uid123/tok456", form))
	}()

	if n := fb.CallCount(http.MethodPost, "/api/auth/password/reset/confirm/"); n != 0 {
		t.Errorf("mismatched passwords must not reach the backend; got %d calls", n)
	}
}

func TestHandleConfirmPost_EmptyPasswordStaysLocal(t *testing.T) {
	router, fb := newTestRouter(t)

	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		router.ServeHTTP(rec, testutil.NewFormRequest("/confirm/uid123/tok456", url.Values{}))
	}()

	if n := fb.CallCount(http.MethodPost, "/api/auth/password/reset/confirm/"); n != 0 {
		t.Errorf("empty password must not reach the backend; got %d calls", n)
	}
}

func TestHandleConfirmPost_ExpiredLink(t *testing.T) {
	router, fb := newTestRouter(t)
	fb.ResetConfirmBad = true

	form := url.Values{
		"password":         {"new-pass-123"},
		"password_confirm": {"new-pass-123"},
	}

	rec := httptest.NewRecorder()

	// The backend rejects the token; the form re-renders with the error
	func() {
		defer func() { recover() }()
		router.ServeHTTP(rec, testutil.NewFormRequest("/confirm/uid123/expired", form))
	}()

	if rec.Code == http.StatusSeeOther {
		t.Error("a rejected token must not redirect to /login")
	}
	if n := fb.CallCount(http.MethodPost, "/api/auth/password/reset/confirm/"); n != 1 {
		t.Errorf("expected the rejected POST to be attempted once, got %d", n)
	}
}
