package staff_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/edusphere/console/internal/app/features/staff"
	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/domain/models"
	"github.com/edusphere/console/internal/edusphere"
	"github.com/edusphere/console/internal/testutil"
	"go.uber.org/zap"
)

type fixture struct {
	fb      *testutil.FakeBackend
	mgr     *auth.SessionManager
	handler *staff.Handler
	cookies []*http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fb := testutil.NewFakeBackend()
	t.Cleanup(fb.Close)

	api := edusphere.New(fb.URL(), zap.NewNop())
	mgr, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "edusphere_session", "", false, api, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := mgr.EstablishSession(rec, req, &edusphere.AuthResult{
		Access:  fb.AccessToken,
		Refresh: fb.RefreshToken,
		User:    *fb.User,
	}); err != nil {
		t.Fatalf("establish session: %v", err)
	}

	return &fixture{
		fb:      fb,
		mgr:     mgr,
		handler: staff.NewHandler(mgr, nil, nil, zap.NewNop()),
		cookies: rec.Result().Cookies(),
	}
}

func (f *fixture) post(target string, form url.Values) *http.Request {
	req := testutil.NewFormRequest(target, form)
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	return testutil.WithUser(req, testutil.AdminUser())
}

// popFlashes replays the response cookies to drain whatever the handler
// queued for the next page.
func (f *fixture) popFlashes(t *testing.T, rec *httptest.ResponseRecorder) []auth.Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return f.mgr.PopFlashes(httptest.NewRecorder(), req)
}

func requireFlash(t *testing.T, flashes []auth.Flash, kind, message string) {
	t.Helper()
	for _, fl := range flashes {
		if fl.Type == kind && fl.Message == message {
			return
		}
	}
	t.Errorf("missing %s flash %q, got %v", kind, message, flashes)
}

func TestHandleInvite_InvalidEmailMakesNoNetworkCall(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.HandleInvite(rec, f.post("/staff/invite", url.Values{
		"email": {"not-an-email"},
		"role":  {models.RoleStaff},
	}))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/staff" {
		t.Errorf("expected 303 to /staff, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if n := f.fb.CallCount(http.MethodPost, "/api/staff/"); n != 0 {
		t.Errorf("invalid email must not reach the backend; got %d calls", n)
	}
	requireFlash(t, f.popFlashes(t, rec), "error", "Please enter a valid email address.")
}

func TestHandleInvite_SendsExactlyOnePost(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.HandleInvite(rec, f.post("/staff/invite", url.Values{
		"email": {"new@test.com"},
		"role":  {models.RoleStaff},
	}))

	if n := f.fb.CallCount(http.MethodPost, "/api/staff/"); n != 1 {
		t.Errorf("expected exactly one invite POST, got %d", n)
	}
	if len(f.fb.Staff) != 1 || f.fb.Staff[0].Email != "new@test.com" {
		t.Errorf("backend did not record the invite: %+v", f.fb.Staff)
	}
	requireFlash(t, f.popFlashes(t, rec), "success", "Invitation sent to new@test.com!")
}

func TestHandleInvite_UnknownRoleCoercedToStaff(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.HandleInvite(rec, f.post("/staff/invite", url.Values{
		"email": {"new@test.com"},
		"role":  {"SUPERUSER"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if got := f.fb.Staff[0].RoleCode; got != models.RoleStaff {
		t.Errorf("expected role coerced to %q, got %q", models.RoleStaff, got)
	}
}

func TestHandleInvite_BackendErrorShownVerbatim(t *testing.T) {
	f := newFixture(t)
	f.fb.InviteError = &testutil.APIStub{
		Status: http.StatusBadRequest,
		Body:   map[string]any{"email": []string{"A staff member with this email already exists."}},
	}

	rec := httptest.NewRecorder()
	f.handler.HandleInvite(rec, f.post("/staff/invite", url.Values{
		"email": {"dupe@test.com"},
		"role":  {models.RoleStaff},
	}))

	requireFlash(t, f.popFlashes(t, rec), "error", "A staff member with this email already exists.")
}

func TestHandleToggle_SendsFullFlippedMap(t *testing.T) {
	f := newFixture(t)
	f.fb.Staff = []models.StaffMember{{
		ID:       100,
		Email:    "staff@test.com",
		RoleCode: models.RoleStaff,
		Permissions: map[string]bool{
			models.PermManageFees: true,
			models.PermUploadData: true,
		},
	}}

	form := url.Values{}
	form.Set("user_id", "100")
	form.Set("flag", models.PermManageStudents)
	form.Set("perm_"+models.PermManageFees, "1")
	form.Set("perm_"+models.PermUploadData, "1")
	form.Set("perm_"+models.PermManageStudents, "0")

	rec := httptest.NewRecorder()
	f.handler.HandleToggle(rec, f.post("/staff/permissions", form))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/staff" {
		t.Fatalf("expected 303 to /staff, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	want := map[string]bool{
		models.PermManageFees:     true,
		models.PermUploadData:     true,
		models.PermManageStudents: true,
	}
	got := f.fb.Staff[0].Permissions
	if len(got) != len(want) {
		t.Fatalf("expected the full mapping, got %v", got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("permission %s: got %v, want %v", k, got[k], v)
		}
	}
}

func TestHandleToggle_UnknownFlagRejected(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.HandleToggle(rec, f.post("/staff/permissions", url.Values{
		"user_id": {"100"},
		"flag":    {"can_launch_rockets"},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown flag, got %d", rec.Code)
	}
	if n := f.fb.CallCount(http.MethodPatch, "/api/staff/"); n != 0 {
		t.Errorf("unknown flag must not reach the backend; got %d calls", n)
	}
}

func TestHandleToggle_FailureFlashesAndRedirects(t *testing.T) {
	f := newFixture(t)
	f.fb.PatchError = &testutil.APIStub{
		Status: http.StatusForbidden,
		Body:   map[string]any{"detail": "You do not have permission to perform this action."},
	}

	form := url.Values{}
	form.Set("user_id", "100")
	form.Set("flag", models.PermManageFees)
	form.Set("perm_"+models.PermManageFees, "0")
	form.Set("perm_"+models.PermUploadData, "0")
	form.Set("perm_"+models.PermManageStudents, "0")

	rec := httptest.NewRecorder()
	f.handler.HandleToggle(rec, f.post("/staff/permissions", form))

	// Failure still redirects back: the redisplay refetches the real state.
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/staff" {
		t.Errorf("expected 303 to /staff, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	requireFlash(t, f.popFlashes(t, rec), "error", "Failed to save permission")
}

func TestHandleDelete_RemovesMember(t *testing.T) {
	f := newFixture(t)
	f.fb.Staff = []models.StaffMember{
		{ID: 100, Email: "a@test.com", RoleCode: models.RoleStaff},
		{ID: 101, Email: "b@test.com", RoleCode: models.RoleStaff},
	}

	rec := httptest.NewRecorder()
	f.handler.HandleDelete(rec, f.post("/staff/delete", url.Values{
		"user_id": {"100"},
	}))

	if len(f.fb.Staff) != 1 || f.fb.Staff[0].ID != 101 {
		t.Errorf("expected member 100 removed, got %+v", f.fb.Staff)
	}
	requireFlash(t, f.popFlashes(t, rec), "success", "Staff member removed.")
}

func TestServeList_ForbiddenRedirectsHome(t *testing.T) {
	f := newFixture(t)
	f.fb.StaffForbidden = true

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	req = testutil.WithUser(req, testutil.StaffUser())

	rec := httptest.NewRecorder()
	f.handler.ServeList(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
