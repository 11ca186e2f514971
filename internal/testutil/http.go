package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/domain/models"
)

// AdminUser returns a fully onboarded org admin.
func AdminUser() *models.User {
	return &models.User{
		ID:              1,
		Name:            "Test Admin",
		Email:           "admin@test.com",
		Role:            "Org Admin",
		RoleCode:        models.RoleOrgAdmin,
		Organization:    "Test School",
		IsSetupComplete: true,
	}
}

// StaffUser returns an onboarded staff member carrying the given permission
// flags.
func StaffUser(perms ...string) *models.User {
	p := map[string]bool{}
	for _, k := range perms {
		p[k] = true
	}
	return &models.User{
		ID:              2,
		Name:            "Test Staff",
		Email:           "staff@test.com",
		Role:            "Staff",
		RoleCode:        models.RoleStaff,
		Organization:    "Test School",
		IsSetupComplete: true,
		Permissions:     p,
	}
}

// NewAdminBeforeSetup returns an admin who has not completed onboarding.
func NewAdminBeforeSetup() *models.User {
	u := AdminUser()
	u.IsSetupComplete = false
	u.Organization = ""
	return u
}

// WithUser adds a user to the request context, bypassing the session
// middleware.
func WithUser(r *http.Request, u *models.User) *http.Request {
	return auth.WithUser(r, u)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, u *models.User) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), u)
}

// NewFormRequest creates a POST request with form-encoded values and the
// right Content-Type header.
func NewFormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	if location := r.Header().Get("Location"); location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
