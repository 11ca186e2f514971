package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/edusphere/console/internal/domain/models"
)

// FakeBackend is an in-memory stand-in for the EduSphere REST API. It
// implements the endpoints the console calls and counts requests so tests
// can assert on exact call behavior (one invite POST, one refresh, etc.).
type FakeBackend struct {
	Server *httptest.Server

	mu sync.Mutex

	// Credentials and tokens
	Password     string // accepted password for LoginUser
	AccessToken  string // token the backend currently accepts
	RefreshToken string // refresh token it honors
	RefreshFails bool   // refresh endpoint returns 401 when true

	// RefreshIssuesBadToken makes the refresh endpoint hand out a token
	// the backend will not accept, so the replayed request 401s again.
	RefreshIssuesBadToken bool

	// Profile returned by /api/user/me/ and auth responses
	User *models.User

	// Staff state
	Staff []models.StaffMember

	// Forced failures
	StaffForbidden  bool // all /api/staff/ calls return 403
	InviteError     *APIStub
	PatchError      *APIStub
	SetupError      *APIStub
	SetupDone       bool // setup-organization already called once
	ResetConfirmBad bool // password reset confirm returns 400

	// Request counters keyed by "METHOD path"
	Calls map[string]int
}

// APIStub is a canned error response.
type APIStub struct {
	Status int
	Body   map[string]any
}

// NewFakeBackend starts the fake server with sensible defaults: a known
// user, a valid token pair, and an empty staff list. Callers mutate the
// fields before exercising handlers. Close the server via t.Cleanup.
func NewFakeBackend() *FakeBackend {
	fb := &FakeBackend{
		Password:     "correct horse",
		AccessToken:  "access-0",
		RefreshToken: "refresh-0",
		User:         AdminUser(),
		Calls:        map[string]int{},
	}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.route))
	return fb
}

// URL returns the fake backend's base URL.
func (fb *FakeBackend) URL() string { return fb.Server.URL }

// Close shuts down the server.
func (fb *FakeBackend) Close() { fb.Server.Close() }

// CallCount returns how many requests hit "METHOD path".
func (fb *FakeBackend) CallCount(method, path string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.Calls[method+" "+path]
}

func (fb *FakeBackend) route(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.Calls[r.Method+" "+r.URL.Path]++
	fb.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login/":
		fb.handleLogin(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/registration/":
		fb.authResult(w)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/google/":
		fb.authResult(w)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/token/refresh/":
		fb.handleRefresh(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/password/reset/":
		writeJSON(w, http.StatusOK, map[string]string{"detail": "Password reset e-mail has been sent."})
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/password/reset/confirm/":
		if fb.ResetConfirmBad {
			writeJSON(w, http.StatusBadRequest, map[string]any{"token": []string{"Invalid value"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"detail": "Password has been reset."})
	case r.Method == http.MethodGet && r.URL.Path == "/api/user/me/":
		fb.requireAuth(w, r, func() {
			fb.mu.Lock()
			u := fb.User
			fb.mu.Unlock()
			writeJSON(w, http.StatusOK, u)
		})
	case r.Method == http.MethodPost && r.URL.Path == "/api/setup-organization/":
		fb.requireAuth(w, r, func() { fb.handleSetup(w, r) })
	case strings.HasPrefix(r.URL.Path, "/api/staff/") || r.URL.Path == "/api/staff/":
		fb.requireAuth(w, r, func() { fb.handleStaff(w, r) })
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
}

func (fb *FakeBackend) requireAuth(w http.ResponseWriter, r *http.Request, next func()) {
	fb.mu.Lock()
	want := "Bearer " + fb.AccessToken
	fb.mu.Unlock()
	if r.Header.Get("Authorization") != want {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return
	}
	next()
}

func (fb *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	fb.mu.Lock()
	ok := in.Password == fb.Password
	fb.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"non_field_errors": []string{"Unable to log in with provided credentials."},
		})
		return
	}
	fb.authResult(w)
}

func (fb *FakeBackend) authResult(w http.ResponseWriter) {
	fb.mu.Lock()
	out := map[string]any{
		"access":  fb.AccessToken,
		"refresh": fb.RefreshToken,
		"user":    fb.User,
	}
	fb.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// handleRefresh rotates the access token when given the honored refresh
// token. The refresh token itself never rotates, matching the backend.
func (fb *FakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	fb.mu.Lock()
	if fb.RefreshFails || in.Refresh != fb.RefreshToken {
		fb.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}
	var token string
	if fb.RefreshIssuesBadToken {
		token = "bad-token"
	} else {
		n := fb.Calls["POST /api/auth/token/refresh/"]
		fb.AccessToken = "access-" + strconv.Itoa(n)
		token = fb.AccessToken
	}
	fb.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"access": token})
}

func (fb *FakeBackend) handleSetup(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	if fb.SetupError != nil {
		stub := fb.SetupError
		fb.mu.Unlock()
		writeJSON(w, stub.Status, stub.Body)
		return
	}
	if fb.SetupDone {
		fb.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Organization setup is already complete."})
		return
	}
	var in models.OrganizationSetup
	_ = json.NewDecoder(r.Body).Decode(&in)
	fb.SetupDone = true
	fb.User.IsSetupComplete = true
	fb.User.Organization = in.Name
	fb.User.Designation = in.Designation
	fb.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"detail": "Organization created."})
}

func (fb *FakeBackend) handleStaff(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.StaffForbidden {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
		return
	}

	switch r.Method {
	case http.MethodGet:
		members := fb.Staff
		if members == nil {
			members = []models.StaffMember{}
		}
		writeJSON(w, http.StatusOK, members)

	case http.MethodPost:
		if fb.InviteError != nil {
			writeJSON(w, fb.InviteError.Status, fb.InviteError.Body)
			return
		}
		var in struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		fb.Staff = append(fb.Staff, models.StaffMember{
			ID:          int64(100 + len(fb.Staff)),
			Email:       in.Email,
			RoleCode:    in.Role,
			Status:      "Invited",
			Permissions: map[string]bool{},
		})
		writeJSON(w, http.StatusCreated, map[string]string{"detail": "Invitation sent."})

	case http.MethodPatch:
		if fb.PatchError != nil {
			writeJSON(w, fb.PatchError.Status, fb.PatchError.Body)
			return
		}
		var in struct {
			UserID      int64           `json:"user_id"`
			Permissions map[string]bool `json:"permissions"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		for i := range fb.Staff {
			if fb.Staff[i].ID == in.UserID {
				fb.Staff[i].Permissions = in.Permissions
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"detail": "Permissions updated."})

	case http.MethodDelete:
		id, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		kept := fb.Staff[:0]
		for _, m := range fb.Staff {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		fb.Staff = kept
		writeJSON(w, http.StatusNoContent, nil)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method not allowed."})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil && status != http.StatusNoContent {
		_ = json.NewEncoder(w).Encode(v)
	}
}
