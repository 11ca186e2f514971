package edusphere_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/edusphere/console/internal/domain/models"
	"github.com/edusphere/console/internal/edusphere"
	"github.com/edusphere/console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memTokens is an in-memory TokenStore for exercising the bound client.
type memTokens struct {
	access, refresh string
	setCalls        int
	cleared         bool
}

func (m *memTokens) AccessToken() string  { return m.access }
func (m *memTokens) RefreshToken() string { return m.refresh }
func (m *memTokens) SetAccessToken(t string) {
	m.access = t
	m.setCalls++
}
func (m *memTokens) Clear() {
	m.access, m.refresh = "", ""
	m.cleared = true
}

func newBackend(t *testing.T) *testutil.FakeBackend {
	t.Helper()
	fb := testutil.NewFakeBackend()
	t.Cleanup(fb.Close)
	return fb
}

func TestLogin_Success(t *testing.T) {
	fb := newBackend(t)
	c := edusphere.New(fb.URL(), zap.NewNop())

	result, err := c.Login(context.Background(), "admin@test.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "access-0", result.Access)
	assert.Equal(t, "refresh-0", result.Refresh)
	assert.Equal(t, "admin@test.com", result.User.Email)
}

func TestLogin_BadCredentials(t *testing.T) {
	fb := newBackend(t)
	c := edusphere.New(fb.URL(), zap.NewNop())

	_, err := c.Login(context.Background(), "admin@test.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Unable to log in with provided credentials.",
		edusphere.ErrorMessage(err, "Invalid credentials."))
}

func TestLogin_NetworkError(t *testing.T) {
	fb := newBackend(t)
	fb.Close()
	c := edusphere.New(fb.URL(), zap.NewNop())

	_, err := c.Login(context.Background(), "admin@test.com", "correct horse")
	require.Error(t, err)
	assert.Equal(t, edusphere.NetworkErrorMessage,
		edusphere.ErrorMessage(err, "Invalid credentials."))
}

func TestMe_RefreshAndReplayOnce(t *testing.T) {
	fb := newBackend(t)
	c := edusphere.New(fb.URL(), zap.NewNop())

	// The stored access token is stale; only the refresh token is good.
	tokens := &memTokens{access: "stale", refresh: "refresh-0"}

	user, err := c.Bind(tokens).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin@test.com", user.Email)

	// Exactly one refresh, exactly two profile attempts (401 + replay).
	assert.Equal(t, 1, fb.CallCount(http.MethodPost, "/api/auth/token/refresh/"))
	assert.Equal(t, 2, fb.CallCount(http.MethodGet, "/api/user/me/"))
	assert.Equal(t, 1, tokens.setCalls)
	assert.NotEqual(t, "stale", tokens.AccessToken())
}

func TestMe_NoSecondRefreshAfterReplayed401(t *testing.T) {
	fb := newBackend(t)
	c := edusphere.New(fb.URL(), zap.NewNop())

	// Refresh succeeds but hands out a token the backend then rejects: the
	// replay's 401 must come back without another refresh attempt.
	fb.RefreshIssuesBadToken = true
	tokens := &memTokens{access: "stale", refresh: "refresh-0"}

	_, err := c.Bind(tokens).Me(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*edusphere.APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, 1, fb.CallCount(http.MethodPost, "/api/auth/token/refresh/"))
}

func TestMe_RefreshFailureClearsTokensAndKeeps401(t *testing.T) {
	fb := newBackend(t)
	fb.RefreshFails = true
	c := edusphere.New(fb.URL(), zap.NewNop())

	tokens := &memTokens{access: "stale", refresh: "refresh-0"}

	_, err := c.Bind(tokens).Me(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*edusphere.APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsUnauthorized(), "original 401 must be propagated")
	assert.True(t, tokens.cleared, "refresh failure must tear the session down")
	assert.Equal(t, 1, fb.CallCount(http.MethodGet, "/api/user/me/"))
}

func TestMe_NoRefreshTokenMeans401Passthrough(t *testing.T) {
	fb := newBackend(t)
	c := edusphere.New(fb.URL(), zap.NewNop())

	tokens := &memTokens{access: "stale"}

	_, err := c.Bind(tokens).Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, fb.CallCount(http.MethodPost, "/api/auth/token/refresh/"))
}

func TestUpdateStaffPermissions_SendsFullMapping(t *testing.T) {
	fb := newBackend(t)
	fb.Staff = []models.StaffMember{{
		ID:       100,
		Email:    "staff@test.com",
		RoleCode: models.RoleStaff,
		Status:   "Active",
		Permissions: map[string]bool{
			models.PermManageFees: true,
		},
	}}
	c := edusphere.New(fb.URL(), zap.NewNop())
	tokens := &memTokens{access: "access-0", refresh: "refresh-0"}

	perms := map[string]bool{
		models.PermManageFees:     true,
		models.PermUploadData:     true,
		models.PermManageStudents: false,
	}
	err := c.Bind(tokens).UpdateStaffPermissions(context.Background(), 100, perms)
	require.NoError(t, err)

	assert.Equal(t, perms, fb.Staff[0].Permissions, "backend must receive the whole map")
}

func TestDeleteStaff_ByQueryID(t *testing.T) {
	fb := newBackend(t)
	fb.Staff = []models.StaffMember{
		{ID: 100, Email: "a@test.com", RoleCode: models.RoleStaff},
		{ID: 101, Email: "b@test.com", RoleCode: models.RoleStaff},
	}
	c := edusphere.New(fb.URL(), zap.NewNop())
	tokens := &memTokens{access: "access-0", refresh: "refresh-0"}

	err := c.Bind(tokens).DeleteStaff(context.Background(), 100)
	require.NoError(t, err)

	require.Len(t, fb.Staff, 1)
	assert.Equal(t, int64(101), fb.Staff[0].ID)
}

func TestRegister_SplitName(t *testing.T) {
	fb := newBackend(t)
	c := edusphere.New(fb.URL(), zap.NewNop())

	_, err := c.Register(context.Background(), edusphere.RegisterParams{
		Name:      "Asha Verma Rao",
		Email:     "asha@test.com",
		Password:  "s3cret!pass",
		SplitName: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fb.CallCount(http.MethodPost, "/api/auth/registration/"))
}
