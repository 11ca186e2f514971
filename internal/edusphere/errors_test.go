package edusphere_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edusphere/console/internal/edusphere"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// errorBackend returns a server that always fails with the given status
// and JSON body.
func errorBackend(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loginErr(t *testing.T, srv *httptest.Server) *edusphere.APIError {
	t.Helper()
	c := edusphere.New(srv.URL, zap.NewNop())
	_, err := c.Login(context.Background(), "a@b.co", "pw")
	require.Error(t, err)
	apiErr, ok := err.(*edusphere.APIError)
	require.True(t, ok)
	return apiErr
}

func TestMessage_PasswordFieldWins(t *testing.T) {
	srv := errorBackend(t, 400, `{
		"detail": "Bad request",
		"non_field_errors": ["Something else"],
		"password1": ["This password is too short."]
	}`)

	assert.Equal(t, "This password is too short.", loginErr(t, srv).Message(""))
}

func TestMessage_UsernameBeatsNonField(t *testing.T) {
	srv := errorBackend(t, 400, `{
		"non_field_errors": ["Nope"],
		"username": ["A user with that username already exists."]
	}`)

	assert.Equal(t, "A user with that username already exists.", loginErr(t, srv).Message(""))
}

func TestMessage_TokenBeatsDetail(t *testing.T) {
	srv := errorBackend(t, 400, `{
		"detail": "Invalid input.",
		"token": ["Invalid value"]
	}`)

	assert.Equal(t, "Invalid value", loginErr(t, srv).Message(""))
}

func TestMessage_DetailString(t *testing.T) {
	srv := errorBackend(t, 403, `{"detail": "You do not have permission to perform this action."}`)

	apiErr := loginErr(t, srv)
	assert.True(t, apiErr.IsForbidden())
	assert.Equal(t, "You do not have permission to perform this action.", apiErr.Message(""))
}

func TestMessage_BareStringBody(t *testing.T) {
	srv := errorBackend(t, 400, `"Organization setup is already complete."`)

	assert.Equal(t, "Organization setup is already complete.", loginErr(t, srv).Message(""))
}

func TestMessage_UnparseableBodyFallsBack(t *testing.T) {
	srv := errorBackend(t, 502, `<html>Bad Gateway</html>`)

	assert.Equal(t, "Invalid credentials.", loginErr(t, srv).Message("Invalid credentials."))
}

func TestMessage_EmptyFallbackUsesGeneric(t *testing.T) {
	srv := errorBackend(t, 500, `{}`)

	assert.Equal(t, edusphere.GenericErrorMessage, loginErr(t, srv).Message(""))
}

func TestField_ArrayAndStringShapes(t *testing.T) {
	srv := errorBackend(t, 400, `{"email": ["Enter a valid email address."], "uid": "Invalid value"}`)

	apiErr := loginErr(t, srv)
	assert.Equal(t, "Enter a valid email address.", apiErr.Field("email"))
	assert.Equal(t, "Invalid value", apiErr.Field("uid"))
	assert.Equal(t, "", apiErr.Field("missing"))
}
