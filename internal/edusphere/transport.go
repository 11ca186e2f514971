// internal/edusphere/transport.go
package edusphere

import (
	"bytes"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// TokenStore is the session-owned storage behind a bound client. The auth
// layer implements it on top of the cookie session; tests implement it
// in-memory. SetAccessToken is called when a refresh succeeds, Clear when
// the refresh token itself is rejected (session teardown).
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(token string)
	Clear()
}

// refreshFunc exchanges a refresh token for a new access token.
type refreshFunc func(req *http.Request, refreshToken string) (string, error)

// authTransport decorates a base RoundTripper with bearer credentials and a
// single refresh-and-replay cycle on 401. It is constructed per session
// bind, so its lifetime is exactly the session's; there is no shared
// interceptor registry to install into or leak from.
//
// Two requests failing with 401 at the same time each run their own
// refresh. The backend's refresh endpoint is idempotent, so the redundant
// call is wasteful but harmless; no de-duplication is attempted.
type authTransport struct {
	base    http.RoundTripper
	tokens  TokenStore
	refresh refreshFunc
	log     *zap.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	refreshToken := t.tokens.RefreshToken()
	if refreshToken == "" {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// The body cannot be replayed; surface the 401 as-is.
		return resp, nil
	}

	// Hold on to the original failure so it can be propagated verbatim if
	// the refresh does not pan out.
	origBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
	if readErr != nil {
		origBody = nil
	}
	resp.Body = io.NopCloser(bytes.NewReader(origBody))

	newAccess, refreshErr := t.refresh(req, refreshToken)
	if refreshErr != nil {
		// Refresh token rejected: tear the session down and surface the
		// original 401 to the caller.
		t.log.Info("token refresh failed, clearing session", zap.Error(refreshErr))
		t.tokens.Clear()
		return resp, nil
	}
	t.tokens.SetAccessToken(newAccess)

	// Replay the original request exactly once with the new token. The
	// replay goes straight to the base transport, so a second 401 cannot
	// trigger another refresh.
	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+newAccess)

	retryResp, retryErr := t.base.RoundTrip(retry)
	if retryErr != nil {
		return nil, retryErr
	}
	return retryResp, nil
}
