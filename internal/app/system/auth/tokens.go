// internal/app/system/auth/tokens.go
package auth

import "github.com/gorilla/sessions"

// SessionTokens adapts a cookie session to edusphere.TokenStore. The
// adapter only mutates the in-memory session; callers persist by saving
// the session once the backend call settles, so a request makes at most
// one Set-Cookie write.
type SessionTokens struct {
	sess  *sessions.Session
	dirty bool
}

// NewSessionTokens wraps sess. The session may be freshly created (no
// cookie yet); both token reads then come back empty.
func NewSessionTokens(sess *sessions.Session) *SessionTokens {
	return &SessionTokens{sess: sess}
}

func (t *SessionTokens) AccessToken() string {
	v, _ := t.sess.Values[accessTokenKey].(string)
	return v
}

func (t *SessionTokens) RefreshToken() string {
	v, _ := t.sess.Values[refreshTokenKey].(string)
	return v
}

// SetAccessToken records a rotated access token. The refresh token is
// untouched; the backend does not rotate it on refresh.
func (t *SessionTokens) SetAccessToken(token string) {
	t.sess.Values[accessTokenKey] = token
	t.dirty = true
}

// Clear drops both tokens (session teardown from the refresh-failure path).
func (t *SessionTokens) Clear() {
	delete(t.sess.Values, accessTokenKey)
	delete(t.sess.Values, refreshTokenKey)
	t.dirty = true
}

// Dirty reports whether the session needs saving.
func (t *SessionTokens) Dirty() bool { return t.dirty }
