// internal/edusphere/client.go
//
// Client for the EduSphere REST backend. The console keeps no data of its
// own: every read and mutation in the app goes through here. Unauthenticated
// operations (login, registration, password reset, token refresh) hang off
// Client; bearer-authenticated operations hang off Session, which wraps the
// per-request token store in a refresh-and-replay transport.
package edusphere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/edusphere/console/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New creates a client for the backend at baseURL (no trailing slash
// required). The underlying http.Client carries no timeout of its own;
// callers bound operations with contexts.
func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logger,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SetHTTPClient swaps the underlying HTTP client (tests).
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

/*─────────────────────────────────────────────────────────────────────────────*
| Unauthenticated operations                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Login exchanges credentials for a token pair and the signed-in user.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, c.http, http.MethodPost, "/api/auth/login/", loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. The backend requires the email doubled as
// username and the password sent twice; name handling follows p.SplitName.
func (c *Client) Register(ctx context.Context, p RegisterParams) (*AuthResult, error) {
	first := strings.TrimSpace(p.Name)
	last := ""
	if p.SplitName {
		parts := strings.Fields(first)
		if len(parts) > 0 {
			first = parts[0]
			last = strings.Join(parts[1:], " ")
		}
	}

	body := registrationRequest{
		Username:  p.Email,
		Email:     p.Email,
		Password1: p.Password,
		Password2: p.Password,
		FirstName: first,
		LastName:  last,
	}

	var out AuthResult
	if err := c.do(ctx, c.http, http.MethodPost, "/api/auth/registration/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GoogleLogin forwards a Google OAuth access token to the backend, which
// verifies it and issues the console's own token pair.
func (c *Client) GoogleLogin(ctx context.Context, accessToken string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, c.http, http.MethodPost, "/api/auth/google/", googleLoginRequest{AccessToken: accessToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshAccessToken exchanges a refresh token for a fresh access token.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	var out refreshResponse
	err := c.do(ctx, c.http, http.MethodPost, "/api/auth/token/refresh/", refreshRequest{Refresh: refreshToken}, &out)
	if err != nil {
		return "", err
	}
	return out.Access, nil
}

// ResetPassword asks the backend to email a reset link. It does not touch
// session state.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.do(ctx, c.http, http.MethodPost, "/api/auth/password/reset/", passwordResetRequest{Email: email}, nil)
}

// ResetPasswordConfirm completes a reset with the uid/token pair from the
// emailed link.
func (c *Client) ResetPasswordConfirm(ctx context.Context, uid, token, newPassword string) error {
	body := passwordResetConfirmRequest{
		UID:          uid,
		Token:        token,
		NewPassword1: newPassword,
		NewPassword2: newPassword,
	}
	return c.do(ctx, c.http, http.MethodPost, "/api/auth/password/reset/confirm/", body, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session binding                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// Session is the client bound to one request's token store. Its transport
// attaches the bearer token and runs at most one refresh-and-replay cycle
// per call; the binding (and thus the interceptor) lives exactly as long
// as the request.
type Session struct {
	c    *Client
	http *http.Client
}

// Bind wraps the client around a token store.
func (c *Client) Bind(tokens TokenStore) *Session {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	refresh := func(req *http.Request, refreshToken string) (string, error) {
		return c.RefreshAccessToken(req.Context(), refreshToken)
	}
	return &Session{
		c: c,
		http: &http.Client{
			Timeout: c.http.Timeout,
			Transport: &authTransport{
				base:    base,
				tokens:  tokens,
				refresh: refresh,
				log:     c.log,
			},
		},
	}
}

// Me fetches the current user's profile.
func (s *Session) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := s.c.do(ctx, s.http, http.MethodGet, "/api/user/me/", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetupOrganization submits the write-once onboarding record.
func (s *Session) SetupOrganization(ctx context.Context, setup models.OrganizationSetup) error {
	return s.c.do(ctx, s.http, http.MethodPost, "/api/setup-organization/", setup, nil)
}

// ListStaff returns the caller's organization members.
func (s *Session) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	var members []models.StaffMember
	if err := s.c.do(ctx, s.http, http.MethodGet, "/api/staff/", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// InviteStaff creates an invited member with the given role.
func (s *Session) InviteStaff(ctx context.Context, email, role string) error {
	return s.c.do(ctx, s.http, http.MethodPost, "/api/staff/", staffInviteRequest{Email: email, Role: role}, nil)
}

// UpdateStaffPermissions replaces a member's full permissions mapping.
// Partial diffs are not supported by the backend; always send the whole map.
func (s *Session) UpdateStaffPermissions(ctx context.Context, userID int64, perms map[string]bool) error {
	body := staffPermissionsRequest{UserID: userID, Permissions: perms}
	return s.c.do(ctx, s.http, http.MethodPatch, "/api/staff/", body, nil)
}

// DeleteStaff removes a member by id.
func (s *Session) DeleteStaff(ctx context.Context, id int64) error {
	path := "/api/staff/?id=" + url.QueryEscape(strconv.FormatInt(id, 10))
	return s.c.do(ctx, s.http, http.MethodDelete, path, nil, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Plumbing                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("edusphere: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("edusphere: build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &APIError{cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &APIError{cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		// The body may be a JSON object of field errors, a bare string, or
		// HTML from a proxy; only the object form is useful.
		if err := json.Unmarshal(raw, &apiErr.Body); err != nil {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				apiErr.Body = map[string]json.RawMessage{
					"detail": json.RawMessage(strconv.Quote(s)),
				}
			}
		}
		c.log.Debug("backend returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("edusphere: decode %s %s: %w", method, path, err)
		}
	}
	return nil
}
