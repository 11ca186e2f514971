// internal/edusphere/types.go
package edusphere

import "github.com/edusphere/console/internal/domain/models"

// AuthResult is the body returned by the login, registration, and Google
// sign-in endpoints: a token pair plus the authenticated user.
type AuthResult struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    models.User `json:"user"`
}

// RegisterParams carries the sign-up form fields. When SplitName is set the
// display name is split into first/last parts before submission; otherwise
// the whole name is sent as first_name. The backend has shipped with both
// behaviors, so the choice is configuration, not code.
type RegisterParams struct {
	Name      string
	Email     string
	Password  string
	SplitName bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registrationRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type googleLoginRequest struct {
	AccessToken string `json:"access_token"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	UID          string `json:"uid"`
	Token        string `json:"token"`
	NewPassword1 string `json:"new_password1"`
	NewPassword2 string `json:"new_password2"`
}

type staffInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type staffPermissionsRequest struct {
	UserID      int64           `json:"user_id"`
	Permissions map[string]bool `json:"permissions"`
}
