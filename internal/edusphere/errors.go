// internal/edusphere/errors.go
package edusphere

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// GenericErrorMessage is the last-resort user-facing message when the
// backend's error body matches none of the known shapes.
const GenericErrorMessage = "An unexpected error occurred. Please try again."

// NetworkErrorMessage is shown when no response was received at all.
const NetworkErrorMessage = "Network error. Please check your connection."

// APIError is a non-2xx response from the EduSphere backend, or a transport
// failure (Status == 0). The decoded body is kept so callers can extract a
// user-facing message with the fixed field-priority order.
type APIError struct {
	Status int
	Body   map[string]json.RawMessage
	cause  error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("edusphere: request failed: %v", e.cause)
	}
	return fmt.Sprintf("edusphere: backend returned %d", e.Status)
}

func (e *APIError) Unwrap() error { return e.cause }

// IsUnauthorized reports a 401 after the built-in refresh cycle has run out.
func (e *APIError) IsUnauthorized() bool { return e.Status == http.StatusUnauthorized }

// IsForbidden reports a 403 (insufficient privilege, not an expired token).
func (e *APIError) IsForbidden() bool { return e.Status == http.StatusForbidden }

// messagePriority is the order in which response fields are inspected when
// extracting a human-readable message: password fields first, then
// username/email, then token/uid, then non-field errors, then the generic
// detail fields.
var messagePriority = []string{
	"password1",
	"password2",
	"new_password1",
	"new_password2",
	"username",
	"email",
	"token",
	"uid",
	"non_field_errors",
	"detail",
	"error",
	"message",
}

// Message returns a user-facing message for this error. Field errors win
// over generic ones per messagePriority; a transport failure maps to
// NetworkErrorMessage; anything unrecognized falls back to the supplied
// fallback, or GenericErrorMessage when fallback is empty.
func (e *APIError) Message(fallback string) string {
	if fallback == "" {
		fallback = GenericErrorMessage
	}
	if e.Status == 0 {
		return NetworkErrorMessage
	}
	for _, key := range messagePriority {
		raw, ok := e.Body[key]
		if !ok {
			continue
		}
		if msg := firstString(raw); msg != "" {
			return msg
		}
	}
	return fallback
}

// Field returns the first message recorded for a specific response field,
// or "" when the field is absent.
func (e *APIError) Field(name string) string {
	raw, ok := e.Body[name]
	if !ok {
		return ""
	}
	return firstString(raw)
}

// firstString decodes raw as either a string or an array of strings and
// returns the first value (the backend emits both shapes).
func firstString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

// ErrorMessage resolves any error from this package to a user-facing
// string. Non-API errors fall through to the fallback.
func ErrorMessage(err error, fallback string) string {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Message(fallback)
	}
	if fallback != "" {
		return fallback
	}
	return GenericErrorMessage
}
