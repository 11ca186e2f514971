// Package inputval validates user-typed form values before they reach the
// backend. Validation here is deliberately shallow (shape, not existence);
// the backend remains the authority on every field.
package inputval

import (
	"regexp"
	"strings"
)

// emailRe matches the simple local-part@domain.tld shape checked before an
// invite is submitted. It intentionally rejects whitespace and bare
// domains rather than attempting full RFC 5322.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}
