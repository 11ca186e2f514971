package inputval_test

import (
	"testing"

	"github.com/edusphere/console/internal/app/system/inputval"
)

func TestValidEmail(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"teacher@school.edu", true},
		{"  teacher@school.edu  ", true},
		{"a.b+c@sub.domain.org", true},
		{"not-an-email", false},
		{"", false},
		{"user@domain", false},
		{"user @domain.com", false},
		{"@domain.com", false},
		{"user@.com", false},
	}
	for _, tc := range cases {
		if got := inputval.ValidEmail(tc.in); got != tc.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
