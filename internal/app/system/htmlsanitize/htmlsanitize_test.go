package htmlsanitize_test

import (
	"testing"

	"github.com/edusphere/console/internal/app/system/htmlsanitize"
)

func TestPlain_Empty(t *testing.T) {
	if got := htmlsanitize.Plain(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestPlain_PlainText(t *testing.T) {
	if got := htmlsanitize.Plain("User with this email already exists!"); got != "User with this email already exists!" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestPlain_StripsMarkup(t *testing.T) {
	got := htmlsanitize.Plain(`<b>Access Denied</b>: Admins only.`)
	if got != "Access Denied: Admins only." {
		t.Errorf("expected tags stripped, got %q", got)
	}
}

func TestPlain_RemovesScript(t *testing.T) {
	got := htmlsanitize.Plain(`Invite failed<script>alert('xss')</script>`)
	if got != "Invite failed" {
		t.Errorf("expected script removed, got %q", got)
	}
}
