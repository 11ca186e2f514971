// Package htmlsanitize strips dangerous markup from strings that originate
// outside the console, before they are rendered into pages.
//
// The main consumer is the staff feature, which surfaces backend error
// messages verbatim; those strings cross a trust boundary and must not be
// able to carry markup into the page.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var strict = bluemonday.StrictPolicy()

// Plain strips all HTML from s, leaving only text content. Use for
// backend-supplied strings rendered into attribute or flash contexts.
func Plain(s string) string {
	return strict.Sanitize(s)
}
