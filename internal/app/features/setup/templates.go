// internal/app/features/setup/templates.go
package setup

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "setup",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
