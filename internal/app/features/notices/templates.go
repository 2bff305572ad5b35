// internal/app/features/notices/templates.go
package notices

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "notices",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
