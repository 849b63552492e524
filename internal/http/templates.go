package http

import (
	"embed"
	"html/template"

	"github.com/mrlokans/librarian/internal/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"roleLabel": func(r entities.Role) string {
		if r == entities.RoleAdmin {
			return "Librarian"
		}
		return "Patron"
	},
}

// LoadTemplates parses the embedded page templates. Each file is registered
// under its base name, e.g. "view_books.html".
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
