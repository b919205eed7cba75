package render

import (
	"embed"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shopfront/shopfront/internal/app/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// BaseData carries what every page needs: the resolved session for the
// navbar, a consumed flash message, and the view-local error string.
type BaseData struct {
	Title   string
	Active  string
	Session models.Session
	Flash   string
	Error   string
}

// Templates parses the embedded template set with the shared func map.
func Templates() (*template.Template, error) {
	printer := message.NewPrinter(language.English)
	funcs := template.FuncMap{
		// price renders a display amount; authoritative totals stay with
		// the backend.
		"price": func(v float64) string {
			return printer.Sprintf("$%.2f", v)
		},
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
