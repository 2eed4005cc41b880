package server

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/echoppe/pkg/gravatar"
)

//go:embed templates/*.html
var templatesFS embed.FS

// renderer implements echo.Renderer over the embedded HTML templates.
type renderer struct {
	templates *template.Template
}

func newRenderer() *renderer {
	t := template.New("").Funcs(template.FuncMap{
		"gravatar": gravatar.URL,
		// safe marks an already sanitized rich-text body as trusted HTML.
		"safe": func(s string) template.HTML { return template.HTML(s) },
	})

	return &renderer{
		templates: template.Must(t.ParseFS(templatesFS, "templates/*.html")),
	}
}

// Render implements the echo.Renderer interface.
func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
