// Package web renders the server-side pages of the routing shell.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/isdelr/placeit-be/internal/models"
)

//go:embed templates/*.html
var files embed.FS

// Page names.
const (
	PageLanding  = "landing"
	PageLogin    = "login"
	PageRegister = "register"
	PageAbout    = "about"
	PageHome     = "home"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// PageData is the data every page template receives.
type PageData struct {
	Title     string
	Theme     string
	Email     string
	Error     string
	Notice    string
	FormEmail string

	Query   string
	Radius  float64
	Center  models.Location
	Warning string
	Result  *models.AnalysisResult
	Summary string
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageLanding, PageLogin, PageRegister, PageAbout, PageHome} {
		t, err := template.ParseFS(files, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render writes page to w.
func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if data.Theme != ThemeDark {
		data.Theme = ThemeLight
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	return nil
}
