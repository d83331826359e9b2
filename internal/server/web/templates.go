package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "login", "register", "edit"}

// PageData feeds every template; pages use the fields they need.
type PageData struct {
	Flashes       []Flash
	Username      string
	Notes         []models.Note
	NoteID        int64
	Content       string
	ExportEnabled bool
}

type pages map[string]*template.Template

// parsePages pairs every page with the shared layout. Pages define the same
// block names, so each gets its own template set.
func parsePages() (pages, error) {
	p := make(pages, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p[name] = t
	}
	return p, nil
}

// render executes into a buffer first so a template error never leaves a
// half-written page.
func (p pages) render(w http.ResponseWriter, status int, name string, data PageData) error {
	t, ok := p[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
