// Package render produces page bodies through text templates. It is the
// only layer that escapes untrusted feed text; upstream stages bound field
// lengths but pass content through verbatim.
package render

import (
	"embed"
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/robertmeta/links-cli/model"
)

// Template names, also used as file names in an override directory.
const (
	FirstPageTemplate = "links-page-1.md.tmpl"
	RestPageTemplate  = "links-page-n.md.tmpl"
)

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

// Context is everything a page template may reference.
type Context struct {
	PageNum    int
	PagesTotal int
	Groups     []model.DateGroup
	// Prev and Next are empty on the first and last page respectively.
	Prev string
	Next string
	// Updated is the generation timestamp, e.g. "2003-12-13 18:30 UTC".
	Updated string
}

// Renderer renders pages with a first-page layout and a subsequent-page
// layout.
type Renderer struct {
	templates *template.Template
}

var funcs = template.FuncMap{
	"escape": html.EscapeString,
}

// NewRenderer loads the page templates. With an empty templatesDir the
// embedded defaults are used; otherwise both template files must exist in
// that directory.
func NewRenderer(templatesDir string) (*Renderer, error) {
	var (
		tmpl *template.Template
		err  error
	)
	if templatesDir == "" {
		tmpl, err = template.New("links").Funcs(funcs).ParseFS(defaultTemplates, "templates/*.tmpl")
	} else {
		tmpl, err = template.New("links").Funcs(funcs).ParseFiles(
			filepath.Join(templatesDir, FirstPageTemplate),
			filepath.Join(templatesDir, RestPageTemplate),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render produces the body of one page. generated is stamped into the
// output at minute precision in UTC.
func (r *Renderer) Render(p model.Page, generated time.Time) (string, error) {
	name := RestPageTemplate
	if p.Num == 1 {
		name = FirstPageTemplate
	}

	ctx := Context{
		PageNum:    p.Num,
		PagesTotal: p.Total,
		Groups:     p.Groups,
		Prev:       p.Prev,
		Next:       p.Next,
		Updated:    generated.UTC().Format("2006-01-02 15:04") + " UTC",
	}

	var buf strings.Builder
	if err := r.templates.ExecuteTemplate(&buf, name, ctx); err != nil {
		return "", fmt.Errorf("failed to render page %d: %w", p.Num, err)
	}
	return buf.String(), nil
}
