// Package web renders the server-side pages from templates embedded in the
// binary.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
)

//go:embed templates
var templateFS embed.FS

var funcs = template.FuncMap{
	"title": func(s string) string {
		s = strings.ReplaceAll(s, "_", " ")
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

type Templates struct {
	cache map[string]*template.Template
}

// NewTemplateCache parses every page together with the base layout.
func NewTemplateCache() (*Templates, error) {
	tmplCache := make(map[string]*template.Template)

	pages, err := fs.Glob(templateFS, "templates/pages/*.tmpl")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".tmpl")
		ts, err := template.New("base.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/base.html.tmpl", page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}

		tmplCache[name] = ts
	}

	return &Templates{cache: tmplCache}, nil
}

// Render executes the named page into w. The page is rendered into a buffer
// first so a failing template never produces a partial response.
func (t *Templates) Render(w io.Writer, name string, data any) error {
	tmpl, ok := t.cache[name]
	if !ok {
		return fmt.Errorf("template %q not in cache", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html.tmpl", data); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}

	_, err := buf.WriteTo(w)
	return err
}
