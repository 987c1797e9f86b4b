package render

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
)

// TemplateSet holds one parsed template per page. Pages are parsed
// separately, each with the base layout and every component, so their
// "title" and "content" blocks never collide.
type TemplateSet struct {
	pages map[string]*template.Template
}

// Execute renders a page (e.g. "articles.html") through the "base" layout
func (ts *TemplateSet) Execute(w io.Writer, pageName string, data any) error {
	tmpl, ok := ts.pages[pageName]
	if !ok {
		return fmt.Errorf("template %q not found", pageName)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// Has checks if a page exists
func (ts *TemplateSet) Has(pageName string) bool {
	_, ok := ts.pages[pageName]
	return ok
}

// Names returns the page names in sorted order
func (ts *TemplateSet) Names() []string {
	names := make([]string, 0, len(ts.pages))
	for name := range ts.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadTemplates parses the templates under dir, "web/templates" when empty
func LoadTemplates(dir string) (*TemplateSet, error) {
	if dir == "" {
		dir = "web/templates"
	}
	ts, err := LoadTemplatesFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	return ts, nil
}

// LoadTemplatesFS parses layouts/base.html, components/*.html and
// pages/*.html from fsys.
func LoadTemplatesFS(fsys fs.FS) (*TemplateSet, error) {
	components, err := fs.Glob(fsys, "components/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list component templates: %w", err)
	}
	pages, err := fs.Glob(fsys, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page templates found in pages/")
	}

	funcs := funcMap()
	ts := &TemplateSet{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		files := append([]string{"layouts/base.html"}, components...)
		files = append(files, page)

		tmpl, err := template.New("base").Funcs(funcs).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", path.Base(page), err)
		}
		ts.pages[path.Base(page)] = tmpl
	}

	return ts, nil
}

// LogTemplateNames logs all available page names
func LogTemplateNames(logger *slog.Logger, ts *TemplateSet) {
	names := ts.Names()
	logger.Info("loaded templates", "count", len(names), "names", names)
}
