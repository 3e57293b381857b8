package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path/filepath"

	"github.com/justestif/go-music-cluster-explorer/internal/clustering"
	"github.com/justestif/go-music-cluster-explorer/internal/explorer"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	partials  map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a new template manager by loading templates from the given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		partials:  make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	// Execute the "base" template which includes the page content
	return tmpl.ExecuteTemplate(w, "base", data)
}

// RenderPartial renders a partial template (without base layout) with the given data.
func (t *Templates) RenderPartial(w io.Writer, partial string, data any) error {
	tmpl, ok := t.partials[partial]
	if !ok {
		return fmt.Errorf("partial %q not found", partial)
	}
	return tmpl.ExecuteTemplate(w, partial, data)
}

// load parses all templates from the filesystem.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}

	// Common files to include with every page
	commonFiles := append(layouts, partials...)

	for _, page := range pages {
		name := trimExt(page)
		files := append([]string{page}, commonFiles...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	// Partials are also rendered on their own for fragment refreshes
	for _, partial := range partials {
		name := trimExt(partial)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, partial)
		if err != nil {
			return fmt.Errorf("parsing partial %s: %w", name, err)
		}
		t.partials[name] = tmpl
	}

	return nil
}

func trimExt(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// thousands formats an integer with separators: 12,345
		"thousands": clustering.FormatCount,

		// formatValue formats a feature value, "no data" for NaN
		"formatValue": clustering.FormatValue,

		// clusterColor returns the palette color of a label
		"clusterColor": clusterColor,

		// add adds two integers (for 1-based indexing in loops)
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	Flash       *FlashMessage
	CurrentPath string
}

// FlashMessage represents a notification banner.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// ErrorPageData contains data for the error page template.
type ErrorPageData struct {
	PageData
	Status  int
	Message string
}

// Toggles holds which optional sections of the cluster page are shown.
type Toggles struct {
	Profile bool
	PCA     bool
	Songs   bool
}

// Query encodes the toggles so links between clusters keep them.
func (t Toggles) Query() template.URL {
	q := url.Values{}
	for name, on := range map[string]bool{"profile": t.Profile, "pca": t.PCA, "songs": t.Songs} {
		if on {
			q.Set(name, "1")
		} else {
			q.Set(name, "0")
		}
	}
	return template.URL(q.Encode())
}

// ClusterPageData contains data for the cluster page template.
type ClusterPageData struct {
	PageData
	Labels       []int
	TotalSongs   int
	Cluster      *explorer.ClusterView
	Toggles      Toggles
	Profile      *BarChart
	Scatter      *ScatterPlot
	ScatterError string
	Songs        *SongTableData
}

// SongTableData contains data for the songs partial.
type SongTableData struct {
	Label     int
	Requested int
	Columns   []string
	Rows      [][]string
}
