// Package view renders the console's screens from an embedded template set.
// Every page parses against the shared layout, which shows the navigation
// panel whenever an authenticated user is present.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/printwatch/fleet-console/internal/core/domain"
)

//go:embed templates/*.html
var files embed.FS

// Data is the bag handed to every template. Handlers fill the fields their
// screen needs; the layout reads Title and User.
type Data struct {
	Title string
	// User is the authenticated identity, nil on public screens.
	User *domain.User

	// Error and Message render as inline banners scoped to the active form.
	Error   string
	Message string

	// Form echoes submitted values back so a failed submission keeps input.
	Form map[string]string

	// RefreshTo makes the page reload itself, used while the session check
	// is still in flight and after a forced logout.
	RefreshTo string

	Users    []domain.User
	EditUser *domain.User
	Profile  *domain.User
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template against the layout.
func NewRenderer() (*Renderer, error) {
	entries, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, path := range entries {
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		if name == "layout" {
			continue
		}
		t, err := template.ParseFS(files, "templates/layout.html", path)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render satisfies echo.Renderer. name is the page name without extension.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
