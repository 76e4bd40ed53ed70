// Package render wraps template rendering with a strict-variables contract:
// referencing a variable that was not passed fails the render instead of
// silently substituting a blank.
package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"
)

// Renderer loads templates from a directory.
type Renderer struct {
	dir string
}

// NewRenderer creates a renderer over the given template directory.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Render executes the named template with the given variables. A template
// referencing a key absent from vars fails the render, including dotted
// access on a nil vars map. The index builtin returns zero values and is
// the explicit opt-out from strictness.
func (r *Renderer) Render(name string, vars map[string]any) (string, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		ParseFiles(filepath.Join(r.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, vars); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
