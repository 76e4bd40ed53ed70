package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T, name, content string) *Renderer {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewRenderer(dir)
}

func TestRender(t *testing.T) {
	r := writeTemplate(t, "report.tmpl", "Hello {{.name}}!")

	out, err := r.Render("report.tmpl", map[string]any{"name": "world"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out != "Hello world!" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRenderUndefinedVariableFails(t *testing.T) {
	r := writeTemplate(t, "report.tmpl", "Hello {{.missing}}!")

	if _, err := r.Render("report.tmpl", map[string]any{"name": "world"}); err == nil {
		t.Fatal("rendering with an undefined variable must fail")
	}
}

func TestRenderNilVarsFails(t *testing.T) {
	r := writeTemplate(t, "report.tmpl", "Hello {{.Missing}}!")

	if _, err := r.Render("report.tmpl", nil); err == nil {
		t.Fatal("rendering against a nil vars map must fail for referenced keys")
	}
}

func TestRenderLiteralNoValueTextIsFine(t *testing.T) {
	// Only genuinely undefined variables fail: template content that
	// happens to contain this literal renders normally.
	r := writeTemplate(t, "report.tmpl", "status: <no value> for {{.client}}")

	out, err := r.Render("report.tmpl", map[string]any{"client": "42"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out != "status: <no value> for 42" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRenderUnknownTemplateFails(t *testing.T) {
	r := writeTemplate(t, "report.tmpl", "x")

	if _, err := r.Render("other.tmpl", nil); err == nil {
		t.Fatal("unknown templates must fail")
	}
	if out, err := r.Render("report.tmpl", nil); err != nil || out != "x" {
		t.Errorf("expected plain render, got out=%q err=%v", out, err)
	}

	if _, err := r.Render("missing.tmpl", nil); err != nil && !strings.Contains(err.Error(), "missing.tmpl") {
		t.Errorf("errors must name the template, got %v", err)
	}
}
