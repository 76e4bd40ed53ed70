package reporter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openrpa/botkit/internal/core/config"
	"github.com/openrpa/botkit/internal/infra/mail"
	"github.com/openrpa/botkit/internal/infra/render"
	"github.com/openrpa/botkit/internal/item"
)

type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	dir := t.TempDir()
	tmpl := `{{.Salutation}},
{{range $client, $msg := .Infos}}{{$client}}: {{$msg}}
{{end}}Contact: {{.Contact}}`
	if err := os.WriteFile(filepath.Join(dir, "report.tmpl"), []byte(tmpl), 0o644); err != nil {
		t.Fatal(err)
	}
	return render.NewRenderer(dir)
}

func testConfig() config.ReporterConfig {
	return config.ReporterConfig{
		Recipients:   []string{"employee@example.com"},
		Salutation:   "Dear Sir or Madam",
		Contact:      "support@example.com",
		TemplateFile: "report.tmpl",
		Codes: map[string]string{
			"MISSING_FIELD": "A required field is missing.",
			"MISSING_EMAIL": "No e-mail address is configured.",
		},
	}
}

func TestRunAggregatesFailuresIntoDraft(t *testing.T) {
	sender := &fakeSender{}
	r := New(testConfig(), testRenderer(t), sender, true)

	items := []*item.ReporterItem{
		item.NewReporterItem("wi-1", "MISSING_FIELD", map[string]any{"client_id": "42"}),
		item.NewReporterItem("wi-2", "MISSING_EMAIL", map[string]any{"client_id": "43"}),
	}
	if err := r.Run(context.Background(), items); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one report, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if !msg.Draft {
		t.Error("test mode must force draft delivery")
	}
	if !msg.HTML {
		t.Error("report must be sent as HTML")
	}
	if !strings.Contains(msg.Body, "A required field is missing.") ||
		!strings.Contains(msg.Body, "No e-mail address is configured.") {
		t.Errorf("report body missing mapped messages:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "42") || !strings.Contains(msg.Body, "43") {
		t.Errorf("report body missing client correlation:\n%s", msg.Body)
	}
	if !strings.HasPrefix(msg.Subject, "Process Report ") {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
}

func TestRunSendsOutsideTestMode(t *testing.T) {
	sender := &fakeSender{}
	r := New(testConfig(), testRenderer(t), sender, false)

	items := []*item.ReporterItem{
		item.NewReporterItem("wi-1", "MISSING_FIELD", map[string]any{"client_id": "42"}),
	}
	if err := r.Run(context.Background(), items); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].Draft {
		t.Error("expected a real (non-draft) delivery")
	}
}

func TestRunWithoutItemsSendsNothing(t *testing.T) {
	sender := &fakeSender{}
	r := New(testConfig(), testRenderer(t), sender, true)

	if err := r.Run(context.Background(), nil); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("no report expected for an empty run")
	}
}

func TestRunUnknownCodeFallsBack(t *testing.T) {
	sender := &fakeSender{}
	r := New(testConfig(), testRenderer(t), sender, true)

	items := []*item.ReporterItem{
		item.NewReporterItem("wi-9", "NOT_CONFIGURED", map[string]any{"client_id": "7"}),
	}
	if err := r.Run(context.Background(), items); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(sender.sent[0].Body, "NOT_CONFIGURED") {
		t.Error("unknown codes must fall back to the raw code")
	}
}

func TestRunSurfacesSendFailure(t *testing.T) {
	sender := &fakeSender{err: context.DeadlineExceeded}
	r := New(testConfig(), testRenderer(t), sender, true)

	items := []*item.ReporterItem{
		item.NewReporterItem("wi-1", "MISSING_FIELD", map[string]any{"client_id": "42"}),
	}
	if err := r.Run(context.Background(), items); err == nil {
		t.Fatal("send failures must propagate, the report never fails silently")
	}
}
