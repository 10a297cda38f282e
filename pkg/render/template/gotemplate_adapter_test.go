package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gotpl "github.com/goliatone/go-template"

	"github.com/goliatone/go-incomeform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-incomeform/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	assertGolden(t, "hello.golden", result, written)
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"endpoint": "http://127.0.0.1:8000/predict"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})

	assertGolden(t, "use-global.golden", result, written)
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"}, w)
	})

	assertGolden(t, "use-filter.golden", result, written)
}

func TestGoTemplateEngine_DefaultFilters(t *testing.T) {
	engine := newEngine(t)

	// Struct data travels through JSON, so integers arrive as float64.
	data := struct {
		Value int    `json:"value"`
		Label string `json:"label"`
	}{Value: 17, Label: "  Age "}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-defaults", data, w)
	})

	assertGolden(t, "use-defaults.golden", result, written)
}

func TestGoTemplateEngine_RenderString(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.Render("{{ kind }}: {{ message }}", map[string]any{"kind": "Error", "message": "model unavailable"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "Error: model unavailable" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestGoTemplateEngine_Dir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notice.html"), []byte("{{ level }}: {{ message|trim }}"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}

	engine, err := gotemplate.New(gotemplate.WithDir(dir), gotemplate.WithExtension("html"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.RenderTemplate("notice", map[string]any{"level": "error", "message": " model unavailable "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "error: model unavailable" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestGoTemplateEngine_ForwardsGoTemplateOptions(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(
		gotemplate.WithFS(templatesFS),
		gotemplate.WithGoTemplateOptions(gotpl.WithGlobalData(map[string]any{
			"settings": map[string]any{"endpoint": "http://127.0.0.1:8000/predict"},
		})),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})

	assertGolden(t, "use-global.golden", result, written)
}

func TestGoTemplateEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without a template source")
	}
}

func TestGoTemplateEngine_DuplicateFilter(t *testing.T) {
	engine := newEngine(t)
	if err := engine.RegisterFilter("trim", func(input any, _ any) (any, error) { return input, nil }); err == nil {
		t.Fatalf("expected error for an existing filter name")
	}
}

func TestGoTemplateEngine_MissingTemplate(t *testing.T) {
	engine := newEngine(t)

	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func assertGolden(t *testing.T, name, result, written string) {
	t.Helper()

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", name))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}
