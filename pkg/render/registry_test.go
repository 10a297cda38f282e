package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-incomeform/pkg/model"
	"github.com/goliatone/go-incomeform/pkg/render"
)

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, model.FormModel, render.RenderOptions) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry(namedRenderer("vanilla"))

	if err := registry.Register(namedRenderer("tui")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(namedRenderer("tui")); !errors.Is(err, render.ErrRendererDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := registry.Register(nil); !errors.Is(err, render.ErrRendererRequired) {
		t.Fatalf("expected required error, got %v", err)
	}
	if err := registry.Register(namedRenderer("")); !errors.Is(err, render.ErrRendererRequired) {
		t.Fatalf("expected required error for empty name, got %v", err)
	}

	if diff := cmp.Diff([]string{"tui", "vanilla"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if !registry.Has("vanilla") || registry.Has("markdown") {
		t.Fatalf("unexpected Has results")
	}

	got, err := registry.Get("tui")
	if err != nil || got.Name() != "tui" {
		t.Fatalf("get tui: %v %v", got, err)
	}
	if _, err := registry.Get("markdown"); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRenderOptions_ValueFor(t *testing.T) {
	opts := render.RenderOptions{Values: map[string]any{"age": 40, "race": nil}}

	if got := opts.ValueFor("age", 17); got != 40 {
		t.Fatalf("age: %v", got)
	}
	if got := opts.ValueFor("race", "White"); got != "White" {
		t.Fatalf("race: %v", got)
	}
	if got := opts.ValueFor("sex", "Male"); got != "Male" {
		t.Fatalf("sex: %v", got)
	}
}
