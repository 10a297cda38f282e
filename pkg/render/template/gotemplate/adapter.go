package gotemplate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-incomeform/pkg/render/template"
)

const defaultExtension = ".tmpl"

var errNilEngine = errors.New("gotemplate: engine is nil")

// Option configures an Engine.
type Option func(*config)

type config struct {
	files fs.FS
	dir   string
	ext   string
	extra []gotemplatepkg.Option
}

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.files = files
		}
	}
}

// WithDir loads templates from a directory on disk.
func WithDir(dir string) Option {
	return func(cfg *config) {
		cfg.dir = strings.TrimSpace(dir)
	}
}

// WithExtension sets the suffix appended to template names that lack it.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		if ext = strings.TrimSpace(ext); ext != "" {
			cfg.ext = ext
		}
	}
}

// WithGoTemplateOptions forwards options to the go-template engine. They are
// applied after the source and extension, so they may override either.
func WithGoTemplateOptions(options ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		for _, opt := range options {
			if opt != nil {
				cfg.extra = append(cfg.extra, opt)
			}
		}
	}
}

// Engine renders incomeform templates through a go-template engine, which
// owns the pongo2 set, the parsed-template cache and the data conversion.
type Engine struct {
	inner *gotemplatepkg.Engine
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. A template source is required.
func New(options ...Option) (*Engine, error) {
	cfg := config{ext: defaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.files == nil && cfg.dir == "" {
		return nil, errors.New("gotemplate: a template fs or directory is required")
	}

	opts := []gotemplatepkg.Option{
		gotemplatepkg.WithExtension(cfg.ext),
		gotemplatepkg.WithTemplateFunc(map[string]any{"tostring": toStringFilter}),
	}
	if cfg.files != nil {
		opts = append(opts, gotemplatepkg.WithFS(cfg.files))
	}
	if cfg.dir != "" {
		opts = append(opts, gotemplatepkg.WithBaseDir(cfg.dir))
	}
	opts = append(opts, cfg.extra...)

	inner, err := gotemplatepkg.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load engine: %w", err)
	}
	return &Engine{inner: inner}, nil
}

// Render accepts either a template name or inline template source.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.inner == nil {
		return "", errNilEngine
	}
	return e.inner.Render(name, data, out...)
}

// RenderTemplate renders the named file.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.inner == nil {
		return "", errNilEngine
	}
	result, err := e.inner.RenderTemplate(name, data, out...)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %w", err)
	}
	return result, nil
}

// RenderString renders inline template source.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.inner == nil {
		return "", errNilEngine
	}
	result, err := e.inner.RenderString(source, data, out...)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %w", err)
	}
	return result, nil
}

// RegisterFilter adds a filter to pongo2's global filter table. Names must be
// unused.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if e == nil || e.inner == nil {
		return errNilEngine
	}
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if err := e.inner.RegisterFilter(name, fn); err != nil {
		return fmt.Errorf("gotemplate: %w", err)
	}
	return nil
}

// GlobalContext merges data into the values visible to every template.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.inner == nil {
		return errNilEngine
	}
	if data == nil {
		return nil
	}
	if err := e.inner.GlobalContext(data); err != nil {
		return fmt.Errorf("gotemplate: %w", err)
	}
	return nil
}

// toStringFilter prints whole floats without a fraction so widget values
// decoded from JSON match their option strings.
func toStringFilter(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	switch {
	case in.IsNil():
		return pongo2.AsValue(""), nil
	case in.IsFloat() && in.Float() == float64(int64(in.Float())):
		return pongo2.AsValue(fmt.Sprintf("%d", int64(in.Float()))), nil
	default:
		return pongo2.AsValue(in.String()), nil
	}
}
