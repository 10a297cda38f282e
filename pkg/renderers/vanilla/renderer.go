package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-incomeform/pkg/model"
	"github.com/goliatone/go-incomeform/pkg/render"
	rendertemplate "github.com/goliatone/go-incomeform/pkg/render/template"
	gotemplate "github.com/goliatone/go-incomeform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-incomeform/pkg/renderers/vanilla/components"
)

const (
	formTemplate   = "templates/form.tmpl"
	chromeTemplate = "templates/components/chrome.tmpl"

	defaultTitle       = "Income Prediction"
	defaultSubmitLabel = "Predict"
	controlIDPrefix    = "if-"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	stylesheet       string
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default widget components.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithStylesheet links an external stylesheet from the page head.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = strings.TrimSpace(href)
	}
}

// WithDefaultStyles inlines the embedded stylesheet into the page.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// Renderer produces a standalone HTML page for a form model.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	registry   *components.Registry
	stylesheet string
	inlineCSS  string
	rich       *bluemonday.Policy
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	r := &Renderer{
		templates:  templates,
		registry:   cfg.registry,
		stylesheet: cfg.stylesheet,
		rich:       bluemonday.UGCPolicy(),
	}
	if cfg.inlineStyles {
		r.inlineCSS = defaultStylesheet()
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the full page: every field with its current value and
// errors, the form-level errors and the outcome notice.
func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	data := components.ComponentData{Template: r.templates}
	if options.Theme != nil {
		data.ThemePartials = options.Theme.Partials
	}

	fields := make([]string, 0, len(form.Fields))
	for _, field := range form.Fields {
		markup, err := r.renderField(field, options, data)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		fields = append(fields, markup)
	}

	payload := map[string]any{
		"form":        r.formView(form, options),
		"fields":      fields,
		"form_errors": options.FormErrors,
		"theme":       themeView(options),
		"stylesheet":  r.stylesheetHref(options),
	}
	if r.inlineCSS != "" {
		payload["inline_styles"] = r.inlineCSS
	}
	if options.Notice != nil && options.Notice.Message != "" {
		payload["notice"] = map[string]any{
			"level":   string(options.Notice.Level),
			"message": options.Notice.Message,
		}
	}

	result, err := r.templates.RenderTemplate(formTemplate, payload)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) renderField(field model.Field, options render.RenderOptions, data components.ComponentData) (string, error) {
	widget := field.Widget()
	descriptor, ok := r.registry.Descriptor(widget)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", widget, field.Name)
	}

	fieldErrors := options.Errors[field.Name]
	help := helpText(field)
	view := controlView(field, options.ValueFor(field.Name, field.Default))
	view.Invalid = len(fieldErrors) > 0
	view.DescribedBy = describedBy(view.ID, help != "", view.Invalid)

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, view, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", widget, field.Name, err)
	}

	return r.templates.RenderTemplate(chromeTemplate, map[string]any{
		"id":      view.ID,
		"name":    field.Name,
		"label":   field.Label,
		"widget":  widget,
		"control": control.String(),
		"help":    r.rich.Sanitize(help),
		"errors":  fieldErrors,
	})
}

func (r *Renderer) formView(form model.FormModel, options render.RenderOptions) map[string]any {
	title := form.Summary
	if title == "" {
		title = defaultTitle
	}
	submit := form.Metadata["submitLabel"]
	if submit == "" {
		submit = defaultSubmitLabel
	}
	return map[string]any{
		"title":        title,
		"description":  form.Description,
		"action":       options.Action,
		"operation_id": form.OperationID,
		"submit_label": submit,
	}
}

func (r *Renderer) stylesheetHref(options render.RenderOptions) string {
	if options.Theme != nil && options.Theme.AssetURL != nil {
		if href := options.Theme.AssetURL(StylesheetName); href != "" {
			return href
		}
	}
	return r.stylesheet
}

func themeView(options render.RenderOptions) map[string]any {
	if options.Theme == nil {
		return map[string]any{}
	}
	cfg := options.Theme

	names := make([]string, 0, len(cfg.CSSVars))
	for name := range cfg.CSSVars {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]map[string]string, 0, len(names))
	for _, name := range names {
		key := name
		if !strings.HasPrefix(key, "--") {
			key = "--" + key
		}
		vars = append(vars, map[string]string{"name": key, "value": cfg.CSSVars[name]})
	}

	return map[string]any{
		"name":     cfg.Theme,
		"variant":  cfg.Variant,
		"css_vars": vars,
	}
}

func controlView(field model.Field, value any) components.Field {
	view := components.Field{
		ID:       controlIDPrefix + field.Name,
		Name:     field.Name,
		Label:    field.Label,
		Widget:   field.Widget(),
		Value:    formatValue(value),
		Required: field.Required,
	}
	if rule, ok := field.Rule(model.ValidationRuleMin); ok {
		view.Min = rule.Value()
	}
	if rule, ok := field.Rule(model.ValidationRuleMax); ok {
		view.Max = rule.Value()
	}
	if rule, ok := field.Rule(model.ValidationRuleStep); ok {
		view.Step = rule.Value()
	}

	for _, option := range field.Options() {
		view.Options = append(view.Options, components.Option{
			Value:    option,
			Selected: option == view.Value,
		})
	}
	return view
}

func helpText(field model.Field) string {
	if help := field.UIHints["helpText"]; help != "" {
		return help
	}
	return field.Description
}

func describedBy(id string, hasHelp, hasErrors bool) string {
	var ids []string
	if hasHelp {
		ids = append(ids, id+"-help")
	}
	if hasErrors {
		ids = append(ids, id+"-errors")
	}
	return strings.Join(ids, " ")
}

// formatValue renders integral floats without a fractional part so values
// decoded from JSON match the integer widgets.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
