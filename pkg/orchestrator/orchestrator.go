package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-incomeform/pkg/census"
	"github.com/goliatone/go-incomeform/pkg/model"
	pkgopenapi "github.com/goliatone/go-incomeform/pkg/openapi"
	"github.com/goliatone/go-incomeform/pkg/predict"
	"github.com/goliatone/go-incomeform/pkg/render"
	"github.com/goliatone/go-incomeform/pkg/renderers/vanilla"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithEndpoint sets the prediction endpoint used for the contract document.
// The predictor is configured separately through WithPredictor.
func WithEndpoint(endpoint string) Option {
	return func(o *Orchestrator) {
		o.endpoint = strings.TrimSpace(endpoint)
	}
}

// WithModelBuilder injects a custom form model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithPredictor injects the prediction client used by Submit.
func WithPredictor(predictor predict.Predictor) Option {
	return func(o *Orchestrator) {
		o.predictor = predictor
	}
}

// WithSchemaTransformer registers a Transformer that can mutate form models
// after building but before decorators run.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithUIDecorators registers decorators that run against the generated form
// model before rendering.
func WithUIDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithThemeSelector overrides the theme selector. Pass nil to render without
// theme tokens.
func WithThemeSelector(selector ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
		o.themeSpecified = true
	}
}

// WithDefaultTheme sets the theme name and variant used when a request does
// not specify one.
func WithDefaultTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeName = strings.TrimSpace(name)
		o.themeVariant = strings.TrimSpace(variant)
	}
}

// WithContractValidation checks every record against the contract request
// schema before it is posted.
func WithContractValidation(enabled bool) Option {
	return func(o *Orchestrator) {
		o.validateContract = enabled
	}
}

// WithLogger sets the logger used for pipeline failures.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from contract document to rendered
// output and from submitted values to a prediction outcome. It applies
// sensible defaults (vanilla renderer, built-in theme, default endpoint) while
// remaining open to dependency injection.
type Orchestrator struct {
	endpoint         string
	builder          model.Builder
	registry         *render.Registry
	defaultRenderer  string
	predictor        predict.Predictor
	transformer      Transformer
	decorators       []model.Decorator
	themeSelector    ThemeSelector
	themeSpecified   bool
	themeName        string
	themeVariant     string
	validateContract bool
	logger           *zap.Logger
	initialiseErr    error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer:  defaultRendererName,
		themeVariant:     DefaultThemeVariant,
		validateContract: true,
		logger:           zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes a render call.
type Request struct {
	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// ThemeName and ThemeVariant override the configured defaults.
	ThemeName    string
	ThemeVariant string

	// RenderOptions carries prefilled values, errors and the last outcome.
	RenderOptions render.RenderOptions
}

// Submission is the outcome of one submit attempt. When Errors or FormErrors
// are set the record was rejected locally and no request was sent.
type Submission struct {
	Values     map[string]any
	Record     census.Record
	Result     predict.Result
	Notice     *render.Notice
	Errors     map[string][]string
	FormErrors []string
}

// Invalid reports whether local validation stopped the submission.
func (s Submission) Invalid() bool {
	return len(s.Errors) > 0 || len(s.FormErrors) > 0
}

// RenderOptions returns the options needed to re-render the form with this
// submission's values, errors and notice.
func (s Submission) RenderOptions() render.RenderOptions {
	return render.RenderOptions{
		Values:     s.Values,
		Errors:     s.Errors,
		FormErrors: s.FormErrors,
		Notice:     s.Notice,
	}
}

// Endpoint reports the endpoint advertised by the contract.
func (o *Orchestrator) Endpoint() string {
	if o.endpoint == "" {
		return pkgopenapi.DefaultEndpoint
	}
	return o.endpoint
}

// Document returns the contract document for the configured endpoint.
func (o *Orchestrator) Document() (*openapi3.T, error) {
	doc, err := pkgopenapi.Document(o.endpoint)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: contract document: %w", err)
	}
	return doc, nil
}

// Form builds the form model from the contract, then applies the transformer
// and decorators.
func (o *Orchestrator) Form(ctx context.Context) (model.FormModel, error) {
	if ctx == nil {
		return model.FormModel{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if err := o.initialiseErr; err != nil {
		return model.FormModel{}, err
	}

	doc, err := o.Document()
	if err != nil {
		return model.FormModel{}, err
	}

	form, err := o.builder.Build(doc, pkgopenapi.OperationID)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: build form model: %w", err)
	}

	if err := o.applyTransformer(ctx, &form); err != nil {
		return model.FormModel{}, err
	}
	if err := o.applyDecorators(&form); err != nil {
		return model.FormModel{}, err
	}
	return form, nil
}

// Render builds the form and renders it with the requested renderer.
func (o *Orchestrator) Render(ctx context.Context, req Request) ([]byte, error) {
	form, err := o.Form(ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	if opts.Theme == nil {
		cfg, err := o.themeConfig(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, err
		}
		opts.Theme = cfg
	}

	output, err := renderer.Render(ctx, form, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Renderer returns the named renderer, or the default when name is empty.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	return o.rendererFor(name)
}

// Submit validates values into a census record and, when valid, sends exactly
// one prediction request. Remote failures are reported through the Result and
// Notice, never as a Go error.
func (o *Orchestrator) Submit(ctx context.Context, values map[string]any) Submission {
	sub := Submission{Values: values}

	record, err := census.FromValues(values)
	if err != nil {
		sub.Errors = census.FieldErrors(err)
		if len(sub.Errors) == 0 {
			sub.FormErrors = []string{err.Error()}
		}
		return sub
	}
	sub.Record = record
	sub.Values = record.Payload()

	if o.validateContract {
		if err := pkgopenapi.ValidatePayload(ctx, record.Payload()); err != nil {
			sub.FormErrors = []string{err.Error()}
			return sub
		}
	}

	if o.predictor == nil {
		sub.Result = predict.TransportError(errors.New("orchestrator: predictor is not configured"))
	} else {
		sub.Result = o.predictor.Predict(ctx, record)
	}
	sub.Notice = NoticeFor(sub.Result)
	return sub
}

// NoticeFor converts a prediction result into the notice shown under the form.
func NoticeFor(result predict.Result) *render.Notice {
	if result.OK() {
		return render.SuccessNotice(result.Display())
	}
	return render.ErrorNotice(result.Display())
}

func (o *Orchestrator) themeConfig(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	if name == "" {
		name = o.themeName
	}
	if variant == "" {
		variant = o.themeVariant
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return rendererConfig(selection), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	if len(o.decorators) == 0 || form == nil {
		return nil
	}
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if o.transformer == nil || form == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.predictor == nil {
		o.predictor = predict.New(predict.WithEndpoint(o.Endpoint()), predict.WithLogger(o.logger))
	}
	if o.themeSelector == nil && !o.themeSpecified {
		selector, err := NewManifestSelector(DefaultManifest())
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default theme: %w", err)
			return
		}
		o.themeSelector = selector
		if o.themeName == "" {
			o.themeName = DefaultThemeName
		}
	}
}
