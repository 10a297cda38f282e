package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-incomeform/pkg/model"
	"github.com/goliatone/go-incomeform/pkg/render"
)

// Renderer implements render.Renderer for terminal-driven sessions. It prompts
// for every field in form order and serializes the collected values.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       NewSurveyDriver(nil),
		outputFormat: OutputFormatJSON,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}

	return r, nil
}

var _ render.Renderer = (*Renderer)(nil)

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for each field and returns the serialized values. Values in
// opts prefill the prompts; errors and notices are printed before prompting.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if err := r.announce(ctx, form, opts); err != nil {
		return nil, err
	}

	state := NewState(opts.Values, opts.Errors)
	for _, field := range form.Fields {
		if err := r.promptField(ctx, field, state); err != nil {
			return nil, err
		}
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(fieldOrder(form, values), values)
}

func (r *Renderer) announce(ctx context.Context, form model.FormModel, opts render.RenderOptions) error {
	if opts.Notice != nil && strings.TrimSpace(opts.Notice.Message) != "" {
		prefix := r.theme.InfoPrefix
		if opts.Notice.IsError() {
			prefix = r.theme.ErrorPrefix
		}
		if err := r.driver.Info(ctx, prefix+opts.Notice.Message); err != nil {
			return err
		}
	}
	for _, message := range opts.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}
	for _, field := range form.Fields {
		for _, message := range opts.Errors[field.Name] {
			line := fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, displayLabel(field), message)
			if err := r.driver.Info(ctx, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, state *State) error {
	if len(field.Enum) > 0 {
		return r.promptSelect(ctx, field, state)
	}
	switch field.Type {
	case model.FieldTypeInteger, model.FieldTypeNumber:
		return r.promptNumber(ctx, field, state)
	default:
		return r.promptString(ctx, field, state)
	}
}

func (r *Renderer) promptNumber(ctx context.Context, field model.Field, state *State) error {
	bounds := boundsFor(field)
	defaultStr := ""
	if value, ok := defaultNumberValue(state, field); ok {
		defaultStr = strconv.FormatInt(value, 10)
	}

	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: bounds.message(displayLabel(field)),
			Default: defaultStr,
			Help:    displayHelp(field),
		})
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			if field.Required {
				r.invalid(ctx, field, "required")
				continue
			}
			return state.SetValue(field.Name, nil)
		}

		value, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			r.invalid(ctx, field, "must be a whole number")
			continue
		}
		if err := bounds.check(value); err != nil {
			r.invalid(ctx, field, err.Error())
			continue
		}
		return state.SetValue(field.Name, value)
	}
}

func (r *Renderer) promptSelect(ctx context.Context, field model.Field, state *State) error {
	options := field.Options()
	if len(options) == 0 {
		return fmt.Errorf("%w: %s", ErrNoOptions, field.Name)
	}

	defaultIdx := 0
	if value, ok := state.GetValue(field.Name); ok {
		if idx := indexOf(options, fmt.Sprint(value)); idx >= 0 {
			defaultIdx = idx
		}
	} else if def, ok := field.Default.(string); ok {
		if idx := indexOf(options, def); idx >= 0 {
			defaultIdx = idx
		}
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         displayHelp(field),
			PageSize:     12,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			r.invalid(ctx, field, "selection out of range")
			continue
		}
		return state.SetValue(field.Name, options[idx])
	}
}

func (r *Renderer) promptString(ctx context.Context, field model.Field, state *State) error {
	defaultStr := ""
	if value, ok := state.GetValue(field.Name); ok {
		defaultStr = fmt.Sprint(value)
	} else if field.Default != nil {
		defaultStr = fmt.Sprint(field.Default)
	}

	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: displayLabel(field),
			Default: defaultStr,
			Help:    displayHelp(field),
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" && field.Required {
			r.invalid(ctx, field, "required")
			continue
		}
		return state.SetValue(field.Name, input)
	}
}

func (r *Renderer) invalid(ctx context.Context, field model.Field, reason string) {
	_ = r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %s", r.theme.ErrorPrefix, displayLabel(field), reason))
}

func (r *Renderer) serialize(order []string, values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(order, values)), nil
	default:
		return json.Marshal(values)
	}
}

type numberBounds struct {
	min, max       int64
	hasMin, hasMax bool
}

func boundsFor(field model.Field) numberBounds {
	var b numberBounds
	if rule, ok := field.Rule(model.ValidationRuleMin); ok {
		if v, ok := parseBound(rule.Value()); ok {
			b.min, b.hasMin = v, true
		}
	}
	if rule, ok := field.Rule(model.ValidationRuleMax); ok {
		if v, ok := parseBound(rule.Value()); ok {
			b.max, b.hasMax = v, true
		}
	}
	return b
}

func (b numberBounds) message(label string) string {
	switch {
	case b.hasMin && b.hasMax:
		return fmt.Sprintf("%s (%d-%d)", label, b.min, b.max)
	case b.hasMin:
		return fmt.Sprintf("%s (min %d)", label, b.min)
	case b.hasMax:
		return fmt.Sprintf("%s (max %d)", label, b.max)
	default:
		return label
	}
}

func (b numberBounds) check(value int64) error {
	if b.hasMin && value < b.min {
		return fmt.Errorf("must be >= %d", b.min)
	}
	if b.hasMax && value > b.max {
		return fmt.Errorf("must be <= %d", b.max)
	}
	return nil
}

func parseBound(raw string) (int64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Ceil(f)), true
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func displayHelp(field model.Field) string {
	if h := field.UIHints["helpText"]; h != "" {
		return h
	}
	return field.Description
}

func defaultNumberValue(state *State, field model.Field) (int64, bool) {
	if value, ok := state.GetValue(field.Name); ok {
		if n, ok := toInt64(value); ok {
			return n, true
		}
	}
	return toInt64(field.Default)
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// fieldOrder lists form fields first, then any extra keys a transformer added.
func fieldOrder(form model.FormModel, values map[string]any) []string {
	order := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, field := range form.Fields {
		if _, ok := values[field.Name]; ok {
			order = append(order, field.Name)
			seen[field.Name] = struct{}{}
		}
	}
	extra := make([]string, 0)
	for key := range values {
		if _, ok := seen[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

func flattenForm(values map[string]any) string {
	out := url.Values{}
	for key, value := range values {
		if value == nil {
			continue
		}
		out.Set(key, fmt.Sprint(value))
	}
	return out.Encode()
}

func prettyPrint(order []string, values map[string]any) string {
	var b strings.Builder
	for _, key := range order {
		value := values[key]
		if value == nil {
			continue
		}
		fmt.Fprintf(&b, "%s=%v\n", key, value)
	}
	return b.String()
}
