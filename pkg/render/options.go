package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model pipeline.
type RenderOptions struct {
	// Action is the URL the form posts back to. Empty keeps the current page.
	Action string
	// Values pre-populates rendered controls keyed by field name. Missing keys
	// fall back to the field default.
	Values map[string]any
	// Errors surfaces validation feedback keyed by field name so renderers can
	// show it next to the offending widget.
	Errors map[string][]string
	// FormErrors carries messages that do not belong to a single field.
	FormErrors []string
	// Notice is the outcome of the last submission, if any.
	Notice *Notice
	// Theme supplies resolved theme tokens and asset URLs.
	Theme *theme.RendererConfig
}

// ValueFor returns the submitted value for name, or fallback when absent.
func (o RenderOptions) ValueFor(name string, fallback any) any {
	if value, ok := o.Values[name]; ok && value != nil {
		return value
	}
	return fallback
}
