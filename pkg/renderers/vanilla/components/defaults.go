package components

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	templatePrefix = "templates/components/"
)

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components used by the vanilla renderer.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameNumber, Descriptor{
		Renderer: templateComponentRenderer("forms.number", templatePrefix+"number.tmpl"),
	})
	registry.MustRegister(NameSlider, Descriptor{
		Renderer: templateComponentRenderer("forms.slider", templatePrefix+"slider.tmpl"),
	})
	registry.MustRegister(NameSelect, Descriptor{
		Renderer: templateComponentRenderer("forms.select", templatePrefix+"select.tmpl"),
	})
	registry.MustRegister(NameText, Descriptor{
		Renderer: templateComponentRenderer("forms.text", templatePrefix+"text.tmpl"),
	})

	return registry
}

// templateComponentRenderer renders templateName, or the theme partial
// registered under partialKey when one is configured.
func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
			resolvedTemplate = candidate
		}

		rendered, err := data.Template.RenderTemplate(resolvedTemplate, map[string]any{
			"field": field,
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolvedTemplate, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
