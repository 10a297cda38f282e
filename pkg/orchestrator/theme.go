package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

const (
	// DefaultThemeName identifies the built-in manifest.
	DefaultThemeName = "incomeform"
	// DefaultThemeVariant is used when callers do not request a variant.
	DefaultThemeVariant = "light"
)

var (
	// ErrThemeNotFound is returned when no manifest matches the requested name.
	ErrThemeNotFound = errors.New("orchestrator: theme not found")
	// ErrThemeVariantNotFound is returned when the manifest lacks the variant.
	ErrThemeVariantNotFound = errors.New("orchestrator: theme variant not found")
)

// ThemeSelector resolves a theme manifest and variant.
type ThemeSelector interface {
	Select(name, variant string, opts ...theme.QueryOption) (*theme.Selection, error)
}

// ManifestSelector serves selections from an in-memory set of manifests. The
// first registered manifest answers requests that omit the theme name.
type ManifestSelector struct {
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers the supplied manifests.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		name := strings.TrimSpace(manifest.Name)
		if name == "" {
			return nil, errors.New("orchestrator: theme manifest name is required")
		}
		if _, exists := s.manifests[name]; exists {
			return nil, fmt.Errorf("orchestrator: theme %q registered twice", name)
		}
		s.manifests[name] = manifest
		if s.fallback == "" {
			s.fallback = name
		}
	}
	return s, nil
}

// Select returns the named manifest with the requested variant. An empty
// variant selects the base tokens.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if s == nil {
		return nil, ErrThemeNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.fallback
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q/%q", ErrThemeVariantNotFound, name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// DefaultManifest returns the built-in light/dark palette consumed by the
// vanilla stylesheet.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"if-bg":      "#f3f4f6",
			"if-surface": "#ffffff",
			"if-text":    "#111827",
			"if-muted":   "#6b7280",
			"if-accent":  "#2563eb",
			"if-error":   "#b91c1c",
			"if-success": "#15803d",
			"if-radius":  "6px",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"incomeform.css": "incomeform.css",
			},
		},
		Variants: map[string]theme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"if-bg":      "#111827",
					"if-surface": "#1f2937",
					"if-text":    "#f9fafb",
					"if-muted":   "#9ca3af",
					"if-accent":  "#60a5fa",
					"if-error":   "#f87171",
					"if-success": "#4ade80",
				},
			},
		},
	}
}

// defaultThemeFallbacks maps component partial keys to the vanilla templates.
func defaultThemeFallbacks() map[string]string {
	return map[string]string{
		"forms.number": "templates/components/number.tmpl",
		"forms.slider": "templates/components/slider.tmpl",
		"forms.select": "templates/components/select.tmpl",
		"forms.text":   "templates/components/text.tmpl",
	}
}

// rendererConfig flattens a selection into the config renderers consume:
// variant tokens, templates and assets override the manifest base.
func rendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil {
		return nil
	}

	var (
		tokens   = map[string]string{}
		partials = defaultThemeFallbacks()
		files    = map[string]string{}
		prefix   string
	)

	if manifest := selection.Manifest; manifest != nil {
		mergeInto(tokens, manifest.Tokens)
		mergeInto(partials, manifest.Templates)
		mergeInto(files, manifest.Assets.Files)
		prefix = manifest.Assets.Prefix

		if variant, ok := manifest.Variants[selection.Variant]; ok {
			mergeInto(tokens, variant.Tokens)
			mergeInto(partials, variant.Templates)
			mergeInto(files, variant.Assets.Files)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, files),
	}
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	prefix = strings.TrimRight(prefix, "/")
	return func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" || strings.Contains(file, "://") {
			return file
		}
		return prefix + "/" + strings.TrimLeft(file, "/")
	}
}

func mergeInto(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
