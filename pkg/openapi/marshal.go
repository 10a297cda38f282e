package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Format selects the serialisation used by Marshal.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("openapi: unsupported format %q", raw)
	}
}

// Marshal serialises doc as indented JSON or block-style YAML. Key order
// follows the JSON encoding in both formats.
func Marshal(doc *openapi3.T, format Format) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("openapi: document is required")
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal json: %w", err)
	}

	switch format {
	case FormatJSON, "":
		return append(payload, '\n'), nil
	case FormatYAML:
		return jsonToYAML(payload)
	default:
		return nil, fmt.Errorf("openapi: unsupported format %q", format)
	}
}

func jsonToYAML(payload []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(payload, &node); err != nil {
		return nil, fmt.Errorf("openapi: decode json as yaml: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("openapi: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("openapi: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// blockStyle clears the flow and quoting styles inherited from JSON so the
// encoder picks block layout and quotes only where YAML needs it.
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}

// Load parses and validates a serialised contract (JSON or YAML).
func Load(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}
	return doc, nil
}
