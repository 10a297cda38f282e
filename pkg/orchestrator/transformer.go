package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goliatone/go-incomeform/pkg/model"
)

// Transformer mutates a FormModel after building and before decorators run.
// Implementations can relabel fields, inject metadata or reword help text.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormModel) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormModel) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file.
// The document shape supports form-level metadata and per-field patches:
//
//	{
//	  "summary": "Census income",
//	  "metadata": {"submitLabel": "Estimate"},
//	  "fields": {
//	    "fnlwgt": {"label": "Sampling weight", "uiHints": {"helpText": "From the census row."}}
//	  }
//	}
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Summary  string                    `json:"summary"`
	Metadata map[string]string         `json:"metadata"`
	Fields   map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	UIHints     map[string]string `json:"uiHints"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied form. Patches
// naming unknown fields fail so typos surface at startup.
func (t *JSONPresetTransformer) Transform(ctx context.Context, form *model.FormModel) error {
	if form == nil {
		return errors.New("json preset transformer: form model is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.Summary != "" {
		form.Summary = t.document.Summary
	}
	if len(t.document.Metadata) > 0 {
		form.Metadata = mergeStringMap(form.Metadata, t.document.Metadata)
	}

	names := make([]string, 0, len(t.document.Fields))
	for name := range t.document.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := findField(form.Fields, name)
		if field == nil {
			return fmt.Errorf("json preset transformer: field %q not found", name)
		}
		applyFieldPatch(field, t.document.Fields[name])
	}
	return nil
}

func applyFieldPatch(field *model.Field, patch jsonFieldPatch) {
	if field == nil {
		return
	}
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Description = patch.Description
	}
	if len(patch.Metadata) > 0 {
		field.Metadata = mergeStringMap(field.Metadata, patch.Metadata)
	}
	if len(patch.UIHints) > 0 {
		field.UIHints = mergeStringMap(field.UIHints, patch.UIHints)
	}
}

func findField(fields []model.Field, name string) *model.Field {
	name = strings.TrimSpace(name)
	for idx := range fields {
		if fields[idx].Name == name {
			return &fields[idx]
		}
	}
	return nil
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
