package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-incomeform/pkg/openapi"
)

const extensionNamespace = openapi.ExtensionNamespace

// Builder converts OpenAPI operations into form models.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	return &Builder{opts: opts}
}

// Build transforms the named operation's JSON request body into a FormModel.
// Fields follow the order of the schema's required list; optional properties
// come after it sorted by name.
func (b *Builder) Build(doc *openapi3.T, operationID string) (FormModel, error) {
	if doc == nil {
		return FormModel{}, errDocumentMissing
	}
	if operationID == "" {
		return FormModel{}, errOperationIDMissing
	}
	op, path, method, ok := openapi.Operation(doc, operationID)
	if !ok {
		return FormModel{}, fmt.Errorf("%w: %q", errOperationNotFound, operationID)
	}
	schema, _ := openapi.JSONSchema(op)
	if err := validateOperation(operationID, path, method, schema); err != nil {
		return FormModel{}, err
	}

	form := FormModel{
		OperationID: op.OperationID,
		Endpoint:    path,
		Method:      strings.ToUpper(method),
		Summary:     op.Summary,
		Description: op.Description,
		Metadata:    make(map[string]string),
	}
	if len(doc.Servers) > 0 && doc.Servers[0] != nil && doc.Servers[0].URL != "" {
		form.Metadata["server"] = doc.Servers[0].URL
	}
	if schema.Title != "" {
		form.Metadata["schema"] = schema.Title
	}
	mergeMetadata(form.Metadata, metadataFromExtensions(op.Extensions))

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}
	for _, name := range propertyOrder(schema) {
		_, isRequired := required[name]
		form.Fields = append(form.Fields, b.fieldFromPrimitive(name, schema.Properties[name].Value, isRequired))
	}

	if len(form.Metadata) == 0 {
		form.Metadata = nil
	}
	return form, nil
}

func propertyOrder(schema *openapi3.Schema) []string {
	seen := make(map[string]struct{}, len(schema.Properties))
	order := make([]string, 0, len(schema.Properties))
	for _, name := range schema.Required {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}

	var rest []string
	for name := range schema.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func (b *Builder) fieldFromPrimitive(name string, schema *openapi3.Schema, required bool) Field {
	field := Field{
		Name:        name,
		Type:        mapType(schema.Type),
		Label:       b.opts.Labeler(name),
		Description: schema.Description,
		Required:    required,
		Default:     schema.Default,
	}
	if schema.Title != "" {
		field.Label = schema.Title
	}
	if len(schema.Enum) > 0 {
		field.Enum = append([]any(nil), schema.Enum...)
	}

	ext := metadataFromExtensions(schema.Extensions)
	applyValidations(&field, schema, ext)
	mergeMetadata(field.ensureMetadata(), ext)
	field.UIHints = mergeUIHints(field.UIHints, filterUIHints(ext))
	field.applyUIHintAttributes()
	field.normalizeMetadata()
	field.normalizeUIHints()
	return field
}

func mapType(types *openapi3.Types) FieldType {
	switch {
	case types.Is(openapi3.TypeInteger):
		return FieldTypeInteger
	case types.Is(openapi3.TypeNumber):
		return FieldTypeNumber
	case types.Is(openapi3.TypeBoolean):
		return FieldTypeBoolean
	default:
		return FieldTypeString
	}
}

func applyValidations(field *Field, schema *openapi3.Schema, ext map[string]string) {
	if schema.Min != nil {
		field.Validations = append(field.Validations, rule(ValidationRuleMin, formatFloat(*schema.Min)))
	}
	if schema.Max != nil {
		field.Validations = append(field.Validations, rule(ValidationRuleMax, formatFloat(*schema.Max)))
	}
	if step := ext["step"]; step != "" {
		if _, err := strconv.ParseFloat(step, 64); err == nil {
			field.Validations = append(field.Validations, rule(ValidationRuleStep, step))
		}
	}
	if len(field.Validations) == 0 {
		field.Validations = nil
	}
}

func rule(kind, value string) ValidationRule {
	return ValidationRule{Kind: kind, Params: map[string]string{"value": value}}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// metadataFromExtensions flattens the x-formgen object and any
// x-formgen-<key> siblings into string metadata.
func metadataFromExtensions(ext map[string]any) map[string]string {
	if len(ext) == 0 {
		return nil
	}

	result := make(map[string]string)
	for key, value := range ext {
		if key == extensionNamespace {
			nested, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for nestedKey, nestedValue := range nested {
				if str, ok := CanonicalizeExtensionValue(nestedValue); ok {
					result[nestedKey] = str
				}
			}
			continue
		}
		if strings.HasPrefix(key, extensionNamespace+"-") {
			if str, ok := CanonicalizeExtensionValue(value); ok {
				result[strings.TrimPrefix(key, extensionNamespace+"-")] = str
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

func mergeMetadata(target map[string]string, updates map[string]string) {
	if len(updates) == 0 || target == nil {
		return
	}
	for _, key := range sortedKeys(updates) {
		target[key] = updates[key]
	}
}

func mergeUIHints(target map[string]string, updates map[string]string) map[string]string {
	if len(updates) == 0 {
		return target
	}
	if target == nil {
		target = make(map[string]string, len(updates))
	}
	for _, key := range sortedKeys(updates) {
		target[key] = updates[key]
	}
	return target
}

func filterUIHints(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	result := make(map[string]string)
	for key, value := range metadata {
		if value != "" && IsAllowedUIHintKey(key) {
			result[key] = value
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func (f *Field) ensureMetadata() map[string]string {
	if f.Metadata == nil {
		f.Metadata = make(map[string]string)
	}
	return f.Metadata
}

func (f *Field) normalizeMetadata() {
	if f.Metadata != nil && len(f.Metadata) == 0 {
		f.Metadata = nil
	}
}

func (f *Field) normalizeUIHints() {
	if f.UIHints != nil && len(f.UIHints) == 0 {
		f.UIHints = nil
	}
}

func (f *Field) applyUIHintAttributes() {
	if len(f.UIHints) == 0 {
		return
	}
	if label := f.UIHints["label"]; label != "" {
		f.Label = label
	}
	if hint := f.UIHints["hint"]; hint != "" && f.Description == "" {
		f.Description = hint
	}
	if help := f.UIHints["helpText"]; help != "" && f.Description == "" {
		f.Description = help
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
