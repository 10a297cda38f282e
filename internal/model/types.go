package model

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
)

const (
	ValidationRuleMin  = "min"
	ValidationRuleMax  = "max"
	ValidationRuleStep = "step"
)

// ValidationRule represents a single constraint applied to a field. Every
// canonical kind stores its threshold in Params["value"] as a decimal string
// so JSON snapshots stay stable.
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Value returns the rule threshold.
func (r ValidationRule) Value() string {
	return r.Params["value"]
}

// Field models an individual input inside a generated form.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Rule returns the first validation of the given kind.
func (f Field) Rule(kind string) (ValidationRule, bool) {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return ValidationRule{}, false
}

// Widget returns the widget hint, falling back to select for enums and number
// for numeric fields.
func (f Field) Widget() string {
	if widget := f.UIHints["widget"]; widget != "" {
		return widget
	}
	if len(f.Enum) > 0 {
		return "select"
	}
	if f.Type == FieldTypeInteger || f.Type == FieldTypeNumber {
		return "number"
	}
	return "text"
}

// Options returns the enum values as strings in contract order.
func (f Field) Options() []string {
	if len(f.Enum) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.Enum))
	for _, value := range f.Enum {
		if str, ok := CanonicalizeExtensionValue(value); ok {
			out = append(out, str)
		}
	}
	return out
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	OperationID string            `json:"operationId"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Field returns the named field.
func (m FormModel) Field(name string) (Field, bool) {
	for _, field := range m.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}
