package model

import internalmodel "github.com/goliatone/go-incomeform/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeString  = internalmodel.FieldTypeString
	FieldTypeInteger = internalmodel.FieldTypeInteger
	FieldTypeNumber  = internalmodel.FieldTypeNumber
	FieldTypeBoolean = internalmodel.FieldTypeBoolean
)

const (
	ValidationRuleMin  = internalmodel.ValidationRuleMin
	ValidationRuleMax  = internalmodel.ValidationRuleMax
	ValidationRuleStep = internalmodel.ValidationRuleStep
)

type ValidationRule = internalmodel.ValidationRule
type Field = internalmodel.Field
type FormModel = internalmodel.FormModel

// AllowedUIHintKeys lists the extension keys surfaced through Field.UIHints.
func AllowedUIHintKeys() []string {
	return internalmodel.AllowedUIHintKeys()
}
