package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	errDocumentMissing        = errors.New("model builder: document is required")
	errOperationIDMissing     = errors.New("model builder: operation id is required")
	errOperationNotFound      = errors.New("model builder: operation not found")
	errOperationPathMissing   = errors.New("model builder: operation path is required")
	errOperationMethodMissing = errors.New("model builder: operation method is required")
	errRequestBodyMissing     = errors.New("model builder: operation has no json request body")
)

func validateOperation(operationID, path, method string, schema *openapi3.Schema) error {
	if operationID == "" {
		return errOperationIDMissing
	}
	if path == "" {
		return errOperationPathMissing
	}
	if strings.TrimSpace(method) == "" {
		return errOperationMethodMissing
	}
	if schema == nil {
		return errRequestBodyMissing
	}
	if err := validateSchema(schema); err != nil {
		return fmt.Errorf("model builder: invalid request body: %w", err)
	}
	return nil
}

func validateSchema(schema *openapi3.Schema) error {
	if schema.Type != nil && !schema.Type.Is(openapi3.TypeObject) {
		return fmt.Errorf("request body must be an object, got %v", schema.Type.Slice())
	}
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			return fmt.Errorf("property %q has an unresolved schema", name)
		}
		if ref.Value.Type.Is(openapi3.TypeObject) || ref.Value.Type.Is(openapi3.TypeArray) {
			return fmt.Errorf("property %q: nested %v fields are not supported", name, ref.Value.Type.Slice())
		}
	}
	for _, name := range schema.Required {
		if _, ok := schema.Properties[name]; !ok {
			return fmt.Errorf("required property %q is not defined", name)
		}
	}
	return nil
}
