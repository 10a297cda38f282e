package openapi

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-incomeform/pkg/census"
)

const (
	// OperationID names the prediction operation inside the document.
	OperationID = "predictIncome"

	// DefaultEndpoint is the prediction service address used when none is configured.
	DefaultEndpoint = "http://127.0.0.1:8000/predict"

	// ExtensionNamespace carries renderer hints on request schema properties.
	ExtensionNamespace = "x-formgen"

	// Response keys returned by the prediction service.
	ResponsePredictedIncome = "predicted_income"
	ResponseError           = "error"

	contractVersion = "1.0.0"
)

var ErrInvalidEndpoint = errors.New("openapi: invalid endpoint")

// Document builds the contract for the prediction service reachable at
// endpoint. The endpoint's scheme and host become the server URL; its path
// becomes the single POST operation.
func Document(endpoint string) (*openapi3.T, error) {
	server, path, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	op := &openapi3.Operation{
		OperationID: OperationID,
		Summary:     "Predict income bracket",
		Description: "Predicts whether a person's income exceeds 50K per year from census attributes.",
		Tags:        []string{"prediction"},
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Census record").
				WithRequired(true).
				WithJSONSchema(RequestSchema()),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(200, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Prediction outcome").
					WithJSONSchema(ResponseSchema()),
			}),
		),
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Income Prediction",
			Version: contractVersion,
		},
		Servers: openapi3.Servers{{URL: server}},
		Paths:   openapi3.NewPaths(openapi3.WithPath(path, &openapi3.PathItem{Post: op})),
	}
	return doc, nil
}

// RequestSchema returns the object schema of the prediction request. Every
// census field is a required property; numeric widgets carry their bounds and
// selects their closed option list.
func RequestSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = "CensusRecord"
	schema.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(false)}

	for _, spec := range census.Fields() {
		schema.WithProperty(spec.Name, propertySchema(spec))
		schema.Required = append(schema.Required, spec.Name)
	}
	return schema
}

// ResponseSchema returns the schema of the prediction response. Both keys are
// optional; clients treat a missing predicted_income as an error outcome.
func ResponseSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = "PredictionResponse"
	schema.WithProperty(ResponsePredictedIncome, openapi3.NewStringSchema().WithNullable())
	schema.WithProperty(ResponseError, openapi3.NewStringSchema().WithNullable())
	return schema
}

func propertySchema(spec census.FieldSpec) *openapi3.Schema {
	var schema *openapi3.Schema
	hints := map[string]any{"widget": string(spec.Widget)}

	if spec.Numeric() {
		schema = openapi3.NewIntegerSchema()
		if spec.Min != nil {
			schema.WithMin(float64(*spec.Min))
		}
		if spec.Max != nil {
			schema.WithMax(float64(*spec.Max))
		}
		if spec.Step > 0 {
			hints["step"] = spec.Step
		}
	} else {
		schema = openapi3.NewStringSchema()
		enum := make([]any, 0, len(spec.Options))
		for _, option := range spec.Options {
			enum = append(enum, option)
		}
		schema.WithEnum(enum...)
	}

	schema.Title = spec.Label
	schema.Default = defaultValue(spec)
	if spec.Help != "" {
		hints["helpText"] = spec.Help
	}
	schema.Extensions = map[string]any{ExtensionNamespace: hints}
	return schema
}

// defaultValue mirrors the JSON decoder so defaults compare equal before and
// after a round trip.
func defaultValue(spec census.FieldSpec) any {
	value := spec.Default()
	if n, ok := value.(int); ok {
		return float64(n)
	}
	return value
}

func splitEndpoint(endpoint string) (string, string, error) {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("%w: host is required", ErrInvalidEndpoint)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return u.Scheme + "://" + u.Host, path, nil
}

// Operation locates an operation by id, returning its path and method.
func Operation(doc *openapi3.T, operationID string) (*openapi3.Operation, string, string, bool) {
	if doc == nil || doc.Paths == nil {
		return nil, "", "", false
	}
	for _, path := range doc.Paths.InMatchingOrder() {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op, path, method, true
			}
		}
	}
	return nil, "", "", false
}

// JSONSchema returns the application/json schema of an operation's request body.
func JSONSchema(op *openapi3.Operation) (*openapi3.Schema, bool) {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, false
	}
	media := op.RequestBody.Value.GetMediaType("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, false
	}
	return media.Schema.Value, true
}
