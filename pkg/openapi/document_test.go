package openapi_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-incomeform/pkg/census"
	"github.com/goliatone/go-incomeform/pkg/openapi"
)

func TestDocument_DefaultEndpoint(t *testing.T) {
	doc, err := openapi.Document("")
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if got := doc.Servers[0].URL; got != "http://127.0.0.1:8000" {
		t.Fatalf("server url: got %q", got)
	}
	op, path, method, ok := openapi.Operation(doc, openapi.OperationID)
	if !ok {
		t.Fatalf("operation %q not found", openapi.OperationID)
	}
	if path != "/predict" || method != "POST" {
		t.Fatalf("unexpected route %s %s", method, path)
	}
	schema, ok := openapi.JSONSchema(op)
	if !ok {
		t.Fatalf("request body schema missing")
	}
	if diff := cmp.Diff(census.FieldNames(), schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_CustomEndpoint(t *testing.T) {
	doc, err := openapi.Document("https://models.internal:9443/v2/income")
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if got := doc.Servers[0].URL; got != "https://models.internal:9443" {
		t.Fatalf("server url: got %q", got)
	}
	if _, path, _, ok := openapi.Operation(doc, openapi.OperationID); !ok || path != "/v2/income" {
		t.Fatalf("expected /v2/income, got %q (found=%v)", path, ok)
	}
}

func TestDocument_RejectsInvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"ftp://example.com/predict", "http:///predict", "://bad"} {
		if _, err := openapi.Document(endpoint); !errors.Is(err, openapi.ErrInvalidEndpoint) {
			t.Fatalf("endpoint %q: expected ErrInvalidEndpoint, got %v", endpoint, err)
		}
	}
}

func TestRequestSchema_Properties(t *testing.T) {
	schema := openapi.RequestSchema()

	age := schema.Properties[census.FieldAge].Value
	if !age.Type.Is("integer") {
		t.Fatalf("age type: %v", age.Type)
	}
	if age.Min == nil || *age.Min != 17 || age.Max != nil {
		t.Fatalf("age bounds: min=%v max=%v", age.Min, age.Max)
	}

	hours := schema.Properties[census.FieldHoursPerWeek].Value
	if hours.Min == nil || *hours.Min != 1 || hours.Max == nil || *hours.Max != 99 {
		t.Fatalf("hours bounds: min=%v max=%v", hours.Min, hours.Max)
	}
	hints, ok := hours.Extensions[openapi.ExtensionNamespace].(map[string]any)
	if !ok {
		t.Fatalf("hours hints missing: %#v", hours.Extensions)
	}
	if hints["widget"] != "slider" {
		t.Fatalf("hours widget: %v", hints["widget"])
	}

	race := schema.Properties[census.FieldRace].Value
	if len(race.Enum) != len(census.RaceOptions) {
		t.Fatalf("race enum: got %d values", len(race.Enum))
	}
	if race.Enum[len(race.Enum)-1] != census.None {
		t.Fatalf("race enum should end with None, got %v", race.Enum[len(race.Enum)-1])
	}
}

func TestValidatePayload(t *testing.T) {
	ctx := context.Background()

	if err := openapi.ValidatePayload(ctx, census.Default().Payload()); err != nil {
		t.Fatalf("default payload: %v", err)
	}

	payload := census.Default().Payload()
	payload[census.FieldSex] = "Other"
	if err := openapi.ValidatePayload(ctx, payload); !errors.Is(err, openapi.ErrPayloadRejected) {
		t.Fatalf("expected rejection for unknown option, got %v", err)
	}

	payload = census.Default().Payload()
	payload[census.FieldEducationNum] = 17
	if err := openapi.ValidatePayload(ctx, payload); !errors.Is(err, openapi.ErrPayloadRejected) {
		t.Fatalf("expected rejection for out of range value, got %v", err)
	}

	payload = census.Default().Payload()
	delete(payload, census.FieldFnlwgt)
	if err := openapi.ValidatePayload(ctx, payload); !errors.Is(err, openapi.ErrPayloadRejected) {
		t.Fatalf("expected rejection for missing key, got %v", err)
	}

	payload = census.Default().Payload()
	payload["extra"] = true
	if err := openapi.ValidatePayload(ctx, payload); !errors.Is(err, openapi.ErrPayloadRejected) {
		t.Fatalf("expected rejection for extra key, got %v", err)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	ctx := context.Background()
	doc, err := openapi.Document(openapi.DefaultEndpoint)
	if err != nil {
		t.Fatalf("document: %v", err)
	}

	for _, format := range []openapi.Format{openapi.FormatJSON, openapi.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := openapi.Marshal(doc, format)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if format == openapi.FormatYAML && strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
				t.Fatalf("expected block yaml, got flow output")
			}

			loaded, err := openapi.Load(ctx, data)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			op, _, _, ok := openapi.Operation(loaded, openapi.OperationID)
			if !ok {
				t.Fatalf("operation missing after round trip")
			}
			schema, ok := openapi.JSONSchema(op)
			if !ok {
				t.Fatalf("schema missing after round trip")
			}
			if diff := cmp.Diff(census.FieldNames(), schema.Required); diff != "" {
				t.Fatalf("required mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]openapi.Format{"": openapi.FormatJSON, "JSON": openapi.FormatJSON, "yml": openapi.FormatYAML, "yaml": openapi.FormatYAML}
	for raw, want := range cases {
		got, err := openapi.ParseFormat(raw)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := openapi.ParseFormat("toml"); err == nil {
		t.Fatalf("expected error for toml")
	}
}
