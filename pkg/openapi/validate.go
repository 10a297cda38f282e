package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

var ErrPayloadRejected = errors.New("openapi: payload rejected by contract")

// ValidatePayload checks a prediction request against RequestSchema. The
// payload is normalised through encoding/json first so Go integer and enum
// types compare the way they would on the wire.
func ValidatePayload(ctx context.Context, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("openapi: encode payload: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("openapi: decode payload: %w", err)
	}

	if err := RequestSchema().VisitJSON(decoded, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %w", ErrPayloadRejected, err)
	}
	return nil
}
