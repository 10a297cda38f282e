// Package incomeform renders a census income form and submits it to an income
// prediction service. The root package re-exports the common entry points;
// the pipeline itself lives in pkg/orchestrator.
package incomeform

import (
	"context"

	"github.com/goliatone/go-incomeform/pkg/orchestrator"
	"github.com/goliatone/go-incomeform/pkg/predict"
	"github.com/goliatone/go-incomeform/pkg/render"
)

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface validation errors.
type RenderOptions = render.RenderOptions

// Submission aliases orchestrator.Submission.
type Submission = orchestrator.Submission

// Result aliases predict.Result.
type Result = predict.Result

// DefaultEndpoint is the prediction service URL used when none is configured.
const DefaultEndpoint = predict.DefaultEndpoint

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML renders the form page with the default vanilla renderer.
func GenerateHTML(ctx context.Context, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Render(ctx, orchestrator.Request{RenderOptions: opts})
}

// Submit validates values and posts them once to the prediction service
// configured through options.
func Submit(ctx context.Context, values map[string]any, options ...orchestrator.Option) Submission {
	return orchestrator.New(options...).Submit(ctx, values)
}
