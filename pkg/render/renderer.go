package render

import (
	"context"

	"github.com/goliatone/go-incomeform/pkg/model"
)

// Renderer converts a FormModel into a byte representation (HTML page,
// terminal transcript, JSON values).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, model model.FormModel, options RenderOptions) ([]byte, error)
}
