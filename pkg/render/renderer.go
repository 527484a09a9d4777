// Package render defines how a form schema becomes output: the Renderer
// contract, a name-keyed Registry, and the per-request RenderOptions.
package render

import (
	"context"

	"github.com/goliatone/go-formcloud/pkg/model"
)

// Renderer converts a form schema into a byte representation (HTML, plain
// text, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormSchema, options RenderOptions) ([]byte, error)
}
