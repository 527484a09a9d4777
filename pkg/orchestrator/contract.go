package orchestrator

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/openapi"
)

// OpenAPI describes the submission endpoints of the named forms, or of every
// catalog form when none are named.
func (o *Orchestrator) OpenAPI(ctx context.Context, opts openapi.Options, formIDs ...string) (*openapi3.T, error) {
	forms := o.catalog.Forms()
	if len(formIDs) > 0 {
		forms = make([]model.FormSchema, 0, len(formIDs))
		for _, id := range formIDs {
			form, err := o.Form(id)
			if err != nil {
				return nil, err
			}
			forms = append(forms, form)
		}
	}
	return openapi.Build(ctx, forms, opts)
}
