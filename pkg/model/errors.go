package model

import (
	"errors"
	"fmt"
)

// ErrSchemaLoad matches every *SchemaLoadError via errors.Is.
var ErrSchemaLoad = errors.New("model: schema load failed")

// SchemaError reports a structural problem in a schema document: a missing
// required key or a value of the wrong type.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "model: invalid schema: " + e.Reason
	}
	return fmt.Sprintf("model: invalid schema at %s: %s", e.Path, e.Reason)
}

func missingKey(path string) *SchemaError {
	return &SchemaError{Path: path, Reason: "missing required key"}
}

// SchemaLoadError wraps the failure to load one form. It is recoverable: the
// form is skipped and the rest of the catalog remains usable.
type SchemaLoadError struct {
	Form     string
	Location string
	Err      error
}

func (e *SchemaLoadError) Error() string {
	if e.Location != "" && e.Location != e.Form {
		return fmt.Sprintf("model: load form %q (%s): %v", e.Form, e.Location, e.Err)
	}
	return fmt.Sprintf("model: load form %q: %v", e.Form, e.Err)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrSchemaLoad) match any SchemaLoadError.
func (e *SchemaLoadError) Is(target error) bool {
	return target == ErrSchemaLoad
}
