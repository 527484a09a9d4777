// Package model defines the typed form schema: fields, options and sections as
// they are declared in a form document, plus the lookups renderers and
// validators need. Schemas are immutable once parsed. Parse accepts JSON and
// YAML documents and reports structural problems as *SchemaError; callers that
// load many forms wrap failures in *SchemaLoadError so one broken form never
// prevents the others from loading.
package model
