// Package openapi describes the submission contract of forms as an OpenAPI 3
// document and validates submissions against it.
package openapi
