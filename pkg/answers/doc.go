// Package answers holds answer state: the editable Draft behind a form being
// filled and the immutable AnswerRecord that gets stored. Answers are flat
// string maps keyed by model.Field.Key. Multi-option checkboxes store
// comma-joined option values in selection order.
package answers
