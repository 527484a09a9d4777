package answers

import "errors"

var (
	// ErrUnknownField is returned when a key matches no field of the form.
	ErrUnknownField = errors.New("answers: unknown field")
	// ErrUnknownOption is returned when toggling a value the field does not
	// declare.
	ErrUnknownOption = errors.New("answers: unknown option")
	// ErrNotCheckbox is returned when a checkbox operation targets another
	// field type, or the wrong checkbox shape.
	ErrNotCheckbox = errors.New("answers: not a checkbox")
	// ErrInvalidValue is returned when a value does not fit the field, such as
	// "yes" on a single checkbox.
	ErrInvalidValue = errors.New("answers: invalid value")
	// ErrDisplayOnly is returned when setting a value on a description field.
	ErrDisplayOnly = errors.New("answers: field does not collect answers")
)
