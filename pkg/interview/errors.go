package interview

import "errors"

var (
	// ErrUnknownField is returned when assigning to an id outside the schema.
	ErrUnknownField = errors.New("interview: unknown field")
	// ErrSectionOutOfRange is returned by JumpTo for invalid indexes.
	ErrSectionOutOfRange = errors.New("interview: section index out of range")
	// ErrNoSections is returned when constructing over an empty schema.
	ErrNoSections = errors.New("interview: schema has no sections")
)
