package schema

import "errors"

var (
	// ErrUnsupportedVariant indicates no schema is registered for a variant.
	ErrUnsupportedVariant = errors.New("schema: unsupported variant")
	// ErrUnknownEntryType indicates the variant has no layout for an entry type.
	ErrUnknownEntryType = errors.New("schema: unknown entry type")
	// ErrNotMeasurable indicates a layout only describes part of its payload.
	ErrNotMeasurable = errors.New("schema: layout not measurable")
	// ErrShortPayload indicates the bytes ran out before the layout did.
	ErrShortPayload = errors.New("schema: payload shorter than layout")
)
