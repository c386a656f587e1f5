package xsd

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrSchemaNotFound is returned when the requested root element or path
	// does not exist in the schema.
	ErrSchemaNotFound = errors.New("schema element not found")

	// ErrDocumentSource is matched by every *DocumentSourceError.
	ErrDocumentSource = errors.New("document source failure")

	// ErrSchemaInvalid is returned for references that cannot be resolved,
	// such as a type name that is not declared or an unknown prefix.
	ErrSchemaInvalid = errors.New("invalid schema")

	// ErrInvalidLocation is returned when a schema location cannot be
	// normalised, e.g. when ".." climbs above the first segment.
	ErrInvalidLocation = errors.New("invalid schema location")
)

// DocumentSourceError reports a failure to fetch or parse a schema document.
type DocumentSourceError struct {
	Location string
	Cause    error
}

func (e *DocumentSourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("loading %s: %v", e.Location, e.Cause)
	}
	return "loading " + e.Location
}

func (e *DocumentSourceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrDocumentSource.
func (e *DocumentSourceError) Is(target error) bool {
	return target == ErrDocumentSource
}

func notFound(root, location string) error {
	return fmt.Errorf("%w: %s in %s", ErrSchemaNotFound, root, location)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaInvalid, fmt.Sprintf(format, args...))
}
