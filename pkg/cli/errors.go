package cli

import "errors"

// Common CLI errors
var (
	ErrInvalidFlag      = errors.New("invalid flag value")
	ErrMissingSchema    = errors.New("a schema is required - use --xsd or --wsdl")
	ErrValidationFailed = errors.New("validation failed")
	ErrFileExists       = errors.New("file already exists")
)
