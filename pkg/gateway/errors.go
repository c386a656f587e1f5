package gateway

import "errors"

var (
	// ErrBadRequest marks failures caused by the REST request itself:
	// malformed JSON bodies and parameters that do not fit their type.
	ErrBadRequest = errors.New("bad request")

	// ErrBackend marks failures of the outbound SOAP call.
	ErrBackend = errors.New("SOAP call failed")
)
