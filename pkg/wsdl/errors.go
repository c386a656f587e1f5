package wsdl

import "errors"

// ErrOperationNotFound is returned when a WSDL does not define the
// requested operation.
var ErrOperationNotFound = errors.New("operation not found")

// Error represents a failure to read or interpret a WSDL document.
type Error struct {
	Location string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Location != "" {
		msg = e.Location + ": " + msg
	}
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}
