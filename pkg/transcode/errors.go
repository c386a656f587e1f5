package transcode

import (
	"errors"
	"fmt"

	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

// Sentinel errors.
var (
	// ErrUnsupportedTranslation is returned by schema guided translation on
	// a translator built without a schema.
	ErrUnsupportedTranslation = errors.New("translation requires a schema")

	// ErrMalformedInput is returned when JSON or XML input can not be parsed.
	ErrMalformedInput = errors.New("malformed input")
)

// ScalarCoercionError reports XML text that does not parse as the scalar
// type declared by the schema.
type ScalarCoercionError struct {
	Path  string
	Type  xsd.DataType
	Value string
	Cause error
}

func (e *ScalarCoercionError) Error() string {
	return fmt.Sprintf("%s: can not convert %q to %s", e.Path, e.Value, e.Type)
}

func (e *ScalarCoercionError) Unwrap() error {
	return e.Cause
}
