package id

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// CorrelationHeader carries the identifier shared by a REST request and the
// SOAP call made for it.
const CorrelationHeader = "X-Correlation-Id"

// maxLength bounds identifiers accepted from clients.
const maxLength = 128

// Generator returns a new identifier on every call.
type Generator func() string

// UUID generates a random (version 4) UUID.
func UUID() string {
	return uuid.NewString()
}

// IsUUID reports whether s is a UUID in any of the forms uuid.Parse
// accepts.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Correlation returns the correlation identifier of an inbound request, or
// a new one from gen when the header is absent or unusable. gen defaults to
// UUID.
func Correlation(h http.Header, gen Generator) string {
	if v := strings.TrimSpace(h.Get(CorrelationHeader)); acceptable(v) {
		return v
	}
	if gen == nil {
		gen = UUID
	}
	return gen()
}

// acceptable rejects empty, oversized and non printable identifiers, which
// would be echoed into logs and outbound headers.
func acceptable(s string) bool {
	if s == "" || len(s) > maxLength {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
