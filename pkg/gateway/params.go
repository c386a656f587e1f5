package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mcsuka/xml-xsd-json/internal/matching"
	"github.com/mcsuka/xml-xsd-json/pkg/config"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
)

// parseBody parses a request body as JSON when it starts with an object or
// array, and returns an empty object otherwise.
func parseBody(body []byte) (any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return transcode.NewObject(), nil
	}
	v, err := transcode.ParseJSON(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return v, nil
}

// requestValues is the parameter source of one request.
type requestValues struct {
	path   map[string]string
	query  url.Values
	header http.Header
}

func newRequestValues(r *http.Request, pathParams map[string]string) requestValues {
	return requestValues{
		path:   pathParams,
		query:  matching.ParseQuery(r.URL.RawQuery),
		header: r.Header,
	}
}

// lookup returns the raw values of p. Only multi value query parameters
// return more than one value.
func (v requestValues) lookup(p config.Parameter) ([]string, bool) {
	switch p.In {
	case config.InPath:
		s, ok := v.path[p.Name]
		return []string{s}, ok
	case config.InQuery:
		values, ok := v.query[p.Name]
		if !ok || len(values) == 0 {
			return nil, false
		}
		if !p.MultiValue {
			return values[:1], true
		}
		return values, true
	case config.InHeader:
		values := v.header.Values(p.Name)
		if len(values) == 0 {
			return nil, false
		}
		return values[:1], true
	}
	return nil, false
}

// injectParams sets every present parameter into body at its JSON path.
// Absent parameters leave the body untouched.
func injectParams(body any, params []config.Parameter, values requestValues) (any, error) {
	for _, p := range params {
		raw, ok := values.lookup(p)
		if !ok {
			continue
		}
		value, err := paramValue(p, raw)
		if err != nil {
			return nil, err
		}
		obj, isObject := body.(*transcode.Object)
		if !isObject {
			return nil, fmt.Errorf("%w: parameter %s needs a JSON object body", ErrBadRequest, p.Name)
		}
		if err := setPath(obj, p.Path(), value); err != nil {
			return nil, fmt.Errorf("%w: parameter %s: %v", ErrBadRequest, p.Name, err)
		}
	}
	return body, nil
}

func paramValue(p config.Parameter, raw []string) (any, error) {
	if !p.MultiValue {
		return coerce(p, raw[0])
	}
	arr := make([]any, 0, len(raw))
	for _, s := range raw {
		v, err := coerce(p, s)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

// coerce converts a parameter value to the JSON type of its schema.
func coerce(p config.Parameter, s string) (any, error) {
	switch p.Type() {
	case "boolean":
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, coercionError(p, s, errors.New("not a boolean"))
	case "integer":
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, coercionError(p, s, err)
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "number":
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && (math.IsInf(f, 0) || math.IsNaN(f)) {
			err = errors.New("not a finite number")
		}
		if err != nil {
			return nil, coercionError(p, s, err)
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return s, nil
	}
}

func coercionError(p config.Parameter, s string, cause error) error {
	return fmt.Errorf("%w: %s parameter %s: can not convert %q to %s: %v", ErrBadRequest, p.In, p.Name, s, p.Type(), cause)
}

// setPath sets value at the key path below obj, creating missing
// intermediate objects.
func setPath(obj *transcode.Object, path []string, value any) error {
	for i, key := range path[:len(path)-1] {
		next, ok := obj.Get(key)
		if !ok || next == nil {
			child := transcode.NewObject()
			obj.Set(key, child)
			obj = child
			continue
		}
		child, isObject := next.(*transcode.Object)
		if !isObject {
			return fmt.Errorf("%v is not an object", path[:i+1])
		}
		obj = child
	}
	obj.Set(path[len(path)-1], value)
	return nil
}
