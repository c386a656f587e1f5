package matching

import (
	"net/url"
	"strings"
)

// ParseQuery parses a raw query string. Unlike url.ParseQuery, a key
// without "=" is a flag with the value "true", and a component with an
// invalid escape is kept as written instead of failing the whole query.
func ParseQuery(raw string) url.Values {
	values := url.Values{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, hasValue := strings.Cut(pair, "=")
		key = unescape(key)
		if key == "" {
			continue
		}
		if !hasValue {
			values.Add(key, "true")
			continue
		}
		values.Add(key, unescape(value))
	}
	return values
}

func unescape(s string) string {
	v, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return v
}
