package matching

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var paramName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// Template is a REST path with named parameter segments.
type Template struct {
	raw      string
	segments []segment
}

type segment struct {
	literal string
	param   string
}

// ParseTemplate parses a path template. Parameters must span a whole
// segment and be unique.
func ParseTemplate(path string) (*Template, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path %q must start with /", path)
	}
	t := &Template{raw: path}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return t, nil
	}

	seen := map[string]bool{}
	for _, part := range strings.Split(trimmed, "/") {
		switch {
		case part == "":
			return nil, fmt.Errorf("path %q has an empty segment", path)
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name := part[1 : len(part)-1]
			if !paramName.MatchString(name) {
				return nil, fmt.Errorf("path %q has an invalid parameter name %q", path, name)
			}
			if seen[name] {
				return nil, fmt.Errorf("path %q repeats parameter %q", path, name)
			}
			seen[name] = true
			t.segments = append(t.segments, segment{param: name})
		case strings.ContainsAny(part, "{}"):
			return nil, fmt.Errorf("path %q: parameters must span a whole segment, got %q", path, part)
		default:
			t.segments = append(t.segments, segment{literal: part})
		}
	}
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
func MustParseTemplate(path string) *Template {
	t, err := ParseTemplate(path)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template as written.
func (t *Template) String() string {
	return t.raw
}

// Pattern returns the template with parameter names erased, so that
// templates matching the same paths compare equal.
func (t *Template) Pattern() string {
	var b strings.Builder
	for _, s := range t.segments {
		b.WriteByte('/')
		if s.param != "" {
			b.WriteString("{}")
		} else {
			b.WriteString(s.literal)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// Params returns the parameter names in path order.
func (t *Template) Params() []string {
	var names []string
	for _, s := range t.segments {
		if s.param != "" {
			names = append(names, s.param)
		}
	}
	return names
}

// Has reports whether the template declares parameter name.
func (t *Template) Has(name string) bool {
	for _, s := range t.segments {
		if s.param == name {
			return true
		}
	}
	return false
}

// Score rates the specificity of the template.
func (t *Template) Score() int {
	score := 0
	for _, s := range t.segments {
		if s.param != "" {
			score += ScorePathNamedParams
		} else {
			score += ScorePathExact
		}
	}
	return score
}

// Match matches an escaped request path and returns the unescaped
// parameter values. A trailing slash is ignored.
func (t *Template) Match(path string) (map[string]string, bool) {
	trimmed := strings.Trim(path, "/")
	var parts []string
	if trimmed != "" {
		parts = strings.Split(trimmed, "/")
	}
	if len(parts) != len(t.segments) {
		return nil, false
	}

	params := make(map[string]string, len(t.segments))
	for i, s := range t.segments {
		if s.param == "" {
			if s.literal != parts[i] {
				return nil, false
			}
			continue
		}
		if parts[i] == "" {
			return nil, false
		}
		v, err := url.PathUnescape(parts[i])
		if err != nil {
			v = parts[i]
		}
		params[s.param] = v
	}
	return params, true
}
