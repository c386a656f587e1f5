package xsd

import (
	"fmt"
	"strings"
)

// NormalizeLocation canonicalises a schema location so that different
// spellings of the same document share one cache entry. Back-slashes become
// slashes, "." segments are dropped and ".." removes the preceding segment.
func NormalizeLocation(location string) (string, error) {
	parts := strings.Split(strings.ReplaceAll(location, `\`, "/"), "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p {
		case ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", fmt.Errorf("%w: %s", ErrInvalidLocation, location)
			}
			out = out[:len(out)-1]
		default:
			out = append(out, p)
		}
	}
	return strings.Join(out, "/"), nil
}

// baseLocation returns location up to and including its last slash.
func baseLocation(location string) string {
	if i := strings.LastIndex(location, "/"); i >= 0 {
		return location[:i+1]
	}
	return ""
}

// resolveLocation resolves a schemaLocation relative to the including
// document unless it is already absolute.
func resolveLocation(base, ref string) string {
	if isAbsolute(ref) {
		return ref
	}
	return base + ref
}

func isAbsolute(location string) bool {
	return strings.HasPrefix(location, "/") ||
		strings.Contains(location, "://") ||
		(len(location) > 2 && location[1] == ':' && (location[2] == '\\' || location[2] == '/'))
}
