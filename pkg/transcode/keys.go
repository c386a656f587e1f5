package transcode

import (
	"regexp"
	"strings"
	"unicode"
)

var validName = regexp.MustCompile(`^[a-zA-Z_][-.0-9a-zA-Z_]*$`)

// NormalizeKey turns a JSON key into a usable XML element name. Characters
// that are not allowed are replaced with "_".
func NormalizeKey(key string) string {
	if validName.MatchString(key) {
		return key
	}
	if key == "" {
		return "_"
	}
	var sb strings.Builder
	for i, r := range key {
		switch {
		case unicode.IsLetter(r), r == '_':
			sb.WriteRune(r)
		case i > 0 && (unicode.IsDigit(r) || r == '.' || r == '-'):
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
