package captions

import (
	"html"
	"strings"
)

// Normalize decodes HTML/XML entities, turns newlines into spaces,
// collapses whitespace runs and trims.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	if strings.IndexByte(s, '&') >= 0 {
		s = html.UnescapeString(s)
	}
	return strings.Join(strings.Fields(s), " ")
}
