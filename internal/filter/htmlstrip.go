package filter

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// StripMarkup removes tags and entities from a fragment of feed markup and
// collapses whitespace, leaving plain text suitable for keyword matching.
func StripMarkup(raw string) string {
	if raw == "" {
		return ""
	}
	text := stripPolicy.Sanitize(raw)
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}
