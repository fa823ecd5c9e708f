package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes every HTML element from visitor input
var StrictPolicy = bluemonday.StrictPolicy()

// StripHTML removes all HTML tags from content. The policy escapes the text
// it keeps, so entities are decoded again to return plain text.
func StripHTML(content string) string {
	return html.UnescapeString(StrictPolicy.Sanitize(content))
}

// CleanText strips markup and surrounding whitespace from a form value
func CleanText(value string) string {
	return strings.TrimSpace(StripHTML(value))
}
