package utils

import (
	"html"
	"strings"
)

// SanitizeText trims surrounding whitespace and escapes HTML-significant
// characters. Chat content passes through here before it is stored or
// echoed, so markup in a message can never render on a peer's client.
// The result may be empty; callers decide what an empty message means.
func SanitizeText(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
