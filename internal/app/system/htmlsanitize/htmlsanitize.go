// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Every stored string (board, column and card names, card descriptions and
// comments) is plain text, so the bluemonday strict policy strips all markup.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes all markup from s and returns the remaining text with
// entities decoded, so "a &amp; b" is stored as "a & b".
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
