// Package normalize canonicalizes user input before it is stored or compared.
package normalize

import "strings"

// Email trims and lowercases an address. Stored emails and lookup keys both
// go through it so the unique index is case-insensitive in practice.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Title trims and collapses internal runs of whitespace to a single space.
// Board, column and card titles are single-line.
func Title(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
