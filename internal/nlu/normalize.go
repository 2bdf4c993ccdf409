// internal/nlu/normalize.go

// Package nlu implements the deterministic Spanish-language understanding
// core of the assistant: text normalization, intent detection over ordered
// pattern tables, date-phrase resolution and slot extraction. Everything
// in this package is pure, operates on immutable package-level tables and
// is safe for concurrent use.
package nlu

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, removes combining marks and recomposes,
// so "órdenes" becomes "ordenes" and "mañana" becomes "manana".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the text, strips diacritics and collapses every
// whitespace run to a single space, trimming the ends. It is total and
// idempotent; all matching in this package happens on its output.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	if stripped, _, err := transform.String(stripMarks, lowered); err == nil {
		lowered = stripped
	}
	return strings.Join(strings.Fields(lowered), " ")
}
