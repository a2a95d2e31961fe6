// Package textnorm provides text normalization shared by the heuristic
// extractors. Keeping one normalization routine guarantees the field guesser
// and the policy resolver always compare against the same representation.
// This is part of the platform layer and contains no business logic.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes to NFD, drops combining marks, recomposes.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases the input, strips diacritics and collapses runs of
// whitespace to a single space. "Não  Acende" becomes "nao acende".
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		// Transform only fails on malformed input; fall back to the raw text.
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// ContainsPhrase reports whether the folded haystack contains the folded
// needle bounded by non-alphanumeric runes. "ge" matches in "marca ge, 4
// bocas" but not inside "geladeira".
func ContainsPhrase(haystack, needle string) bool {
	h := Fold(haystack)
	n := Fold(needle)
	if n == "" {
		return false
	}
	for from := 0; ; {
		idx := strings.Index(h[from:], n)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(n)
		if boundaryBefore(h, start) && boundaryAfter(h, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
