// Package analysis classifies extracted messages against a threat taxonomy
// and reduces the outcomes to indicator counts, a bounded risk score, and
// recommendations. Everything here is a pure value transformation: no I/O,
// no shared state, any call order.
package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds message text into a canonical matching form: NFKC maps
// fullwidth and compatibility characters onto their plain equivalents, then
// invisible format runes (zero-width spaces, joiners, BOM) are dropped.
// Smishing kits pad keywords with both to slip past keyword filters.
// Plain ASCII passes through unchanged.
func Normalize(text string) string {
	folded := norm.NFKC.String(text)

	if !strings.ContainsFunc(folded, isFormatRune) {
		return folded
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isFormatRune(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isFormatRune(r rune) bool {
	return unicode.Is(unicode.Cf, r)
}
