package lexical

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds text to the canonical key used for exact and fuzzy
// comparison: NFC composed, case folded, with everything but letters,
// digits and combining marks removed. Combining marks carry the vowel signs
// of Tamil and other abugidas, so they stay.
func Normalize(text string) string {
	folded := cases.Fold().String(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
