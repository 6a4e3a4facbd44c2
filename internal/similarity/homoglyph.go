package similarity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// homoglyphs maps visually confusable characters to their canonical Latin
// form. Covers the Cyrillic and Greek lookalikes seen in phishing domains
// plus the common digit substitutions.
var homoglyphs = map[rune]rune{
	// Digits standing in for letters.
	'0': 'o',
	'1': 'l',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',

	// Cyrillic lookalikes.
	'а': 'a', // U+0430
	'е': 'e', // U+0435
	'о': 'o', // U+043E
	'р': 'p', // U+0440
	'с': 'c', // U+0441
	'х': 'x', // U+0445
	'у': 'y', // U+0443
	'і': 'i', // U+0456
	'ѕ': 's', // U+0455
	'ј': 'j', // U+0458
	'һ': 'h', // U+04BB
	'ԁ': 'd', // U+0501
	'ԛ': 'q', // U+051B
	'ԝ': 'w', // U+051D

	// Greek lookalikes.
	'α': 'a',
	'ο': 'o',
	'ν': 'v',
	'ι': 'i',
	'κ': 'k',
	'ρ': 'p',
	'τ': 't',
	'υ': 'u',
}

// HomoglyphHit reports one substituted character found in a string.
type HomoglyphHit struct {
	Position  int    `json:"position"`
	Original  string `json:"original"`
	Canonical string `json:"canonical"`
}

// NormalizeHomoglyphs rewrites visually confusable characters to their
// canonical Latin form. Input is NFKC-folded first so full-width and
// composed variants collapse before the table lookup.
func NormalizeHomoglyphs(s string) string {
	folded := norm.NFKC.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if canonical, ok := homoglyphs[r]; ok {
			b.WriteRune(canonical)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DetectHomoglyphs reports which rune positions of s would be rewritten by
// NormalizeHomoglyphs.
func DetectHomoglyphs(s string) []HomoglyphHit {
	folded := norm.NFKC.String(strings.ToLower(s))
	var hits []HomoglyphHit
	for i, r := range []rune(folded) {
		if canonical, ok := homoglyphs[r]; ok {
			hits = append(hits, HomoglyphHit{
				Position:  i,
				Original:  string(r),
				Canonical: string(canonical),
			})
		}
	}
	return hits
}
