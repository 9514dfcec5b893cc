// Package textnorm normalises and tokenises sentences before lexicon lookup.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// latinToCyrillic folds Latin letters that are visually identical to Cyrillic
// ones. Only applied inside words that already contain Cyrillic letters.
var latinToCyrillic = map[rune]rune{
	'a': 'а', 'c': 'с', 'e': 'е', 'k': 'к', 'o': 'о', 'p': 'р', 'x': 'х', 'y': 'у',
}

// stressMark matches combining acute and grave accents used as stress marks.
var stressMark = runes.Predicate(func(r rune) bool {
	return r == '\u0301' || r == '\u0300'
})

// Normalize returns the lookup key for a word: NFC, lowercase, stress marks
// removed, "ё" folded to "е", Latin homoglyphs folded inside Cyrillic words
// and typographic apostrophes replaced by ASCII ones.
//
// A new transformer chain and caser is built per call; both are stateful and
// must not be shared between goroutines.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(stressMark), norm.NFC), s)
	if err == nil {
		s = stripped
	}

	s = cases.Lower(language.Und).String(s)
	s = strings.NewReplacer("ё", "е", "’", "'", "ʼ", "'").Replace(s)

	if hasCyrillic(s) {
		s = strings.Map(func(r rune) rune {
			if c, ok := latinToCyrillic[r]; ok {
				return c
			}
			return r
		}, s)
	}

	return s
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
