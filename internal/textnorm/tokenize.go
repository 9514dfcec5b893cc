package textnorm

import (
	"unicode"

	"github.com/ppiankov/tvlabel/internal/model"
)

// Tokenize splits raw text into word tokens. A word is a run of letters and
// digits; a hyphen or apostrophe is kept only between two word characters
// ("скажи-ка", "ma'am"). Punctuation is dropped. Tokens get 1-based IDs and
// Head -1 (no parse).
func Tokenize(text string) model.Sentence {
	sentence := model.Sentence{Text: text}

	rs := []rune(text)
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		form := string(rs[start:end])
		sentence.Tokens = append(sentence.Tokens, model.Token{
			ID:   len(sentence.Tokens) + 1,
			Form: form,
			Norm: Normalize(form),
			Head: -1,
		})
		start = -1
	}

	for i, r := range rs {
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case isJoiner(r) && start >= 0 && i+1 < len(rs) && isWordRune(rs[i+1]):
			// stays inside the current word
		default:
			flush(i)
		}
	}
	flush(len(rs))

	return sentence
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isJoiner(r rune) bool {
	switch r {
	case '-', '\'', '’', 'ʼ':
		return true
	}
	return false
}
