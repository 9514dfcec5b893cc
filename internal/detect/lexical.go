package detect

import (
	"strings"

	"github.com/ppiankov/tvlabel/internal/lexicon"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/textnorm"
)

// LexicalDetector flags second-person cues by lexicon lookup. It needs no
// parse.
type LexicalDetector struct {
	lex *lexicon.Store
}

// NewLexical creates a token-based detector over the given lexicon.
func NewLexical(lex *lexicon.Store) *LexicalDetector {
	return &LexicalDetector{lex: lex}
}

// Name returns "lexical".
func (d *LexicalDetector) Name() string {
	return NameLexical
}

// Detect scans the tokens left to right and turns every lexicon hit into a
// cue. It never fails.
func (d *LexicalDetector) Detect(s model.Sentence) (model.Verdict, error) {
	var cues []model.Cue

	for _, tok := range s.Tokens {
		for _, m := range d.lookup(tok) {
			cues = append(cues, model.Cue{
				Token:    tok.ID,
				Form:     tok.Form,
				Category: m.Category,
				Class:    m.Class,
			})
		}
	}

	return decide(NameLexical, cues), nil
}

// DetectText tokenizes raw text and detects it.
func (d *LexicalDetector) DetectText(text string) model.Verdict {
	v, _ := d.Detect(textnorm.Tokenize(text))
	return v
}

// lookup tries the surface form, then the lemma when the parser supplied one,
// then the parts of a hyphenated word ("скажи-ка", "you-know").
func (d *LexicalDetector) lookup(tok model.Token) []lexicon.Match {
	if m := d.lex.Lookup(tok.Form); len(m) > 0 {
		return m
	}
	if tok.Lemma != "" {
		if m := d.lex.LookupLemma(tok.Lemma); len(m) > 0 {
			return m
		}
	}
	if !strings.Contains(tok.Form, "-") {
		return nil
	}

	var out []lexicon.Match
	seen := make(map[string]bool)
	for _, part := range strings.Split(tok.Form, "-") {
		for _, m := range d.lex.Lookup(part) {
			if !seen[m.Category] {
				seen[m.Category] = true
				out = append(out, m)
			}
		}
	}
	return out
}
