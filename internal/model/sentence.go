package model

// Token is a word of a sentence. Morphological fields are empty unless the
// sentence was produced from parser output.
type Token struct {
	ID     int               `json:"id"`               // 1-based position in the sentence
	Form   string            `json:"form"`             // The unmodified word
	Norm   string            `json:"norm"`             // Normalised lowercase form
	Lemma  string            `json:"lemma,omitempty"`  // Lemma (parser output)
	UPOS   string            `json:"upos,omitempty"`   // Universal POS tag (parser output)
	Feats  map[string]string `json:"feats,omitempty"`  // Morphological features: Person, Number, Case, Mood...
	Head   int               `json:"head"`             // Governor ID, 0 for root, -1 when unknown
	DepRel string            `json:"deprel,omitempty"` // Relation to the governor
}

// Feat returns a morphological feature value or "".
func (t Token) Feat(name string) string {
	if t.Feats == nil {
		return ""
	}
	return t.Feats[name]
}

// Sentence is an ordered sequence of tokens.
type Sentence struct {
	ID     string  `json:"id,omitempty"`
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
}

// Parsed reports whether parser output is attached to the sentence.
func (s Sentence) Parsed() bool {
	for _, t := range s.Tokens {
		if t.UPOS != "" {
			return true
		}
	}
	return false
}

// Token returns the token with the given 1-based ID.
func (s Sentence) Token(id int) (Token, bool) {
	if id < 1 || id > len(s.Tokens) {
		return Token{}, false
	}
	return s.Tokens[id-1], true
}

// Edge is a dependency relation between a governing and a dependent token.
type Edge struct {
	Head      int    `json:"head"`
	Dependent int    `json:"dependent"`
	Relation  string `json:"relation"`
}

// Edges returns the dependency edges of a parsed sentence. Root attachments
// and tokens with unknown heads produce no edge.
func (s Sentence) Edges() []Edge {
	var edges []Edge
	for _, t := range s.Tokens {
		if t.Head <= 0 {
			continue
		}
		edges = append(edges, Edge{Head: t.Head, Dependent: t.ID, Relation: t.DepRel})
	}
	return edges
}
