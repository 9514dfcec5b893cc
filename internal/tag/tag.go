// Package tag maps politeness labels to the side-constraint tokens that are
// prepended to source sentences for the translation model.
package tag

import (
	"fmt"
	"strings"

	"github.com/ppiankov/tvlabel/internal/model"
)

// Default side-constraint tokens.
const (
	Formal   = "<V>"
	Informal = "<T>"
)

// Set is a label-to-token mapping. An empty token means the label is not
// tagged.
type Set struct {
	tokens map[model.Label]string
	labels map[string]model.Label
}

// DefaultSet tags formal and informal sentences and leaves neutral and unknown
// ones untagged.
func DefaultSet() *Set {
	s, _ := NewSet(model.SideConstraintConfig{Formal: Formal, Informal: Informal})
	return s
}

// NewSet builds a mapping from configuration. Tokens must be single words and
// distinct.
func NewSet(cfg model.SideConstraintConfig) (*Set, error) {
	s := &Set{
		tokens: make(map[model.Label]string),
		labels: make(map[string]model.Label),
	}

	pairs := []struct {
		label model.Label
		token string
	}{
		{model.Formal, cfg.Formal},
		{model.Informal, cfg.Informal},
		{model.Neutral, cfg.Neutral},
		{model.Unknown, cfg.Unknown},
	}

	for _, p := range pairs {
		tok := strings.TrimSpace(p.token)
		if tok == "" {
			continue
		}
		if strings.ContainsAny(tok, " \t") {
			return nil, fmt.Errorf("side-constraint token %q for %s must not contain whitespace", tok, p.label)
		}
		if other, ok := s.labels[tok]; ok {
			return nil, fmt.Errorf("side-constraint token %q used for both %s and %s", tok, other, p.label)
		}
		s.tokens[p.label] = tok
		s.labels[tok] = p.label
	}

	return s, nil
}

// Token returns the token for a label, or "" when the label is untagged.
func (s *Set) Token(l model.Label) string {
	return s.tokens[l]
}

// Prepend returns the sentence prefixed with the label's token and a space.
// Untagged labels return the sentence unchanged.
func (s *Set) Prepend(l model.Label, sentence string) string {
	tok := s.tokens[l]
	if tok == "" {
		return sentence
	}
	return tok + " " + sentence
}

// Strip removes a leading token and returns the label it stands for and the
// remaining sentence. A sentence without a known leading token is returned
// unchanged with ok=false.
func (s *Set) Strip(sentence string) (model.Label, string, bool) {
	trimmed := strings.TrimLeft(sentence, " \t")
	head, rest, _ := strings.Cut(trimmed, " ")
	if l, ok := s.labels[head]; ok {
		return l, strings.TrimLeft(rest, " \t"), true
	}
	return model.Unknown, sentence, false
}

// Mapping returns the label-to-token table for documentation output.
func (s *Set) Mapping() map[string]string {
	out := make(map[string]string, len(model.Labels))
	for _, l := range model.Labels {
		out[l.String()] = s.tokens[l]
	}
	return out
}
