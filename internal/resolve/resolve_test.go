package resolve

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/tvlabel/internal/detect"
	"github.com/ppiankov/tvlabel/internal/model"
)

const (
	F = model.Formal
	I = model.Informal
	N = model.Neutral
	U = model.Unknown
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func lexical(l model.Label) model.Verdict {
	return model.Verdict{Detector: detect.NameLexical, Label: l}
}

func structural(l model.Label) *model.Verdict {
	return &model.Verdict{Detector: detect.NameStructural, Label: l}
}

type outcome struct {
	label model.Label
	rule  model.ResolutionRule
}

// Rows are the lexical label, columns the structural label, in F, I, N, U order.
var specificTable = [4][4]outcome{
	F: {F: {F, model.RuleAgreement}, I: {U, model.RuleContradiction}, N: {F, model.RulePreferSpecific}, U: {F, model.RulePreferSpecific}},
	I: {F: {U, model.RuleContradiction}, I: {I, model.RuleAgreement}, N: {I, model.RulePreferSpecific}, U: {I, model.RulePreferSpecific}},
	N: {F: {F, model.RulePreferSpecific}, I: {I, model.RulePreferSpecific}, N: {N, model.RuleAgreement}, U: {U, model.RuleAbstain}},
	U: {F: {F, model.RulePreferSpecific}, I: {I, model.RulePreferSpecific}, N: {U, model.RuleAbstain}, U: {U, model.RuleAgreement}},
}

func TestResolve_ExhaustiveDefault(t *testing.T) {
	r := New("", quiet())
	require.Equal(t, PreferSpecific, r.Precedence())

	for _, lex := range model.Labels {
		for _, str := range model.Labels {
			want := specificTable[lex][str]

			got := r.Resolve(lexical(lex), structural(str), nil)
			assert.Equal(t, want.label, got.Label, "lexical=%s structural=%s", lex, str)
			assert.Equal(t, want.rule, got.Rule, "lexical=%s structural=%s", lex, str)
			assert.False(t, got.SingleSource)
			assert.Equal(t, []string{detect.NameLexical, detect.NameStructural}, got.Sources)

			again := r.Resolve(lexical(lex), structural(str), nil)
			assert.Equal(t, got, again, "resolution must be deterministic")
		}
	}
}

func TestResolve_ContradictionIsAlwaysUnknown(t *testing.T) {
	for _, p := range Precedences {
		r := New(p, quiet())
		for _, pair := range [][2]model.Label{{F, I}, {I, F}} {
			got := r.Resolve(lexical(pair[0]), structural(pair[1]), nil)
			assert.Equal(t, U, got.Label, "precedence=%s", p)
			assert.Equal(t, model.RuleContradiction, got.Rule)
			assert.True(t, got.Conflict)
		}
	}
}

func TestResolve_ContradictionIsLogged(t *testing.T) {
	var buf bytes.Buffer
	r := New(PreferSpecific, slog.New(slog.NewTextHandler(&buf, nil)))

	r.Resolve(lexical(F), structural(I), nil)
	assert.Contains(t, buf.String(), "detectors contradict each other")
	assert.Contains(t, buf.String(), "lexical=formal")
	assert.Contains(t, buf.String(), "structural=informal")

	buf.Reset()
	r.Resolve(lexical(F), structural(N), nil)
	assert.Empty(t, buf.String())
}

func TestResolve_SingleSourcePassThrough(t *testing.T) {
	for _, p := range Precedences {
		r := New(p, quiet())
		for _, l := range model.Labels {
			got := r.Resolve(lexical(l), nil, detect.ErrMissingParse)
			assert.Equal(t, l, got.Label)
			assert.Equal(t, model.RuleSingleSource, got.Rule)
			assert.True(t, got.SingleSource)
			assert.False(t, got.Conflict)
			assert.Equal(t, detect.ErrMissingParse.Error(), got.Unavailable)
			assert.Equal(t, []string{detect.NameLexical}, got.Sources)
		}
	}
}

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		precedence Precedence
		lex, str   model.Label
		want       outcome
	}{
		{PreferStructural, F, N, outcome{N, model.RulePreferStructural}},
		{PreferStructural, N, I, outcome{I, model.RulePreferStructural}},
		{PreferStructural, U, F, outcome{F, model.RulePreferStructural}},
		{PreferLexical, F, N, outcome{F, model.RulePreferLexical}},
		{PreferLexical, U, I, outcome{U, model.RulePreferLexical}},
		{Abstain, F, N, outcome{U, model.RuleAbstain}},
		{Abstain, N, I, outcome{U, model.RuleAbstain}},
		// non-specific pairs are not governed by precedence
		{PreferLexical, N, U, outcome{U, model.RuleAbstain}},
		{PreferStructural, N, N, outcome{N, model.RuleAgreement}},
	}

	for _, tt := range tests {
		got := New(tt.precedence, quiet()).Resolve(lexical(tt.lex), structural(tt.str), nil)
		assert.Equal(t, tt.want.label, got.Label, "%s: %s/%s", tt.precedence, tt.lex, tt.str)
		assert.Equal(t, tt.want.rule, got.Rule, "%s: %s/%s", tt.precedence, tt.lex, tt.str)
	}
}

func TestResolveError(t *testing.T) {
	r := New(PreferSpecific, quiet())

	got := r.ResolveError(lexical(I), model.Verdict{Detector: detect.NameStructural}, detect.ErrMissingParse)
	assert.True(t, got.SingleSource)
	assert.Equal(t, I, got.Label)

	got = r.ResolveError(lexical(I), *structural(I), nil)
	assert.Equal(t, model.RuleAgreement, got.Rule)
}

func TestParsePrecedence(t *testing.T) {
	p, err := ParsePrecedence(" Structural ")
	require.NoError(t, err)
	assert.Equal(t, PreferStructural, p)

	_, err = ParsePrecedence("loudest")
	assert.Error(t, err)
}
