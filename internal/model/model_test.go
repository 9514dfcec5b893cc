package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"formal", Formal},
		{"V", Formal},
		{"Informal", Informal},
		{"t", Informal},
		{" neutral ", Neutral},
		{"N", Neutral},
		{"unknown", Unknown},
		{"u", Unknown},
	}

	for _, tt := range tests {
		got, err := ParseLabel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLabel("polite")
	assert.Error(t, err)
}

func TestLabel_ZeroValueIsUnknown(t *testing.T) {
	var l Label
	assert.Equal(t, Unknown, l)
	assert.False(t, l.Specific())
}

func TestLabel_JSONUsesNames(t *testing.T) {
	data, err := json.Marshal(struct {
		L Label `json:"l"`
	}{Formal})
	require.NoError(t, err)
	assert.JSONEq(t, `{"l":"formal"}`, string(data))

	var back struct {
		L Label `json:"l"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"l":"T"}`), &back))
	assert.Equal(t, Informal, back.L)
}

func TestSentence_ParsedAndEdges(t *testing.T) {
	plain := Sentence{Text: "Ты придёшь?", Tokens: []Token{{ID: 1, Form: "Ты", Head: -1}, {ID: 2, Form: "придёшь", Head: -1}}}
	assert.False(t, plain.Parsed())
	assert.Empty(t, plain.Edges())

	parsed := Sentence{Tokens: []Token{
		{ID: 1, Form: "Ты", UPOS: "PRON", Head: 2, DepRel: "nsubj"},
		{ID: 2, Form: "придёшь", UPOS: "VERB", Head: 0, DepRel: "root"},
	}}
	assert.True(t, parsed.Parsed())
	assert.Equal(t, []Edge{{Head: 2, Dependent: 1, Relation: "nsubj"}}, parsed.Edges())

	tok, ok := parsed.Token(2)
	require.True(t, ok)
	assert.Equal(t, "придёшь", tok.Form)
	_, ok = parsed.Token(3)
	assert.False(t, ok)
}

func TestDefaultConfig_Validates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfig_ValidateRejects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detection.Precedence = "loudest"
	cfg.Detection.Side = "middle"
	cfg.Concurrency.Workers = 0
	cfg.SideConstraint.Informal = cfg.SideConstraint.Formal

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detection.precedence")
	assert.Contains(t, err.Error(), "detection.side")
	assert.Contains(t, err.Error(), "concurrency.workers")
	assert.Contains(t, err.Error(), "must differ")
}
