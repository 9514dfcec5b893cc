package detect

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/tvlabel/internal/conllu"
	"github.com/ppiankov/tvlabel/internal/lexicon"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/textnorm"
)

func store(t *testing.T) *lexicon.Store {
	t.Helper()
	s, err := lexicon.Default()
	require.NoError(t, err)
	return s
}

// parsed builds a sentence from CoNLL-U rows written with spaces between
// columns.
func parsed(t *testing.T, rows ...string) model.Sentence {
	t.Helper()
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Join(strings.Fields(r), "\t"))
		b.WriteString("\n")
	}
	sentences, err := conllu.ReadAll(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Len(t, sentences, 1)
	return sentences[0]
}

func TestLexical(t *testing.T) {
	d := NewLexical(store(t))

	tests := []struct {
		text  string
		label model.Label
		rule  string
	}{
		{"Could you please sign here?", model.Neutral, "lexical:address-without-distinction"},
		{"The train departs at noon.", model.Neutral, "lexical:no-address"},
		{"Ты придёшь?", model.Informal, "lexical:informal-only"},
		{"Вы придёте?", model.Formal, "lexical:formal-only"},
		{"Скажите, пожалуйста, где вокзал?", model.Formal, "lexical:formal-only"},
		{"Это твоя книга или ваша?", model.Unknown, "lexical:conflict"},
		{"Ну, скажи-ка мне.", model.Informal, "lexical:informal-only"},
		{"Yes, sir.", model.Formal, "lexical:formal-only"},
		{"Поезд отправляется в полдень.", model.Neutral, "lexical:no-address"},
		{"", model.Neutral, "lexical:no-address"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v := d.DetectText(tt.text)
			assert.Equal(t, NameLexical, v.Detector)
			assert.Equal(t, tt.label, v.Label)
			assert.Equal(t, tt.rule, v.Rule)
		})
	}
}

func TestLexical_Cues(t *testing.T) {
	v := NewLexical(store(t)).DetectText("Вы знаете, где ваш паспорт?")

	require.Len(t, v.Cues, 3)
	assert.Equal(t, model.Cue{Token: 1, Form: "Вы", Category: "pronoun_v", Class: model.ClassV}, v.Cues[0])
	assert.Equal(t, "verb_2pl", v.Cues[1].Category)
	assert.Equal(t, "possessive_v", v.Cues[2].Category)
	assert.Equal(t, 3, v.Formal)
	assert.Equal(t, 0, v.Informal)
}

func TestLexical_IsPure(t *testing.T) {
	d := NewLexical(store(t))
	s := textnorm.Tokenize("Ты знаешь, что вам нужно?")

	first, err := d.Detect(s)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := d.Detect(s)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, model.Unknown, first.Label)
}

func TestLexical_UsesLemma(t *testing.T) {
	s := parsed(t,
		"1 Тя ты PRON _ Case=Nom|Number=Sing|Person=2 0 root _ _",
	)
	v, err := NewLexical(store(t)).Detect(s)
	require.NoError(t, err)
	assert.Equal(t, model.Informal, v.Label)
}

func TestStructural_MissingParse(t *testing.T) {
	d := NewStructural(store(t))

	v, err := d.Detect(textnorm.Tokenize("Ты придёшь?"))
	assert.True(t, errors.Is(err, ErrMissingParse))
	assert.Equal(t, NameStructural, v.Detector)
}

func TestStructural(t *testing.T) {
	tests := []struct {
		name  string
		rows  []string
		label model.Label
		rule  string
		kinds []string
	}{
		{
			name: "informal pronoun with singular verb",
			rows: []string{
				"1 Ты ты PRON _ Case=Nom|Number=Sing|Person=2 2 nsubj _ _",
				"2 придёшь прийти VERB _ Mood=Ind|Number=Sing|Person=2|Tense=Fut 0 root _ _",
				"3 ? ? PUNCT _ _ 2 punct _ _",
			},
			label: model.Informal,
			rule:  "structural:informal-only",
			kinds: []string{SitePredicate},
		},
		{
			name: "formal pronoun with singular verb",
			rows: []string{
				"1 Вы вы PRON _ Case=Nom|Number=Plur|Person=2 2 nsubj _ _",
				"2 придёшь прийти VERB _ Mood=Ind|Number=Sing|Person=2|Tense=Fut 0 root _ _",
				"3 ? ? PUNCT _ _ 2 punct _ _",
			},
			label: model.Informal,
			rule:  "structural:informal-only",
			kinds: []string{SitePredicate},
		},
		{
			name: "dropped pronoun",
			rows: []string{
				"1 Придёте прийти VERB _ Mood=Ind|Number=Plur|Person=2|Tense=Fut 0 root _ _",
				"2 завтра завтра ADV _ _ 1 advmod _ _",
			},
			label: model.Formal,
			rule:  "structural:formal-only",
			kinds: []string{SitePredicate},
		},
		{
			name: "past tense reads number from the verb",
			rows: []string{
				"1 Вы вы PRON _ Case=Nom|Number=Plur|Person=2 2 nsubj _ _",
				"2 пришли прийти VERB _ Mood=Ind|Number=Plur|Tense=Past 0 root _ _",
				"3 вовремя вовремя ADV _ _ 2 advmod _ _",
			},
			label: model.Formal,
			rule:  "structural:formal-only",
			kinds: []string{SiteAgreement},
		},
		{
			name: "past tense copula",
			rows: []string{
				"1 Ты ты PRON _ Case=Nom|Number=Sing|Person=2 3 nsubj _ _",
				"2 был быть AUX _ Gender=Masc|Number=Sing|Tense=Past 3 cop _ _",
				"3 прав правый ADJ _ Number=Sing|Variant=Short 0 root _ _",
			},
			label: model.Informal,
			rule:  "structural:informal-only",
			kinds: []string{SiteAgreement},
		},
		{
			name: "adjectival predicate trusts the pronoun",
			rows: []string{
				"1 Вы вы PRON _ Case=Nom|Number=Plur|Person=2 2 nsubj _ _",
				"2 правы правый ADJ _ Number=Plur|Variant=Short 0 root _ _",
			},
			label: model.Formal,
			rule:  "structural:formal-only",
			kinds: []string{SiteSubject},
		},
		{
			name: "auxiliary future",
			rows: []string{
				"1 Вы вы PRON _ Case=Nom|Number=Plur|Person=2 3 nsubj _ _",
				"2 будете быть AUX _ Mood=Ind|Number=Plur|Person=2|Tense=Fut 3 aux _ _",
				"3 читать читать VERB _ VerbForm=Inf 0 root _ _",
			},
			label: model.Formal,
			rule:  "structural:formal-only",
			kinds: []string{SitePredicate},
		},
		{
			name: "two imperatives with inconsistent number",
			rows: []string{
				"1 Сядь сесть VERB _ Mood=Imp|Number=Sing|Person=2 0 root _ _",
				"2 и и CCONJ _ _ 3 cc _ _",
				"3 подождите подождать VERB _ Mood=Imp|Number=Plur|Person=2 1 conj _ _",
			},
			label: model.Unknown,
			rule:  "structural:conflict",
			kinds: []string{SiteImperative, SiteImperative},
		},
		{
			name: "object pronoun",
			rows: []string{
				"1 Я я PRON _ Case=Nom|Number=Sing|Person=1 2 nsubj _ _",
				"2 дам дать VERB _ Mood=Ind|Number=Sing|Person=1|Tense=Fut 0 root _ _",
				"3 тебе ты PRON _ Case=Dat|Number=Sing|Person=2 2 iobj _ _",
				"4 книгу книга NOUN _ Case=Acc|Number=Sing 2 obj _ _",
			},
			label: model.Informal,
			rule:  "structural:informal-only",
			kinds: []string{SitePronoun},
		},
		{
			name: "possessive",
			rows: []string{
				"1 Ваш ваш DET _ Case=Nom|Number=Sing 2 det _ _",
				"2 паспорт паспорт NOUN _ Case=Nom|Number=Sing 0 root _ _",
			},
			label: model.Formal,
			rule:  "structural:formal-only",
			kinds: []string{SitePossessive},
		},
		{
			name: "third person imperative is not address",
			rows: []string{
				"1 Пусть пусть PART _ _ 2 advmod _ _",
				"2 идёт идти VERB _ Mood=Ind|Number=Sing|Person=3 0 root _ _",
			},
			label: model.Neutral,
			rule:  "structural:no-second-person",
		},
		{
			name: "no second person",
			rows: []string{
				"1 The the DET _ Definite=Def|PronType=Art 2 det _ _",
				"2 train train NOUN _ Number=Sing 3 nsubj _ _",
				"3 departs depart VERB _ Mood=Ind|Number=Sing|Person=3|Tense=Pres 0 root _ _",
				"4 at at ADP _ _ 5 case _ _",
				"5 noon noon NOUN _ Number=Sing 3 obl _ _",
				"6 . . PUNCT _ _ 3 punct _ _",
			},
			label: model.Neutral,
			rule:  "structural:no-second-person",
		},
	}

	d := NewStructural(store(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := d.Detect(parsed(t, tt.rows...))
			require.NoError(t, err)
			assert.Equal(t, tt.label, v.Label)
			assert.Equal(t, tt.rule, v.Rule)

			kinds := make([]string, 0, len(v.Cues))
			for _, c := range v.Cues {
				kinds = append(kinds, c.Category)
			}
			if tt.kinds == nil {
				assert.Empty(t, kinds)
			} else {
				assert.Equal(t, tt.kinds, kinds)
			}
		})
	}
}

func TestStructural_ExcludesBrokenTokens(t *testing.T) {
	s := parsed(t,
		"1 Ты ты PRON _ Case=Nom|Number=Sing|Person=2 2 nsubj _ _",
		"2 придёшь прийти VERB _ Mood=Ind|Number=Sing|Person=2 3 parataxis _ _",
		"3 скажите сказать VERB _ Mood=Imp|Number=Plur|Person=2 2 parataxis _ _",
		"4 пожалуйста пожалуйста _ _ _ 3 discourse _ _",
		"5 вы вы PRON _ Case=Nom|Number=Plur|Person=2 0 root _ _",
	)

	v, err := NewStructural(store(t)).Detect(s)
	require.NoError(t, err)

	// 2 and 3 form a cycle, 4 has no part of speech
	assert.Equal(t, []int{2, 3, 4}, v.Excluded)
	// 1 loses its predicate and falls back to its own class; 5 is a bare pronoun
	assert.Equal(t, model.Unknown, v.Label)
	require.Len(t, v.Cues, 2)
	assert.Equal(t, 1, v.Cues[0].Token)
	assert.Equal(t, 5, v.Cues[1].Token)
}

func TestStructural_FragmentDoesNotFail(t *testing.T) {
	s := parsed(t,
		"1 Извините извинить VERB _ Mood=Imp|Number=Plur|Person=2 0 root _ _",
		"2 ... ... _ _ _ _ _ _ _",
	)

	v, err := NewStructural(store(t)).Detect(s)
	require.NoError(t, err)
	assert.Equal(t, model.Formal, v.Label)
	assert.Equal(t, []int{2}, v.Excluded)
}

func TestStructural_IsPure(t *testing.T) {
	d := NewStructural(store(t))
	s := parsed(t,
		"1 Ты ты PRON _ Number=Sing|Person=2 2 nsubj _ _",
		"2 пришёл прийти VERB _ Number=Sing|Tense=Past 0 root _ _",
	)

	first, err := d.Detect(s)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := d.Detect(s)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDetectorsImplementInterface(t *testing.T) {
	lex := store(t)
	for _, d := range []Detector{NewLexical(lex), NewStructural(lex)} {
		assert.NotEmpty(t, d.Name())
	}
}
