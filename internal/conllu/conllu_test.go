package conllu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/tvlabel/internal/model"
)

const twoSentences = "# sent_id = 1\n" +
	"# text = Ты придёшь?\n" +
	"1\tТы\tты\tPRON\t_\tCase=Nom|Number=Sing|Person=2\t2\tnsubj\t_\t_\n" +
	"2\tпридёшь\tприйти\tVERB\t_\tAspect=Perf|Mood=Ind|Number=Sing|Person=2|Tense=Fut\t0\troot\t_\tSpaceAfter=No\n" +
	"3\t?\t?\tPUNCT\t_\t_\t2\tpunct\t_\t_\n" +
	"\n" +
	"1-2\tскажи-ка\t_\t_\t_\t_\t_\t_\t_\t_\n" +
	"1\tскажи\tсказать\tVERB\t_\tMood=Imp|Number=Sing|Person=2\t0\troot\t_\t_\n" +
	"2\tка\tка\tPART\t_\t_\t1\tdiscourse\t_\t_\n" +
	"2.1\tx\tx\tX\t_\t_\t_\t_\t_\t_\n"

func TestReadAll(t *testing.T) {
	sentences, err := ReadAll(strings.NewReader(twoSentences))
	require.NoError(t, err)
	require.Len(t, sentences, 2)

	first := sentences[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Ты придёшь?", first.Text)
	require.Len(t, first.Tokens, 3)
	assert.True(t, first.Parsed())

	verb := first.Tokens[1]
	assert.Equal(t, "придешь", verb.Norm)
	assert.Equal(t, "прийти", verb.Lemma)
	assert.Equal(t, "VERB", verb.UPOS)
	assert.Equal(t, "2", verb.Feat("Person"))
	assert.Equal(t, "Sing", verb.Feat("Number"))
	assert.Equal(t, 0, verb.Head)
	assert.Equal(t, []model.Edge{
		{Head: 2, Dependent: 1, Relation: "nsubj"},
		{Head: 2, Dependent: 3, Relation: "punct"},
	}, first.Edges())

	second := sentences[1]
	require.Len(t, second.Tokens, 2)
	assert.Equal(t, "скажи ка", second.Text)
	assert.Nil(t, second.Tokens[1].Feats)
}

func TestReadAll_UnderscoreHead(t *testing.T) {
	in := "1\tВы\tвы\tPRON\t_\t_\t_\t_\t_\t_\n"
	sentences, err := ReadAll(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, sentences, 1)
	assert.Equal(t, -1, sentences[0].Tokens[0].Head)
}

func TestReadAll_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{"columns", "1\tТы\tты\n", 1},
		{"id", "x\tТы\tты\tPRON\t_\t_\t0\troot\t_\t_\n", 1},
		{"sequence", "1\tа\tа\tX\t_\t_\t0\troot\t_\t_\n3\tб\tб\tX\t_\t_\t1\tdep\t_\t_\n", 2},
		{"feature", "1\tа\tа\tX\t_\tNumber\t0\troot\t_\t_\n", 1},
		{"head", "1\tа\tа\tX\t_\t_\t-4\troot\t_\t_\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAll(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))

			var serr *SyntaxError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.line, serr.Line)
		})
	}
}

func TestReadAll_Empty(t *testing.T) {
	sentences, err := ReadAll(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, sentences)
}

func TestDefects(t *testing.T) {
	s := model.Sentence{Tokens: []model.Token{
		{ID: 1, UPOS: "PRON", Head: 2},
		{ID: 2, UPOS: "VERB", Head: 0},
		{ID: 3, UPOS: "", Head: 2},
		{ID: 4, UPOS: "NOUN", Head: 9},
		{ID: 5, UPOS: "NOUN", Head: 5},
		{ID: 6, UPOS: "NOUN", Head: 7},
		{ID: 7, UPOS: "NOUN", Head: 6},
		{ID: 8, UPOS: "ADV", Head: -1},
	}}

	assert.Equal(t, []Defect{
		{Token: 3, Reason: DefectNoPOS},
		{Token: 4, Reason: DefectHeadRange},
		{Token: 5, Reason: DefectSelfGoverned},
		{Token: 6, Reason: DefectCycle},
		{Token: 7, Reason: DefectCycle},
		{Token: 8, Reason: DefectMissingHead},
	}, Defects(s))
}

func TestValidateTree(t *testing.T) {
	sentences, err := ReadAll(strings.NewReader(twoSentences))
	require.NoError(t, err)
	for _, s := range sentences {
		assert.NoError(t, ValidateTree(s))
	}

	cyclic := model.Sentence{Tokens: []model.Token{
		{ID: 1, UPOS: "VERB", Head: 2},
		{ID: 2, UPOS: "VERB", Head: 1},
	}}
	err = ValidateTree(cyclic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), DefectCycle)
	assert.Contains(t, err.Error(), "no root")
}
