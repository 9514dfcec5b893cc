package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/tag"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadLines_KeepsEmptyLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("a\r\n\nb"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "b"}, lines)
}

func TestReadPairs(t *testing.T) {
	dir := t.TempDir()
	src := write(t, dir, "corpus.en", "Will you come?\nHello.\n")
	tgt := write(t, dir, "corpus.ru", "Ты придёшь?\nПривет.\n")

	pairs, err := ReadPairs(src, tgt)
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{Source: "Will you come?", Target: "Ты придёшь?"},
		{Source: "Hello.", Target: "Привет."},
	}, pairs)

	sources, targets := Split(pairs)
	assert.Equal(t, []string{"Will you come?", "Hello."}, sources)
	assert.Equal(t, []string{"Ты придёшь?", "Привет."}, targets)

	mono, err := ReadPairs(src, "")
	require.NoError(t, err)
	assert.Empty(t, mono[0].Target)
}

func TestReadPairs_Misaligned(t *testing.T) {
	dir := t.TempDir()
	src := write(t, dir, "a.en", "one\ntwo\n")
	tgt := write(t, dir, "a.ru", "один\n")

	_, err := ReadPairs(src, tgt)
	assert.ErrorContains(t, err, "has 2 lines")
}

func TestRecords_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.jsonl")
	records := []model.Record{
		{Index: 0, Source: "Will you come?", Target: "Ты придёшь?", Label: model.Informal, Tag: "<T>",
			Lexical:    model.Verdict{Detector: "lexical", Label: model.Informal, Rule: "lexical:informal-only", Informal: 1},
			Resolution: model.Resolution{Label: model.Informal, Rule: model.RuleSingleSource, SingleSource: true}},
		{Index: 1, Source: "Hello.", Label: model.Neutral,
			Resolution: model.Resolution{Label: model.Neutral, Rule: model.RuleSingleSource, SingleSource: true}},
	}

	require.NoError(t, WriteRecordsFile(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), `"label":"informal"`)
	assert.Contains(t, string(data), `"tag":"<T>"`)

	back, err := ReadRecordsFile(path)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, model.Informal, back[0].Label)
	assert.Equal(t, "Ты придёшь?", back[0].Target)
	assert.Equal(t, model.RuleSingleSource, back[1].Resolution.Rule)
}

func TestReadRecords_Malformed(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("{\"index\":0}\n{oops\n"))
	assert.ErrorContains(t, err, "record 2")
}

func TestMarkFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "test.en")

	out, err := MarkFile(src,
		[]string{"Will you come?", "Could you sign?", "It rains.", "Huh?"},
		[]model.Label{model.Informal, model.Formal, model.Neutral, model.Unknown},
		tag.DefaultSet())
	require.NoError(t, err)
	assert.Equal(t, src+".tv", out)

	lines, err := ReadLinesFile(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"<T> Will you come?", "<V> Could you sign?", "It rains.", "Huh?"}, lines)
}

func TestMark_LengthMismatch(t *testing.T) {
	_, err := Mark([]string{"a"}, nil, tag.DefaultSet())
	assert.Error(t, err)
}

func TestPrependFile(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "deixis_test_en", "Hi.\nYou there?\n")
	out := filepath.Join(dir, "deixis_test_en.t")

	n, err := PrependFile(in, out, "<T>")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines, err := ReadLinesFile(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"<T> Hi.", "<T> You there?"}, lines)
}

func TestSampler(t *testing.T) {
	long := strings.Repeat("я", 101)
	pairs := []Pair{
		{Source: "1", Target: "Вы"},
		{Source: "2", Target: "Вы"},
		{Source: "3", Target: "Вы"},
		{Source: "4", Target: "Ты"},
		{Source: "5", Target: "Ты " + long},
		{Source: "6", Target: "дом"},
		{Source: "7", Target: long},
		{Source: "8", Target: "дом"},
		{Source: "9", Target: "?"},
	}
	labels := []model.Label{
		model.Formal, model.Formal, model.Formal,
		model.Informal, model.Informal,
		model.Neutral, model.Neutral, model.Neutral,
		model.Unknown,
	}

	s := NewSampler(model.SamplingConfig{FormalLimit: 2, NeutralLimit: 1, MaxLength: 100}, "target")
	kept, stats := s.Sample(pairs, labels)

	var ids []string
	for _, p := range kept {
		ids = append(ids, p.Source)
	}
	// V capped at 2, T kept even when long, N capped at 1 after the long one is skipped
	assert.Equal(t, []string{"1", "2", "4", "5", "6"}, ids)
	assert.Equal(t, 1, stats.TooLong)
	assert.Equal(t, 3, stats.Seen[model.Formal])
	assert.Equal(t, 2, stats.Kept[model.Informal])
	assert.Equal(t, 1, stats.Seen[model.Unknown])
}

func TestSampler_IncludeUnknown(t *testing.T) {
	s := NewSampler(model.SamplingConfig{IncludeUnknown: true}, "target")
	kept, stats := s.Sample(
		[]Pair{{Source: "a", Target: "Ты и вы"}, {Source: "b", Target: "дом"}},
		[]model.Label{model.Unknown, model.Neutral},
	)
	assert.Len(t, kept, 2)
	assert.Equal(t, 2, stats.Kept[model.Neutral])
}

func TestReformatDeixis(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "deixis_test.src", "Are you ok? _eos Yes.\nAre you ok? _eos Note\n")
	write(t, dir, "deixis_test.dst", "Ты в порядке? _eos Да.\nТы в порядке? _eos .\n")
	write(t, dir, "deixis_dev.src", "Sit down. _eos Thanks.\n")
	write(t, dir, "deixis_dev.dst", "Садитесь. _eos Спасибо.\n")

	pairs, err := ReformatDeixis(dir)
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{Source: "Are you ok?", Target: "Ты в порядке?"},
		{Source: "Yes.", Target: "Да."},
		{Source: "Sit down.", Target: "Садитесь."},
		{Source: "Thanks.", Target: "Спасибо."},
	}, pairs)
}

func TestReformatDeixis_CountMismatch(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "deixis_test.src", "One. _eos Two.\n")
	write(t, dir, "deixis_test.dst", "Один.\n")
	write(t, dir, "deixis_dev.src", "")
	write(t, dir, "deixis_dev.dst", "")

	_, err := ReformatDeixis(dir)
	assert.ErrorContains(t, err, "deixis_test line 1")
}
