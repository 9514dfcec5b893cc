package repl

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/c-bata/go-prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/tvlabel/internal/lexicon"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/pipeline"
)

func newHandler(t *testing.T) (*Handler, *bytes.Buffer) {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)

	p, err := pipeline.NewPipeline(model.DefaultConfig(), lex, pipeline.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	return NewHandler(p, lex, &out), &out
}

func TestHandle_DetectsSentence(t *testing.T) {
	h, out := newHandler(t)

	assert.False(t, h.Handle("Вы придёте?"))
	assert.Contains(t, out.String(), "formal <V>")
}

func TestHandle_JSONToggle(t *testing.T) {
	h, out := newHandler(t)

	h.Handle(":json")
	h.Handle("Ты где?")
	assert.True(t, strings.HasPrefix(out.String(), "{"), out.String())
	assert.Contains(t, out.String(), `"label":"informal"`)

	out.Reset()
	h.Handle(":text")
	h.Handle("Ты где?")
	assert.Contains(t, out.String(), "label:")
}

func TestHandle_Quit(t *testing.T) {
	h, _ := newHandler(t)
	assert.True(t, h.Handle("quit"))
	assert.True(t, h.Handle("  exit "))
	assert.False(t, h.Handle(""))
}

func TestHandle_Tags(t *testing.T) {
	h, out := newHandler(t)
	h.Handle(":tags")
	assert.Equal(t, "<V> formal\n<T> informal\n", out.String())
}

func TestCompleter(t *testing.T) {
	h, _ := newHandler(t)

	buf := prompt.NewBuffer()
	buf.InsertText(":js", false, true)
	got := h.completer(*buf.Document())
	require.Len(t, got, 1)
	assert.Equal(t, ":json", got[0].Text)

	buf = prompt.NewBuffer()
	buf.InsertText("Скажи сударь", false, true)
	got = h.completer(*buf.Document())
	texts := make([]string, len(got))
	for i, s := range got {
		texts[i] = s.Text
	}
	assert.Contains(t, texts, "сударь")

	buf = prompt.NewBuffer()
	buf.InsertText("с", false, true)
	assert.Empty(t, h.completer(*buf.Document()))
}
