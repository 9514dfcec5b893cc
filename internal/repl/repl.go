// Package repl runs an interactive detection prompt.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/ppiankov/tvlabel/internal/lexicon"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/pipeline"
	"github.com/ppiankov/tvlabel/internal/report"
)

const (
	completionThreshold = 2

	// commandPrefix starts a prompt command instead of a sentence
	commandPrefix = ":"
)

var commands = []prompt.Suggest{
	{Text: ":json", Description: "print detections as JSON"},
	{Text: ":text", Description: "print detections as text"},
	{Text: ":tags", Description: "show the side-constraint tags"},
	{Text: ":help", Description: "show commands"},
	{Text: "quit", Description: "leave the prompt"},
}

// Handler detects every line typed at the prompt
type Handler struct {
	Pipeline *pipeline.Pipeline
	Out      io.Writer
	JSON     bool

	words []string
}

// NewHandler creates a handler. Lexicon forms are offered as completions.
func NewHandler(p *pipeline.Pipeline, lex *lexicon.Store, out io.Writer) *Handler {
	h := &Handler{Pipeline: p, Out: out}
	if lex != nil {
		for _, c := range lex.Categories() {
			h.words = append(h.words, c.Forms...)
		}
	}
	return h
}

// Run reads lines until "quit"
func (h *Handler) Run() error {
	fmt.Fprintln(h.Out, "🔑 Ctrl+F: toggle JSON, :help for commands, 🔧 quit")

	history := []string{}
	for {
		in := prompt.Input("  tv> ", h.completer,
			prompt.OptionTitle("tvlabel repl"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(8),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlF,
				Fn: func(buf *prompt.Buffer) {
					h.JSON = !h.JSON
					fmt.Fprintf(h.Out, "JSON output: %t\n", h.JSON)
				}}),
		)

		if h.Handle(in) {
			return nil
		}
		if strings.TrimSpace(in) != "" {
			history = append(history, in)
		}
	}
}

// Handle processes one input line and reports whether the prompt should end
func (h *Handler) Handle(in string) bool {
	in = strings.TrimSpace(in)
	switch in {
	case "":
		return false
	case "quit", "exit":
		return true
	case ":json":
		h.JSON = true
		return false
	case ":text":
		h.JSON = false
		return false
	case ":tags":
		for _, l := range model.Labels {
			if token := h.Pipeline.Tags().Token(l); token != "" {
				fmt.Fprintf(h.Out, "%s %s\n", token, l)
			}
		}
		return false
	case ":help":
		for _, c := range commands {
			fmt.Fprintf(h.Out, "%-6s %s\n", c.Text, c.Description)
		}
		return false
	}

	d := h.Pipeline.Detect(in, nil)
	if h.JSON {
		if err := report.RenderDetectionJSON(h.Out, d); err != nil {
			fmt.Fprintf(h.Out, "Error: %v\n", err)
		}
		return false
	}
	report.RenderDetection(h.Out, d)
	return false
}

func (h *Handler) completer(in prompt.Document) []prompt.Suggest {
	word := in.GetWordBeforeCursor()
	if strings.HasPrefix(in.TextBeforeCursor(), commandPrefix) {
		return prompt.FilterHasPrefix(commands, word, true)
	}
	if len([]rune(word)) < completionThreshold {
		return []prompt.Suggest{}
	}

	s := make([]prompt.Suggest, 0, len(h.words))
	for _, w := range h.words {
		s = append(s, prompt.Suggest{Text: w})
	}
	return prompt.FilterHasPrefix(s, word, true)
}
