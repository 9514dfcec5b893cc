// Package conllu reads dependency parser output in the CoNLL-U format and
// checks that a parsed sentence forms a tree.
package conllu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/textnorm"
)

const columns = 10

// ErrSyntax is the sentinel for malformed CoNLL-U input.
var ErrSyntax = errors.New("conllu syntax error")

// SyntaxError reports a malformed line.
type SyntaxError struct {
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("conllu: line %d: %s", e.Line, e.Reason)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Reader yields sentences from a CoNLL-U stream one at a time.
type Reader struct {
	sc   *bufio.Scanner
	line int
	done bool
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{sc: sc}
}

// Next returns the next sentence, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (model.Sentence, error) {
	var (
		s       model.Sentence
		started bool
		forms   []string
	)

	for !r.done {
		if !r.sc.Scan() {
			r.done = true
			if err := r.sc.Err(); err != nil {
				return model.Sentence{}, fmt.Errorf("reading conllu: %w", err)
			}
			break
		}
		r.line++
		line := strings.TrimRight(r.sc.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			if started {
				return finish(s, forms), nil
			}
			continue
		}
		started = true

		if strings.HasPrefix(line, "#") {
			key, value, ok := strings.Cut(strings.TrimSpace(line[1:]), "=")
			if !ok {
				continue
			}
			switch strings.TrimSpace(key) {
			case "text":
				s.Text = strings.TrimSpace(value)
			case "sent_id":
				s.ID = strings.TrimSpace(value)
			}
			continue
		}

		tok, skip, err := parseLine(line, r.line)
		if err != nil {
			return model.Sentence{}, err
		}
		if skip {
			continue
		}
		if tok.ID != len(s.Tokens)+1 {
			return model.Sentence{}, &SyntaxError{Line: r.line, Reason: fmt.Sprintf("token id %d out of sequence (expected %d)", tok.ID, len(s.Tokens)+1)}
		}
		s.Tokens = append(s.Tokens, tok)
		forms = append(forms, tok.Form)
	}

	if started {
		return finish(s, forms), nil
	}
	return model.Sentence{}, io.EOF
}

func finish(s model.Sentence, forms []string) model.Sentence {
	if s.Text == "" {
		s.Text = strings.Join(forms, " ")
	}
	return s
}

// parseLine decodes one token line. Multiword ranges ("1-2") and empty nodes
// ("1.1") are skipped.
func parseLine(line string, n int) (model.Token, bool, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != columns {
		return model.Token{}, false, &SyntaxError{Line: n, Reason: fmt.Sprintf("expected %d tab-separated columns, got %d", columns, len(fields))}
	}
	if strings.ContainsAny(fields[0], "-.") {
		return model.Token{}, true, nil
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil || id < 1 {
		return model.Token{}, false, &SyntaxError{Line: n, Reason: fmt.Sprintf("invalid token id %q", fields[0])}
	}

	tok := model.Token{
		ID:     id,
		Form:   fields[1],
		Norm:   textnorm.Normalize(fields[1]),
		Lemma:  blank(fields[2]),
		UPOS:   blank(fields[3]),
		DepRel: blank(fields[7]),
		Head:   -1,
	}

	if feats := blank(fields[5]); feats != "" {
		tok.Feats = make(map[string]string)
		for _, kv := range strings.Split(feats, "|") {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return model.Token{}, false, &SyntaxError{Line: n, Reason: fmt.Sprintf("malformed feature %q", kv)}
			}
			tok.Feats[k] = v
		}
	}

	if head := blank(fields[6]); head != "" {
		h, err := strconv.Atoi(head)
		if err != nil || h < 0 {
			return model.Token{}, false, &SyntaxError{Line: n, Reason: fmt.Sprintf("invalid head %q", head)}
		}
		tok.Head = h
	}

	return tok, false, nil
}

func blank(s string) string {
	if s == "_" {
		return ""
	}
	return s
}

// ReadAll reads every sentence from r.
func ReadAll(r io.Reader) ([]model.Sentence, error) {
	rd := NewReader(r)
	var out []model.Sentence
	for {
		s, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}

// ReadFile reads every sentence from a CoNLL-U file.
func ReadFile(path string) ([]model.Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sentences, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sentences, nil
}
