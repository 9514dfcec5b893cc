package conllu

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/tvlabel/internal/model"
)

// Defect reasons.
const (
	DefectNoPOS        = "no part-of-speech"
	DefectMissingHead  = "missing head"
	DefectHeadRange    = "head out of range"
	DefectSelfGoverned = "self-dependency"
	DefectCycle        = "dependency cycle"
)

// Defect marks a token that cannot be trusted as structural evidence.
type Defect struct {
	Token  int
	Reason string
}

func (d Defect) Error() string {
	return fmt.Sprintf("token %d: %s", d.Token, d.Reason)
}

// Defects lists the tokens of a parsed sentence that break the tree
// invariants, sorted by token id. Each token is reported once, with the first
// applicable reason.
func Defects(s model.Sentence) []Defect {
	n := len(s.Tokens)
	bad := make(map[int]string)

	for _, t := range s.Tokens {
		switch {
		case t.UPOS == "":
			bad[t.ID] = DefectNoPOS
		case t.Head < 0:
			bad[t.ID] = DefectMissingHead
		case t.Head > n:
			bad[t.ID] = DefectHeadRange
		case t.Head == t.ID:
			bad[t.ID] = DefectSelfGoverned
		}
	}

	for _, t := range s.Tokens {
		if _, ok := bad[t.ID]; ok {
			continue
		}
		if onCycle(s, t.ID) {
			bad[t.ID] = DefectCycle
		}
	}

	out := make([]Defect, 0, len(bad))
	for id, reason := range bad {
		out = append(out, Defect{Token: id, Reason: reason})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}

// onCycle walks the head chain from id and reports whether it returns to id.
func onCycle(s model.Sentence, id int) bool {
	n := len(s.Tokens)
	cur := id
	for steps := 0; steps <= n; steps++ {
		tok, ok := s.Token(cur)
		if !ok {
			return false
		}
		next := tok.Head
		if next <= 0 || next > n || next == cur {
			return false
		}
		if next == id {
			return true
		}
		cur = next
	}
	return false
}

// ValidateTree returns nil when every token of a parsed sentence has a part of
// speech and a single in-range governor and the relations form a tree rooted
// at 0. Otherwise the defects are joined into one error.
func ValidateTree(s model.Sentence) error {
	defects := Defects(s)

	roots := 0
	for _, t := range s.Tokens {
		if t.Head == 0 {
			roots++
		}
	}

	errs := make([]error, 0, len(defects)+1)
	for _, d := range defects {
		errs = append(errs, d)
	}
	if len(s.Tokens) > 0 && roots == 0 {
		errs = append(errs, errors.New("no root token"))
	}
	return errors.Join(errs...)
}
