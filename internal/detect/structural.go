package detect

import (
	"strings"

	"github.com/ppiankov/tvlabel/internal/conllu"
	"github.com/ppiankov/tvlabel/internal/lexicon"
	"github.com/ppiankov/tvlabel/internal/model"
)

// Evidence site kinds, recorded as the cue category.
const (
	SitePredicate  = "predicate"         // Finite verb with Person=2
	SiteImperative = "imperative"        // Imperative verb
	SiteAgreement  = "subject-agreement" // 2nd person subject, number read from its verb
	SiteSubject    = "subject"           // 2nd person subject of a nominal predicate
	SitePronoun    = "pronoun"           // Object or oblique pronoun
	SitePossessive = "possessive"        // Possessive determiner
)

// StructuralDetector reads T/V agreement from dependency structure and
// morphology. Russian verbs encode singular ("ты") or plural ("вы") address
// even when the pronoun is dropped.
type StructuralDetector struct {
	lex *lexicon.Store
}

// NewStructural creates a grammar-based detector. The lexicon supplies the
// T/V class of pronoun and possessive lemmas.
func NewStructural(lex *lexicon.Store) *StructuralDetector {
	return &StructuralDetector{lex: lex}
}

// Name returns "structural".
func (d *StructuralDetector) Name() string {
	return NameStructural
}

// Detect returns ErrMissingParse for sentences without parser output.
// Tokens that break the tree invariants are left out of the evidence and
// listed in Verdict.Excluded.
func (d *StructuralDetector) Detect(s model.Sentence) (model.Verdict, error) {
	if !s.Parsed() {
		return model.Verdict{Detector: NameStructural}, ErrMissingParse
	}

	a := newAnalysis(s, d.lex)

	// 1. Second-person predicates: finite verbs and imperatives
	a.predicateSites()

	// 2. Subjects of predicates without second-person morphology
	a.subjectSites()

	// 3. Remaining pronouns and possessives
	a.pronounSites()

	v := decide(NameStructural, a.sortedCues())
	v.Excluded = a.excluded
	return v, nil
}

type analysis struct {
	s   model.Sentence
	lex *lexicon.Store

	excluded []int
	bad      map[int]bool
	children map[int][]model.Token

	secondPred map[int]bool // predicates carrying a second-person site
	consumed   map[int]bool // pronouns already accounted for
	cues       map[int]model.Cue
}

func newAnalysis(s model.Sentence, lex *lexicon.Store) *analysis {
	a := &analysis{
		s:          s,
		lex:        lex,
		bad:        make(map[int]bool),
		children:   make(map[int][]model.Token),
		secondPred: make(map[int]bool),
		consumed:   make(map[int]bool),
		cues:       make(map[int]model.Cue),
	}

	for _, def := range conllu.Defects(s) {
		a.bad[def.Token] = true
		a.excluded = append(a.excluded, def.Token)
	}
	for _, t := range s.Tokens {
		if a.bad[t.ID] || t.Head <= 0 {
			continue
		}
		a.children[t.Head] = append(a.children[t.Head], t)
	}

	return a
}

// usable returns the token when it exists and is not excluded.
func (a *analysis) usable(id int) (model.Token, bool) {
	if a.bad[id] {
		return model.Token{}, false
	}
	return a.s.Token(id)
}

func (a *analysis) predicateSites() {
	for _, t := range a.s.Tokens {
		if a.bad[t.ID] || !isVerbal(t) {
			continue
		}

		person := t.Feat("Person")
		imperative := t.Feat("Mood") == "Imp" && (person == "" || person == "2")
		if person != "2" && !imperative {
			continue
		}

		class, ok := numberClass(t.Feat("Number"))
		if !ok {
			continue
		}

		kind := SitePredicate
		if imperative {
			kind = SiteImperative
		}
		a.cues[t.ID] = model.Cue{Token: t.ID, Form: t.Form, Category: kind, Class: class}

		a.secondPred[t.ID] = true
		if isAuxRelation(t.DepRel) && t.Head > 0 {
			a.secondPred[t.Head] = true
		}
	}

	// Subjects of those predicates are explained by the verb's agreement.
	for _, t := range a.s.Tokens {
		if a.bad[t.ID] || !isSubject(t.DepRel) {
			continue
		}
		if a.secondPred[t.Head] && a.pronounClass(t) != "" {
			a.consumed[t.ID] = true
		}
	}
}

func (a *analysis) subjectSites() {
	for _, t := range a.s.Tokens {
		if a.bad[t.ID] || a.consumed[t.ID] || !isSubject(t.DepRel) {
			continue
		}
		class := a.pronounClass(t)
		if class == "" {
			continue
		}
		pred, ok := a.usable(t.Head)
		if !ok {
			continue
		}

		a.consumed[t.ID] = true
		if agreed, ok := a.agreement(pred); ok {
			a.cues[t.ID] = model.Cue{Token: t.ID, Form: t.Form, Category: SiteAgreement, Class: agreed}
			continue
		}
		a.cues[t.ID] = model.Cue{Token: t.ID, Form: t.Form, Category: SiteSubject, Class: class}
	}
}

// agreement reads the number of a verbal predicate or of the auxiliary or
// copula attached to it. Adjectival predicates are skipped: singular
// adjectives agree with polite "вы".
func (a *analysis) agreement(pred model.Token) (model.Class, bool) {
	if isVerbal(pred) {
		if c, ok := numberClass(pred.Feat("Number")); ok {
			return c, true
		}
	}
	for _, child := range a.children[pred.ID] {
		if !isAuxRelation(child.DepRel) || !isVerbal(child) {
			continue
		}
		if c, ok := numberClass(child.Feat("Number")); ok {
			return c, true
		}
	}
	return "", false
}

func (a *analysis) pronounSites() {
	for _, t := range a.s.Tokens {
		if a.bad[t.ID] || a.consumed[t.ID] {
			continue
		}
		kind := ""
		switch t.UPOS {
		case "PRON":
			kind = SitePronoun
		case "DET":
			kind = SitePossessive
		default:
			continue
		}
		if class := a.pronounClass(t); class != "" {
			a.cues[t.ID] = model.Cue{Token: t.ID, Form: t.Form, Category: kind, Class: class}
		}
	}
}

// pronounClass returns the T/V class of a pronoun or determiner by lemma,
// falling back to its surface form when the parser gave no lemma.
func (a *analysis) pronounClass(t model.Token) model.Class {
	if t.UPOS != "PRON" && t.UPOS != "DET" {
		return ""
	}
	if t.Lemma != "" {
		return a.lex.LemmaClass(t.Lemma)
	}
	for _, m := range a.lex.Lookup(t.Form) {
		if m.Class == model.ClassT || m.Class == model.ClassV {
			return m.Class
		}
	}
	return ""
}

func (a *analysis) sortedCues() []model.Cue {
	var out []model.Cue
	for _, t := range a.s.Tokens {
		if c, ok := a.cues[t.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

func isVerbal(t model.Token) bool {
	return t.UPOS == "VERB" || t.UPOS == "AUX"
}

func isSubject(rel string) bool {
	base, _, _ := strings.Cut(rel, ":")
	return base == "nsubj"
}

func isAuxRelation(rel string) bool {
	base, _, _ := strings.Cut(rel, ":")
	return base == "aux" || base == "cop"
}

func numberClass(number string) (model.Class, bool) {
	switch number {
	case "Sing":
		return model.ClassT, true
	case "Plur":
		return model.ClassV, true
	}
	return "", false
}
