// Package resolve combines the lexical and structural verdicts of a sentence
// into one label with provenance.
package resolve

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/tvlabel/internal/model"
)

// Precedence decides between a specific label (FORMAL/INFORMAL) and a
// non-specific one (NEUTRAL/UNKNOWN) from the other detector.
type Precedence string

const (
	PreferSpecific   Precedence = "specific"   // Take the specific label, structural first
	PreferStructural Precedence = "structural" // Take the structural label whatever it is
	PreferLexical    Precedence = "lexical"    // Take the lexical label whatever it is
	Abstain          Precedence = "abstain"    // Return UNKNOWN
)

// Precedences lists the accepted values in documentation order.
var Precedences = []Precedence{PreferSpecific, PreferStructural, PreferLexical, Abstain}

// ParsePrecedence validates a precedence name.
func ParsePrecedence(s string) (Precedence, error) {
	p := Precedence(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Precedences {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown precedence %q (expected one of %v)", s, Precedences)
}

// Resolver is a pure function over verdict pairs, parameterised by precedence.
// The logger only receives contradiction reports.
type Resolver struct {
	precedence Precedence
	logger     *slog.Logger
}

// New creates a resolver. An empty precedence means PreferSpecific; a nil
// logger means slog.Default().
func New(precedence Precedence, logger *slog.Logger) *Resolver {
	if precedence == "" {
		precedence = PreferSpecific
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{precedence: precedence, logger: logger}
}

// Precedence returns the configured precedence.
func (r *Resolver) Precedence() Precedence {
	return r.precedence
}

// Resolve combines the lexical verdict with the structural one. structural is
// nil when the structural detector did not run; unavailable carries the reason
// (e.g. detect.ErrMissingParse) and is recorded in the provenance.
func (r *Resolver) Resolve(lexical model.Verdict, structural *model.Verdict, unavailable error) model.Resolution {
	// 1. Single source
	if structural == nil {
		res := model.Resolution{
			Label:        lexical.Label,
			Rule:         model.RuleSingleSource,
			Sources:      []string{lexical.Detector},
			SingleSource: true,
		}
		if unavailable != nil {
			res.Unavailable = unavailable.Error()
		}
		return res
	}

	res := model.Resolution{Sources: []string{lexical.Detector, structural.Detector}}
	lex, str := lexical.Label, structural.Label

	switch {
	// 2. Agreement
	case lex == str:
		res.Label = lex
		res.Rule = model.RuleAgreement

	// 4. Direct contradiction
	case lex.Specific() && str.Specific():
		res.Label = model.Unknown
		res.Rule = model.RuleContradiction
		res.Conflict = true
		r.logger.Warn("detectors contradict each other",
			"lexical", lex.String(), "lexical_rule", lexical.Rule,
			"structural", str.String(), "structural_rule", structural.Rule)

	// 3. One specific, the other NEUTRAL or UNKNOWN
	case lex.Specific() || str.Specific():
		res.Label, res.Rule = r.precede(lex, str)

	// UNKNOWN against NEUTRAL
	default:
		res.Label = model.Unknown
		res.Rule = model.RuleAbstain
	}

	return res
}

func (r *Resolver) precede(lex, str model.Label) (model.Label, model.ResolutionRule) {
	switch r.precedence {
	case PreferStructural:
		return str, model.RulePreferStructural
	case PreferLexical:
		return lex, model.RulePreferLexical
	case Abstain:
		return model.Unknown, model.RuleAbstain
	}
	if str.Specific() {
		return str, model.RulePreferSpecific
	}
	return lex, model.RulePreferSpecific
}

// ResolveError is a convenience for callers that hold the structural
// detector's (verdict, error) pair: any error makes the structural verdict
// unavailable.
func (r *Resolver) ResolveError(lexical, structural model.Verdict, err error) model.Resolution {
	if err != nil {
		return r.Resolve(lexical, nil, err)
	}
	return r.Resolve(lexical, &structural, nil)
}
