// Package detect labels sentences as formal, informal or neutral address.
//
// Two detectors share the Detector interface: LexicalDetector looks up
// surface forms in the lexicon, StructuralDetector reads person and number
// agreement from dependency parser output.
package detect

import (
	"errors"

	"github.com/ppiankov/tvlabel/internal/model"
)

// Detector names, as stamped on verdicts.
const (
	NameLexical    = "lexical"
	NameStructural = "structural"
)

// ErrMissingParse means the sentence carries no parser output, so the
// structural detector is unavailable for it.
var ErrMissingParse = errors.New("no parser output for sentence")

// Detector produces a politeness verdict for a sentence. Implementations are
// pure and safe for concurrent use.
type Detector interface {
	Name() string
	Detect(s model.Sentence) (model.Verdict, error)
}

// decide applies the four-way decision shared by both detectors.
func decide(detector string, cues []model.Cue) model.Verdict {
	v := model.Verdict{Detector: detector, Cues: cues}

	address := false
	for _, c := range cues {
		switch c.Class {
		case model.ClassV:
			v.Formal++
		case model.ClassT:
			v.Informal++
		case model.ClassAddress:
			address = true
		}
	}

	switch {
	case v.Formal > 0 && v.Informal > 0:
		v.Label = model.Unknown
		v.Rule = detector + ":conflict"
	case v.Formal > 0:
		v.Label = model.Formal
		v.Rule = detector + ":formal-only"
	case v.Informal > 0:
		v.Label = model.Informal
		v.Rule = detector + ":informal-only"
	case address:
		v.Label = model.Neutral
		v.Rule = detector + ":address-without-distinction"
	default:
		v.Label = model.Neutral
		v.Rule = detector + ":" + noEvidenceRule[detector]
	}

	return v
}

var noEvidenceRule = map[string]string{
	NameLexical:    "no-address",
	NameStructural: "no-second-person",
}
