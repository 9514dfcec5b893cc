package model

// Class is the politeness class of a lexicon category or evidence site.
type Class string

const (
	ClassT       Class = "T"       // Informal address
	ClassV       Class = "V"       // Formal address
	ClassAddress Class = "address" // Second-person address without a T/V distinction
)

// Cue is one piece of evidence that contributed to a verdict.
type Cue struct {
	Token    int    `json:"token"`    // 1-based token ID
	Form     string `json:"form"`     // Surface form
	Category string `json:"category"` // Lexicon category or structural site kind (e.g., "predicate")
	Class    Class  `json:"class"`
}

// Verdict is the output of one detector for one sentence.
type Verdict struct {
	Detector string `json:"detector"`           // "lexical" or "structural"
	Label    Label  `json:"label"`              // Detected label
	Rule     string `json:"rule"`               // Which decision rule fired (e.g., "lexical:formal-only")
	Cues     []Cue  `json:"cues,omitempty"`     // Evidence, in sentence order
	Formal   int    `json:"formal"`             // Number of V cues
	Informal int    `json:"informal"`           // Number of T cues
	Excluded []int  `json:"excluded,omitempty"` // Token IDs left out of structural evidence
}

// ResolutionRule names the resolver rule that produced a label.
type ResolutionRule string

const (
	RuleSingleSource     ResolutionRule = "single-source"
	RuleAgreement        ResolutionRule = "agreement"
	RulePreferSpecific   ResolutionRule = "prefer-specific"
	RulePreferStructural ResolutionRule = "prefer-structural"
	RulePreferLexical    ResolutionRule = "prefer-lexical"
	RuleAbstain          ResolutionRule = "abstain"
	RuleContradiction    ResolutionRule = "contradiction"
)

// Resolution is the final label of a sentence with its provenance.
type Resolution struct {
	Label        Label          `json:"label"`
	Rule         ResolutionRule `json:"rule"`
	Sources      []string       `json:"sources"`               // Detectors whose verdicts were consulted
	SingleSource bool           `json:"single_source"`         // Only one verdict was available
	Conflict     bool           `json:"conflict"`              // Detectors contradicted each other (FORMAL vs INFORMAL)
	Unavailable  string         `json:"unavailable,omitempty"` // Why a detector could not run
}
