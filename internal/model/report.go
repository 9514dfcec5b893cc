package model

import "time"

// Report is the evaluation artifact written by the eval commands.
// Every section is optional; only the ones computed are present.
type Report struct {
	Kind        ReportKind `json:"kind"`             // stats, gold, compare, compliance
	Subject     string     `json:"subject"`          // Input file the report is about
	RunID       string     `json:"run_id,omitempty"` // Labeling run the records came from
	GeneratedAt time.Time  `json:"generated_at"`

	Distribution *Distribution `json:"distribution,omitempty"`
	Gold         *GoldResult   `json:"gold,omitempty"`
	Comparison   *Comparison   `json:"comparison,omitempty"`
	Compliance   *Compliance   `json:"compliance,omitempty"`

	Signals []Signal `json:"signals"` // Diagnostic signals with transparent data
}

// ReportKind names the evaluation that produced a report.
type ReportKind string

const (
	ReportStats      ReportKind = "stats"
	ReportGold       ReportKind = "gold"
	ReportCompare    ReportKind = "compare"
	ReportCompliance ReportKind = "compliance"
)

// Distribution counts sentences per label.
type Distribution struct {
	Total  int           `json:"total"`
	Counts map[Label]int `json:"counts"`
}

// Count returns the number of sentences carrying l.
func (d Distribution) Count(l Label) int {
	return d.Counts[l]
}

// GoldResult scores predicted labels against gold annotations.
type GoldResult struct {
	Total     int                     `json:"total"`
	Correct   int                     `json:"correct"`
	Accuracy  float64                 `json:"accuracy"`
	Confusion map[Label]map[Label]int `json:"confusion"` // gold -> predicted -> count
	PerLabel  map[Label]LabelScore    `json:"per_label"`
	Errors    []Mismatch              `json:"errors,omitempty"`
}

// LabelScore is precision and recall for one label.
type LabelScore struct {
	Support   int     `json:"support"` // Gold sentences with this label
	Predicted int     `json:"predicted"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Mismatch is one sentence where prediction and gold differ.
type Mismatch struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Gold      Label  `json:"gold"`
	Predicted Label  `json:"predicted"`
	Rule      string `json:"rule,omitempty"`
}

// Comparison contrasts the lexical and structural detectors on one corpus.
type Comparison struct {
	Total              int                     `json:"total"`
	LexicalSpecific    int                     `json:"lexical_specific"`    // Sentences the lexical detector marked T or V
	StructuralSpecific int                     `json:"structural_specific"` // Same for the structural detector
	Ratio              float64                 `json:"ratio"`               // lexical_specific / structural_specific
	Agreement          float64                 `json:"agreement"`           // Share of sentences with equal labels
	Matrix             map[Label]map[Label]int `json:"matrix"`              // lexical -> structural -> count
}

// Compliance measures whether translations honour a requested T/V tag.
type Compliance struct {
	Requested int                           `json:"requested"` // Sentences carrying a T or V request
	Complied  int                           `json:"complied"`
	Rate      float64                       `json:"rate"`
	ByTag     map[Label]ComplianceBreakdown `json:"by_tag"`
}

// ComplianceBreakdown splits the detected labels for one requested tag.
type ComplianceBreakdown struct {
	Requested int `json:"requested"`
	Complied  int `json:"complied"`
	Opposite  int `json:"opposite"` // The other specific label was produced
	Neutral   int `json:"neutral"`  // No address in the translation
	Unknown   int `json:"unknown"`
}

// Signal represents a diagnostic signal with transparent data
type Signal struct {
	Type        SignalType             `json:"type"`           // Signal classification
	Severity    SignalSeverity         `json:"severity"`       // info, warning, critical
	Description string                 `json:"description"`    // Human-readable description
	Data        map[string]interface{} `json:"data,omitempty"` // Inputs behind the signal
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalClassBalance      SignalType = "class_balance"      // T/V/neutral proportions
	SignalUnresolved        SignalType = "unresolved"         // Share of unknown labels
	SignalAccuracy          SignalType = "accuracy"           // Agreement with gold labels
	SignalDetectorAgreement SignalType = "detector_agreement" // Lexical vs structural
	SignalCoverageGap       SignalType = "coverage_gap"       // One detector finds far fewer T/V
	SignalCompliance        SignalType = "compliance"         // Requested vs produced address
	SignalEmpty             SignalType = "empty"              // Nothing to evaluate
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
