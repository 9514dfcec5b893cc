package model

// Record is one labeled corpus example.
type Record struct {
	Index      int        `json:"index"`                // Position in the source corpus (0-based)
	RunID      string     `json:"run_id,omitempty"`     // Labeling run that produced the record
	Source     string     `json:"source"`               // Source sentence (English)
	Target     string     `json:"target,omitempty"`     // Target sentence (Russian), if present
	Label      Label      `json:"label"`                // Resolved label
	Tag        string     `json:"tag,omitempty"`        // Side-constraint token for the label
	Lexical    Verdict    `json:"lexical"`              // Token-based verdict
	Structural *Verdict   `json:"structural,omitempty"` // Grammar-based verdict, when parser output was supplied
	Resolution Resolution `json:"resolution"`           // Provenance of Label
	Error      string     `json:"error,omitempty"`      // Per-sentence processing failure
}
