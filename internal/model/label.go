package model

import (
	"fmt"
	"strings"
)

// Label is the politeness class of a sentence's address to its interlocutor.
type Label int

const (
	Unknown  Label = iota // Insufficient or conflicting evidence
	Neutral               // No honorific distinction applies
	Informal              // T: "ты"-class address
	Formal                // V: "вы"-class address
)

// Labels lists every label in a stable order.
var Labels = []Label{Formal, Informal, Neutral, Unknown}

func (l Label) String() string {
	switch l {
	case Formal:
		return "formal"
	case Informal:
		return "informal"
	case Neutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// Short returns the one-letter form used in corpus statistics (V, T, N, U).
func (l Label) Short() string {
	switch l {
	case Formal:
		return "V"
	case Informal:
		return "T"
	case Neutral:
		return "N"
	default:
		return "U"
	}
}

// Specific reports whether the label carries a T/V decision.
func (l Label) Specific() bool {
	return l == Formal || l == Informal
}

// ParseLabel accepts long (formal) and short (V) forms, case-insensitive.
func ParseLabel(s string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "formal", "v":
		return Formal, nil
	case "informal", "t":
		return Informal, nil
	case "neutral", "n":
		return Neutral, nil
	case "unknown", "u":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("unknown label %q (expected formal, informal, neutral, unknown or V, T, N, U)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
