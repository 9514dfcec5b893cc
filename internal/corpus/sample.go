package corpus

import (
	"unicode/utf8"

	"github.com/ppiankov/tvlabel/internal/model"
)

// SampleStats counts what the sampler saw and kept per label.
type SampleStats struct {
	Seen    map[model.Label]int `json:"seen"`
	Kept    map[model.Label]int `json:"kept"`
	TooLong int                 `json:"too_long"`
}

// Sampler builds a class-balanced subcorpus from labeled pairs.
//
// Informal pairs are rare and always considered regardless of length. Other
// pairs whose detection-side sentence is longer than MaxLength runes are
// skipped before counting. Each class is kept until its limit is reached; a
// zero limit keeps the whole class. Unknown pairs are dropped unless
// IncludeUnknown is set, in which case they count as neutral.
type Sampler struct {
	cfg  model.SamplingConfig
	side string
}

// NewSampler creates a sampler. side selects which sentence of a pair the
// length limit applies to: "source" or "target".
func NewSampler(cfg model.SamplingConfig, side string) *Sampler {
	return &Sampler{cfg: cfg, side: side}
}

// Sample returns the kept pairs in input order.
func (s *Sampler) Sample(pairs []Pair, labels []model.Label) ([]Pair, SampleStats) {
	stats := SampleStats{
		Seen: make(map[model.Label]int),
		Kept: make(map[model.Label]int),
	}

	var out []Pair
	for i, p := range pairs {
		if i >= len(labels) {
			break
		}

		label := labels[i]
		if label == model.Unknown {
			stats.Seen[model.Unknown]++
			if !s.cfg.IncludeUnknown {
				continue
			}
			label = model.Neutral
		}

		if label != model.Informal && s.cfg.MaxLength > 0 && utf8.RuneCountInString(s.text(p)) > s.cfg.MaxLength {
			stats.TooLong++
			continue
		}

		if labels[i] != model.Unknown {
			stats.Seen[label]++
		}
		if limit := s.limit(label); limit > 0 && stats.Kept[label] >= limit {
			continue
		}

		stats.Kept[label]++
		out = append(out, p)
	}

	return out, stats
}

func (s *Sampler) text(p Pair) string {
	if s.side == "source" {
		return p.Source
	}
	return p.Target
}

func (s *Sampler) limit(l model.Label) int {
	switch l {
	case model.Formal:
		return s.cfg.FormalLimit
	case model.Informal:
		return s.cfg.InformalLimit
	default:
		return s.cfg.NeutralLimit
	}
}
