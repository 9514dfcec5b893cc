package eval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/tag"
)

// ErrLengthMismatch is returned when aligned label sequences differ in length.
var ErrLengthMismatch = errors.New("aligned inputs differ in length")

// Thresholds control the severity of evaluation signals.
type Thresholds struct {
	MinAccuracy     float64 // Gold accuracy below this is critical
	MinAgreement    float64 // Detector agreement below this is a warning
	MinCompliance   float64 // Tag compliance below this is a warning
	MaxUnknownShare float64 // Unknown share above this is a warning
	MinCoverage     float64 // Lexical/structural T+V ratio outside [MinCoverage, 1/MinCoverage] is a warning
}

// DefaultThresholds returns the thresholds used by the eval commands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAccuracy:     0.9,
		MinAgreement:    0.8,
		MinCompliance:   0.8,
		MaxUnknownShare: 0.05,
		MinCoverage:     0.8,
	}
}

// Evaluator computes evaluation sections and their diagnostic signals
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates a new evaluator
func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{thresholds: t}
}

// Distribute counts labels.
func Distribute(labels []model.Label) model.Distribution {
	d := model.Distribution{Total: len(labels), Counts: make(map[model.Label]int, len(model.Labels))}
	for _, l := range model.Labels {
		d.Counts[l] = 0
	}
	for _, l := range labels {
		d.Counts[l]++
	}
	return d
}

// Summary renders a distribution in the corpus statistics line format.
// Unknown sentences are appended only when present.
func Summary(d model.Distribution) string {
	s := fmt.Sprintf("Neutral sentences: %d. V sentences found: %d. T sentences found: %d.",
		d.Count(model.Neutral), d.Count(model.Formal), d.Count(model.Informal))
	if n := d.Count(model.Unknown); n > 0 {
		s += fmt.Sprintf(" Unresolved sentences: %d.", n)
	}
	return s
}

// GoldFromTagged reads gold labels from side-constraint tagged lines.
// Untagged lines are neutral. The returned texts have the tag removed.
func GoldFromTagged(lines []string, tags *tag.Set) ([]model.Label, []string) {
	labels := make([]model.Label, len(lines))
	texts := make([]string, len(lines))
	for i, line := range lines {
		l, rest, ok := tags.Strip(line)
		if !ok {
			l, rest = model.Neutral, line
		}
		labels[i] = l
		texts[i] = rest
	}
	return labels, texts
}

// ParseGoldLabels reads one label per line (formal, V, informal, T, ...).
func ParseGoldLabels(lines []string) ([]model.Label, error) {
	labels := make([]model.Label, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		l, err := model.ParseLabel(line)
		if err != nil {
			return nil, fmt.Errorf("gold line %d: %w", i+1, err)
		}
		labels = append(labels, l)
	}
	return labels, nil
}

// Stats computes the label distribution of labels.
func (e *Evaluator) Stats(labels []model.Label) (model.Distribution, []model.Signal) {
	d := Distribute(labels)
	if d.Total == 0 {
		return d, []model.Signal{emptySignal("labels")}
	}
	return d, []model.Signal{e.classBalance(d), e.unresolved(d)}
}

// Gold scores records against gold labels aligned by position.
func (e *Evaluator) Gold(gold []model.Label, records []model.Record) (model.GoldResult, []model.Signal, error) {
	if len(gold) != len(records) {
		return model.GoldResult{}, nil, fmt.Errorf("%w: %d gold labels, %d records", ErrLengthMismatch, len(gold), len(records))
	}

	res := model.GoldResult{
		Total:     len(gold),
		Confusion: newMatrix(),
		PerLabel:  make(map[model.Label]model.LabelScore, len(model.Labels)),
	}

	// 1. Confusion matrix
	for i, g := range gold {
		rec := records[i]
		res.Confusion[g][rec.Label]++
		if g == rec.Label {
			res.Correct++
			continue
		}
		res.Errors = append(res.Errors, model.Mismatch{
			Index:     rec.Index,
			Text:      detectedText(rec),
			Gold:      g,
			Predicted: rec.Label,
			Rule:      string(rec.Resolution.Rule),
		})
	}

	// 2. Per-label precision and recall
	for _, l := range model.Labels {
		var score model.LabelScore
		for _, p := range model.Labels {
			score.Support += res.Confusion[l][p]
			score.Predicted += res.Confusion[p][l]
		}
		tp := res.Confusion[l][l]
		score.Precision = ratio(tp, score.Predicted)
		score.Recall = ratio(tp, score.Support)
		if score.Precision+score.Recall > 0 {
			score.F1 = 2 * score.Precision * score.Recall / (score.Precision + score.Recall)
		}
		res.PerLabel[l] = score
	}

	// 3. Accuracy
	res.Accuracy = ratio(res.Correct, res.Total)

	if res.Total == 0 {
		return res, []model.Signal{emptySignal("gold")}, nil
	}
	return res, []model.Signal{e.accuracy(res)}, nil
}

// Compare contrasts lexical and structural labels aligned by position.
func (e *Evaluator) Compare(lexical, structural []model.Label) (model.Comparison, []model.Signal, error) {
	if len(lexical) != len(structural) {
		return model.Comparison{}, nil, fmt.Errorf("%w: %d lexical, %d structural", ErrLengthMismatch, len(lexical), len(structural))
	}

	c := model.Comparison{Total: len(lexical), Matrix: newMatrix()}
	agree := 0
	for i, l := range lexical {
		s := structural[i]
		c.Matrix[l][s]++
		if l == s {
			agree++
		}
		if l.Specific() {
			c.LexicalSpecific++
		}
		if s.Specific() {
			c.StructuralSpecific++
		}
	}
	c.Agreement = ratio(agree, c.Total)
	c.Ratio = ratio(c.LexicalSpecific, c.StructuralSpecific)

	if c.Total == 0 {
		return c, []model.Signal{emptySignal("comparison")}, nil
	}
	return c, []model.Signal{e.agreement(c), e.coverage(c)}, nil
}

// CompareRecords compares the detectors on records that carry both verdicts.
// It returns the number of records skipped for lack of a structural verdict.
func (e *Evaluator) CompareRecords(records []model.Record) (model.Comparison, []model.Signal, int, error) {
	var lexical, structural []model.Label
	skipped := 0
	for _, rec := range records {
		if rec.Structural == nil || rec.Error != "" {
			skipped++
			continue
		}
		lexical = append(lexical, rec.Lexical.Label)
		structural = append(structural, rec.Structural.Label)
	}
	c, signals, err := e.Compare(lexical, structural)
	return c, signals, skipped, err
}

// Compliance checks detected translation labels against requested tags.
// Only T and V requests count; neutral and unknown requests are ignored.
func (e *Evaluator) Compliance(requested, detected []model.Label) (model.Compliance, []model.Signal, error) {
	if len(requested) != len(detected) {
		return model.Compliance{}, nil, fmt.Errorf("%w: %d requested, %d detected", ErrLengthMismatch, len(requested), len(detected))
	}

	c := model.Compliance{ByTag: map[model.Label]model.ComplianceBreakdown{
		model.Formal:   {},
		model.Informal: {},
	}}
	for i, want := range requested {
		if !want.Specific() {
			continue
		}
		got := detected[i]
		b := c.ByTag[want]
		b.Requested++
		switch {
		case got == want:
			b.Complied++
		case got.Specific():
			b.Opposite++
		case got == model.Neutral:
			b.Neutral++
		default:
			b.Unknown++
		}
		c.ByTag[want] = b
	}
	for _, b := range c.ByTag {
		c.Requested += b.Requested
		c.Complied += b.Complied
	}
	c.Rate = ratio(c.Complied, c.Requested)

	if c.Requested == 0 {
		return c, []model.Signal{emptySignal("requests")}, nil
	}
	return c, []model.Signal{e.compliance(c)}, nil
}

func (e *Evaluator) classBalance(d model.Distribution) model.Signal {
	t, v := d.Count(model.Informal), d.Count(model.Formal)

	severity := model.SeverityInfo
	if t == 0 || v == 0 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalClassBalance,
		Severity:    severity,
		Description: fmt.Sprintf("T/V balance: %d informal, %d formal, %d neutral", t, v, d.Count(model.Neutral)),
		Data: map[string]interface{}{
			"informal":       t,
			"formal":         v,
			"neutral":        d.Count(model.Neutral),
			"total":          d.Total,
			"specific_share": ratio(t+v, d.Total),
			"formula":        "(informal + formal) / total",
		},
	}
}

func (e *Evaluator) unresolved(d model.Distribution) model.Signal {
	share := ratio(d.Count(model.Unknown), d.Total)

	severity := model.SeverityInfo
	if share > e.thresholds.MaxUnknownShare {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalUnresolved,
		Severity:    severity,
		Description: fmt.Sprintf("Unresolved share: %.2f%%", share*100),
		Data: map[string]interface{}{
			"unknown":   d.Count(model.Unknown),
			"total":     d.Total,
			"share":     share,
			"threshold": e.thresholds.MaxUnknownShare,
		},
	}
}

func (e *Evaluator) accuracy(res model.GoldResult) model.Signal {
	severity := model.SeverityInfo
	if res.Accuracy < e.thresholds.MinAccuracy {
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalAccuracy,
		Severity:    severity,
		Description: fmt.Sprintf("Gold accuracy: %.2f%% (%d/%d)", res.Accuracy*100, res.Correct, res.Total),
		Data: map[string]interface{}{
			"correct":   res.Correct,
			"total":     res.Total,
			"accuracy":  res.Accuracy,
			"threshold": e.thresholds.MinAccuracy,
		},
	}
}

func (e *Evaluator) agreement(c model.Comparison) model.Signal {
	severity := model.SeverityInfo
	if c.Agreement < e.thresholds.MinAgreement {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalDetectorAgreement,
		Severity:    severity,
		Description: fmt.Sprintf("Detector agreement: %.2f%%", c.Agreement*100),
		Data: map[string]interface{}{
			"total":     c.Total,
			"agreement": c.Agreement,
			"threshold": e.thresholds.MinAgreement,
		},
	}
}

func (e *Evaluator) coverage(c model.Comparison) model.Signal {
	severity := model.SeverityInfo
	if c.StructuralSpecific == 0 {
		if c.LexicalSpecific > 0 {
			severity = model.SeverityWarning
		}
	} else if lo := e.thresholds.MinCoverage; lo > 0 && (c.Ratio < lo || c.Ratio > 1/lo) {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalCoverageGap,
		Severity:    severity,
		Description: fmt.Sprintf("Lexical detector finds %d T/V sentences, structural finds %d", c.LexicalSpecific, c.StructuralSpecific),
		Data: map[string]interface{}{
			"lexical_specific":    c.LexicalSpecific,
			"structural_specific": c.StructuralSpecific,
			"ratio":               c.Ratio,
			"formula":             "lexical (T+V) / structural (T+V)",
		},
	}
}

func (e *Evaluator) compliance(c model.Compliance) model.Signal {
	severity := model.SeverityInfo
	if c.Rate < e.thresholds.MinCompliance {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalCompliance,
		Severity:    severity,
		Description: fmt.Sprintf("Tag compliance: %.2f%% (%d/%d)", c.Rate*100, c.Complied, c.Requested),
		Data: map[string]interface{}{
			"requested": c.Requested,
			"complied":  c.Complied,
			"rate":      c.Rate,
			"threshold": e.thresholds.MinCompliance,
		},
	}
}

func emptySignal(what string) model.Signal {
	return model.Signal{
		Type:        model.SignalEmpty,
		Severity:    model.SeverityCritical,
		Description: fmt.Sprintf("No %s to evaluate", what),
	}
}

func newMatrix() map[model.Label]map[model.Label]int {
	m := make(map[model.Label]map[model.Label]int, len(model.Labels))
	for _, l := range model.Labels {
		m[l] = make(map[model.Label]int, len(model.Labels))
	}
	return m
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func detectedText(rec model.Record) string {
	if rec.Target != "" {
		return rec.Target
	}
	return rec.Source
}
