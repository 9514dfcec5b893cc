package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/tvlabel/internal/eval"
	"github.com/ppiankov/tvlabel/internal/model"
)

// Renderer writes evaluation reports as JSON, Markdown and a terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown renders the report sections that are present
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# T/V %s report: %s\n\n", report.Kind, report.Subject)
	fmt.Fprintf(&b, "- **Generated:** %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if report.RunID != "" {
		fmt.Fprintf(&b, "- **Run:** `%s`\n", report.RunID)
	}
	b.WriteString("\n")

	if d := report.Distribution; d != nil {
		b.WriteString("## Distribution\n\n")
		b.WriteString(eval.Summary(*d) + "\n\n")
		b.WriteString("| Label | Sentences | Share |\n|---|---:|---:|\n")
		for _, l := range model.Labels {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", l, d.Count(l), percent(d.Count(l), d.Total))
		}
		b.WriteString("\n")
	}

	if g := report.Gold; g != nil {
		b.WriteString("## Gold evaluation\n\n")
		fmt.Fprintf(&b, "Accuracy: **%.2f%%** (%d/%d)\n\n", g.Accuracy*100, g.Correct, g.Total)
		b.WriteString("| Label | Support | Predicted | Precision | Recall | F1 |\n|---|---:|---:|---:|---:|---:|\n")
		for _, l := range model.Labels {
			s := g.PerLabel[l]
			fmt.Fprintf(&b, "| %s | %d | %d | %.3f | %.3f | %.3f |\n", l, s.Support, s.Predicted, s.Precision, s.Recall, s.F1)
		}
		b.WriteString("\n### Confusion (gold rows, predicted columns)\n\n")
		writeMatrix(&b, g.Confusion)

		if len(g.Errors) > 0 {
			b.WriteString("\n### Mismatches\n\n")
			for i, m := range g.Errors {
				if i >= 50 {
					fmt.Fprintf(&b, "- ... and %d more\n", len(g.Errors)-50)
					break
				}
				fmt.Fprintf(&b, "- #%d gold **%s**, predicted **%s** (`%s`): %s\n", m.Index, m.Gold, m.Predicted, m.Rule, m.Text)
			}
		}
		b.WriteString("\n")
	}

	if c := report.Comparison; c != nil {
		b.WriteString("## Detector comparison\n\n")
		fmt.Fprintf(&b, "- Sentences compared: %d\n", c.Total)
		fmt.Fprintf(&b, "- T/V found by lexical detector: %d\n", c.LexicalSpecific)
		fmt.Fprintf(&b, "- T/V found by structural detector: %d\n", c.StructuralSpecific)
		fmt.Fprintf(&b, "- Lexical / structural: %.3f\n", c.Ratio)
		fmt.Fprintf(&b, "- Agreement: %.2f%%\n\n", c.Agreement*100)
		b.WriteString("### Agreement (lexical rows, structural columns)\n\n")
		writeMatrix(&b, c.Matrix)
		b.WriteString("\n")
	}

	if c := report.Compliance; c != nil {
		b.WriteString("## Tag compliance\n\n")
		fmt.Fprintf(&b, "Complied: **%.2f%%** (%d/%d)\n\n", c.Rate*100, c.Complied, c.Requested)
		b.WriteString("| Requested | Sentences | Complied | Opposite | Neutral | Unknown |\n|---|---:|---:|---:|---:|---:|\n")
		for _, l := range []model.Label{model.Formal, model.Informal} {
			t := c.ByTag[l]
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d |\n", l, t.Requested, t.Complied, t.Opposite, t.Neutral, t.Unknown)
		}
		b.WriteString("\n")
	}

	if len(report.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, s := range sortedSignals(report.Signals) {
			fmt.Fprintf(&b, "- %s **%s**: %s\n", severityIcon(s.Severity), s.Type, s.Description)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n*Labels come from rule-based detectors; review unresolved and conflicting sentences before training.*\n")
	}

	return b.String()
}

// RenderSummary prints a short summary of the report to w
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "\n%s: %s\n", report.Kind, report.Subject)
	if report.Distribution != nil {
		fmt.Fprintln(w, eval.Summary(*report.Distribution))
	}
	for _, s := range sortedSignals(report.Signals) {
		fmt.Fprintf(w, "  %s %s\n", severityIcon(s.Severity), s.Description)
	}
}

func writeMatrix(b *strings.Builder, m map[model.Label]map[model.Label]int) {
	b.WriteString("| |")
	for _, col := range model.Labels {
		fmt.Fprintf(b, " %s |", col.Short())
	}
	b.WriteString("\n|---|")
	for range model.Labels {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	for _, row := range model.Labels {
		fmt.Fprintf(b, "| **%s** |", row.Short())
		for _, col := range model.Labels {
			fmt.Fprintf(b, " %d |", m[row][col])
		}
		b.WriteString("\n")
	}
}

// sortedSignals orders signals critical first, keeping the input order otherwise
func sortedSignals(signals []model.Signal) []model.Signal {
	out := append([]model.Signal(nil), signals...)
	sort.SliceStable(out, func(i, j int) bool {
		return severityRank(out[i].Severity) > severityRank(out[j].Severity)
	})
	return out
}

func severityRank(s model.SignalSeverity) int {
	switch s {
	case model.SeverityCritical:
		return 2
	case model.SeverityWarning:
		return 1
	default:
		return 0
	}
}

func severityIcon(s model.SignalSeverity) string {
	switch s {
	case model.SeverityCritical:
		return "✗"
	case model.SeverityWarning:
		return "⚠"
	default:
		return "✓"
	}
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}
