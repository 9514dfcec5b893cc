package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/pipeline"
)

func TestRenderDetection(t *testing.T) {
	d := pipeline.Detection{
		Text: "Вы придёшь?",
		Lexical: model.Verdict{
			Detector: "lexical",
			Label:    model.Formal,
			Rule:     "lexical:formal-only",
			Cues:     []model.Cue{{Token: 1, Form: "Вы", Category: "pronoun_v", Class: model.ClassV}},
		},
		Structural: &model.Verdict{
			Detector: "structural",
			Label:    model.Informal,
			Rule:     "structural:informal-only",
			Excluded: []int{3},
		},
		Resolution: model.Resolution{Label: model.Unknown, Rule: model.RuleContradiction, Conflict: true},
	}

	var buf bytes.Buffer
	RenderDetection(&buf, d)
	out := buf.String()

	for _, want := range []string{
		"Вы придёшь?\n",
		"label:      unknown (contradiction)",
		"contradict",
		"lexical:    formal (lexical:formal-only)  Вы[pronoun_v:V]",
		"structural: informal (structural:informal-only)  excluded tokens [3]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderDetection_Unavailable(t *testing.T) {
	d := pipeline.Detection{
		Text:       "Ты где?",
		Lexical:    model.Verdict{Label: model.Informal, Rule: "lexical:informal-only"},
		Resolution: model.Resolution{Label: model.Informal, Rule: model.RuleSingleSource, Unavailable: "no parser output for sentence"},
		Tag:        "<T>",
	}

	var buf bytes.Buffer
	RenderDetection(&buf, d)
	out := buf.String()

	if !strings.Contains(out, "informal <T> (single-source)") {
		t.Errorf("missing label line:\n%s", out)
	}
	if !strings.Contains(out, "structural: unavailable (no parser output for sentence)") {
		t.Errorf("missing unavailable line:\n%s", out)
	}
}

func TestRenderDetectionJSON(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDetectionJSON(&buf, pipeline.Detection{
		Text:       "<b>Ты</b>",
		Resolution: model.Resolution{Label: model.Informal},
	})
	if err != nil {
		t.Fatalf("RenderDetectionJSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<b>Ты</b>") {
		t.Errorf("HTML must not be escaped: %s", buf.String())
	}

	var decoded pipeline.Detection
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Resolution.Label != model.Informal {
		t.Errorf("expected informal, got %s", decoded.Resolution.Label)
	}
}
