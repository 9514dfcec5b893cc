package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/pipeline"
)

// RenderDetection writes one detection in a readable block
func RenderDetection(w io.Writer, d pipeline.Detection) {
	fmt.Fprintf(w, "%s\n", d.Text)

	label := d.Resolution.Label.String()
	if d.Tag != "" {
		label += " " + d.Tag
	}
	fmt.Fprintf(w, "  label:      %s (%s)\n", label, d.Resolution.Rule)
	if d.Resolution.Conflict {
		fmt.Fprintln(w, "  ⚠ detectors contradict each other")
	}

	writeVerdict(w, "lexical", &d.Lexical)
	if d.Structural != nil {
		writeVerdict(w, "structural", d.Structural)
	} else if d.Resolution.Unavailable != "" {
		fmt.Fprintf(w, "  structural: unavailable (%s)\n", d.Resolution.Unavailable)
	}
}

// RenderDetectionJSON writes one detection as a single JSON line
func RenderDetectionJSON(w io.Writer, d pipeline.Detection) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

func writeVerdict(w io.Writer, name string, v *model.Verdict) {
	fmt.Fprintf(w, "  %-11s %s (%s)", name+":", v.Label, v.Rule)
	if len(v.Cues) > 0 {
		cues := make([]string, len(v.Cues))
		for i, c := range v.Cues {
			cues[i] = fmt.Sprintf("%s[%s:%s]", c.Form, c.Category, c.Class)
		}
		fmt.Fprintf(w, "  %s", strings.Join(cues, " "))
	}
	if len(v.Excluded) > 0 {
		fmt.Fprintf(w, "  excluded tokens %v", v.Excluded)
	}
	fmt.Fprintln(w)
}
