// Test program to demonstrate T/V conflict detection
// This shows the lexical and structural detectors disagreeing and the
// resolver abstaining
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/tvlabel/internal/conllu"
	"github.com/ppiankov/tvlabel/internal/lexicon"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/pipeline"
	"github.com/ppiankov/tvlabel/internal/report"
)

// Parser output for sentences with known outcomes. The last one pairs the
// formal pronoun with a singular past-tense copula, so the detectors
// contradict each other.
const parses = `# text = Вы пришли вовремя.
1	Вы	вы	PRON	_	Case=Nom|Number=Plur|Person=2	2	nsubj	_	_
2	пришли	прийти	VERB	_	Mood=Ind|Number=Plur|Tense=Past	0	root	_	_
3	вовремя	вовремя	ADV	_	_	2	advmod	_	_
4	.	.	PUNCT	_	_	2	punct	_	_

# text = Ты пришёл?
1	Ты	ты	PRON	_	Case=Nom|Number=Sing|Person=2	2	nsubj	_	_
2	пришёл	прийти	VERB	_	Gender=Masc|Mood=Ind|Number=Sing|Tense=Past	0	root	_	_
3	?	?	PUNCT	_	_	2	punct	_	_

# text = Садитесь, а ты постой.
1	Садитесь	садиться	VERB	_	Mood=Imp|Number=Plur|Person=2	0	root	_	_
2	,	,	PUNCT	_	_	5	punct	_	_
3	а	а	CCONJ	_	_	5	cc	_	_
4	ты	ты	PRON	_	Case=Nom|Number=Sing|Person=2	5	nsubj	_	_
5	постой	постоять	VERB	_	Mood=Imp|Number=Sing|Person=2	1	conj	_	_
6	.	.	PUNCT	_	_	1	punct	_	_

# text = Вы была права.
1	Вы	вы	PRON	_	Case=Nom|Number=Plur|Person=2	3	nsubj	_	_
2	была	быть	AUX	_	Gender=Fem|Mood=Ind|Number=Sing|Tense=Past	3	cop	_	_
3	права	правый	ADJ	_	Gender=Fem|Number=Sing|Variant=Short	0	root	_	_
4	.	.	PUNCT	_	_	3	punct	_	_
`

func main() {
	fmt.Println("=== T/V Conflict Detection Test ===")
	fmt.Println()

	lex, err := lexicon.Build([]string{"ru", "en"}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lexicon: %v\n", err)
		os.Exit(1)
	}

	sentences, err := conllu.ReadAll(strings.NewReader(parses))
	if err != nil {
		fmt.Fprintf(os.Stderr, "parses: %v\n", err)
		os.Exit(1)
	}

	for _, precedence := range []string{"specific", "abstain"} {
		cfg := model.DefaultConfig()
		cfg.Detection.Precedence = precedence

		p, err := pipeline.NewPipeline(cfg, lex, pipeline.Options{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Precedence: %s\n", precedence)
		fmt.Println(strings.Repeat("-", 60))

		conflicts := 0
		for i := range sentences {
			d := p.Detect(sentences[i].Text, &sentences[i])
			report.RenderDetection(os.Stdout, d)
			fmt.Println()
			if d.Resolution.Conflict {
				conflicts++
			}
		}

		if conflicts > 0 {
			fmt.Printf("  ⚠️  CONFLICTS QUEUED FOR REVIEW: %d\n", conflicts)
		} else {
			fmt.Println("  ✓ No detector conflicts")
		}
		fmt.Println()
	}

	fmt.Println("=== Test Complete ===")
	fmt.Println("\nNote: conflicting sentences are labeled unknown and kept out of sampling.")
}
