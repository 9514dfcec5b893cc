package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/tvlabel/internal/cache"
	"github.com/ppiankov/tvlabel/internal/detect"
	"github.com/ppiankov/tvlabel/internal/lexicon"
	"github.com/ppiankov/tvlabel/internal/metrics"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/resolve"
	"github.com/ppiankov/tvlabel/internal/tag"
	"github.com/ppiankov/tvlabel/internal/textnorm"
)

// ErrStructuralDisabled marks records labeled with the structural detector
// turned off in configuration.
var ErrStructuralDisabled = errors.New("structural detection disabled")

// Options carries the optional collaborators of a pipeline.
type Options struct {
	Logger  *slog.Logger       // Defaults to slog.Default()
	Cache   cache.Cache        // Memoises lexical verdicts; nil disables
	Metrics *metrics.Collector // nil disables
	RunID   string             // Generated when empty
}

// Pipeline labels sentences: lexical detection, structural detection when
// parser output is present, resolution, side-constraint tag.
type Pipeline struct {
	lexical    *detect.LexicalDetector
	structural *detect.StructuralDetector
	resolver   *resolve.Resolver
	tags       *tag.Set
	cache      cache.Cache
	metrics    *metrics.Collector
	logger     *slog.Logger
	config     *model.Config
	runID      string
}

// NewPipeline creates a pipeline over an already validated lexicon.
func NewPipeline(cfg *model.Config, lex *lexicon.Store, opts Options) (*Pipeline, error) {
	precedence, err := resolve.ParsePrecedence(cfg.Detection.Precedence)
	if err != nil {
		return nil, err
	}

	tags, err := tag.NewSet(cfg.SideConstraint)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	return &Pipeline{
		lexical:    detect.NewLexical(lex),
		structural: detect.NewStructural(lex),
		resolver:   resolve.New(precedence, logger),
		tags:       tags,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		logger:     logger.With("run_id", runID),
		config:     cfg,
		runID:      runID,
	}, nil
}

// RunID identifies this labeling run on every record.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Tags returns the side-constraint mapping in use.
func (p *Pipeline) Tags() *tag.Set {
	return p.tags
}

// Item is one corpus example to label.
type Item struct {
	Index  int
	Source string
	Target string
	Parse  *model.Sentence // Parser output for the detection side, nil when absent
}

// Detection is the outcome of both detectors and the resolver for a sentence.
type Detection struct {
	Text       string           `json:"text"`
	Lexical    model.Verdict    `json:"lexical"`
	Structural *model.Verdict   `json:"structural,omitempty"`
	Resolution model.Resolution `json:"resolution"`
	Tag        string           `json:"tag,omitempty"`
}

// Detect labels one sentence. parse may be nil.
func (p *Pipeline) Detect(text string, parse *model.Sentence) Detection {
	// 1. Token-based detection
	lexical := p.detectLexical(text, parse)

	// 2. Dependency-structure detection
	var (
		structural  *model.Verdict
		unavailable error
	)
	switch {
	case !p.config.Detection.Structural:
		unavailable = ErrStructuralDisabled
	case parse == nil:
		unavailable = detect.ErrMissingParse
	default:
		v, err := p.structural.Detect(*parse)
		if err != nil {
			unavailable = err
		} else {
			structural = &v
		}
	}

	// 3. Resolution
	res := p.resolver.Resolve(lexical, structural, unavailable)
	if res.Conflict {
		p.logger.Warn("label conflict queued for review", "text", text)
	}

	return Detection{
		Text:       text,
		Lexical:    lexical,
		Structural: structural,
		Resolution: res,
		Tag:        p.tags.Token(res.Label),
	}
}

// detectLexical runs the token detector on the parse when present, else on
// tokenized text. Text-only verdicts are memoised.
func (p *Pipeline) detectLexical(text string, parse *model.Sentence) model.Verdict {
	if parse != nil {
		v, _ := p.lexical.Detect(*parse)
		return v
	}

	key := cache.Key("lexical", text)
	if v, ok := cache.GetJSON[model.Verdict](p.cache, key); ok {
		return v
	}

	v, _ := p.lexical.Detect(textnorm.Tokenize(text))
	if err := cache.SetJSON(p.cache, key, v); err != nil {
		p.logger.Debug("lexical verdict not cached", "error", err)
	}
	return v
}

// LabelItem labels one corpus item and fills the record contract. Failures are
// captured in the record; only context cancellation is returned as an error.
func (p *Pipeline) LabelItem(ctx context.Context, item Item) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}

	start := time.Now()
	rec := model.Record{
		Index:  item.Index,
		RunID:  p.runID,
		Source: item.Source,
		Target: item.Target,
	}

	text, err := p.detectionText(item)
	if err != nil {
		rec.Error = err.Error()
		p.logger.Debug("sentence skipped", "index", item.Index, "error", err)
		p.metrics.ObserveRecord(rec, time.Since(start))
		return rec, nil
	}

	d := p.Detect(text, item.Parse)
	rec.Label = d.Resolution.Label
	rec.Tag = d.Tag
	rec.Lexical = d.Lexical
	rec.Structural = d.Structural
	rec.Resolution = d.Resolution

	p.metrics.ObserveRecord(rec, time.Since(start))
	return rec, nil
}

func (p *Pipeline) detectionText(item Item) (string, error) {
	if p.config.Detection.Side == "source" {
		return item.Source, nil
	}
	if item.Target == "" {
		return "", fmt.Errorf("item %d has no target sentence to detect on", item.Index)
	}
	return item.Target, nil
}
