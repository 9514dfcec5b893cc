package worker

import (
	"context"
	"sort"

	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/pipeline"
)

// Labeler defines the interface for labeling one corpus item
type Labeler interface {
	LabelItem(ctx context.Context, item pipeline.Item) (model.Record, error)
}

// LabelJob represents the labeling of one sentence
type LabelJob struct {
	Item    pipeline.Item
	Labeler Labeler
}

// Execute executes the label job
func (j *LabelJob) Execute(ctx context.Context) Result {
	rec, err := j.Labeler.LabelItem(ctx, j.Item)
	return &LabelResult{
		Index:  j.Item.Index,
		Record: rec,
		Error:  err,
	}
}

// LabelResult represents the result of a label job
type LabelResult struct {
	Index  int
	Record model.Record
	Error  error
}

// GetError returns the error from the label result
func (r *LabelResult) GetError() error {
	return r.Error
}

// BatchProcessor labels corpus items concurrently
type BatchProcessor struct {
	labeler     Labeler
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(labeler Labeler, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		labeler:     labeler,
		concurrency: concurrency,
	}
}

// ProcessItems labels every item and returns the results in item index
// order. onDone, when set, is called from the collecting goroutine after each
// result. A cancelled context stops submission; the results gathered so far
// are returned with ctx.Err().
func (b *BatchProcessor) ProcessItems(ctx context.Context, items []pipeline.Item, onDone func(*LabelResult)) ([]*LabelResult, error) {
	if len(items) == 0 {
		return []*LabelResult{}, nil
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Submit from a separate goroutine so results are drained while queueing
	go func() {
		defer pool.Close()
		for _, item := range items {
			if !pool.Submit(&LabelJob{Item: item, Labeler: b.labeler}) {
				return
			}
		}
	}()

	results := make([]*LabelResult, 0, len(items))
	for r := range pool.Results() {
		lr := r.(*LabelResult)
		results = append(results, lr)
		if onDone != nil {
			onDone(lr)
		}
	}

	// Reattach outputs to their sentence order
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	return results, ctx.Err()
}
