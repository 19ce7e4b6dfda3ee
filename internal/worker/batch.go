package worker

import (
	"context"

	"github.com/ppiankov/customsgate/internal/model"
)

// Evaluator runs the per-item stages of the pipeline. Implementations may
// only write to the item they are given.
type Evaluator interface {
	Evaluate(ctx context.Context, item *model.LineItem) error
}

// ItemJob evaluates one line item
type ItemJob struct {
	Item      *model.LineItem
	Evaluator Evaluator
}

// Execute executes the item job
func (j *ItemJob) Execute(ctx context.Context) Result {
	return &ItemResult{
		Item:  j.Item,
		Error: j.Evaluator.Evaluate(ctx, j.Item),
	}
}

// ItemResult represents the result of an item job. Error carries a
// recoverable degradation; the item is still usable.
type ItemResult struct {
	Item  *model.LineItem
	Error error
}

// GetError returns the error from the item result
func (r *ItemResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates line items concurrently
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(evaluator Evaluator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
	}
}

// ProcessItems evaluates every item and returns the results in input
// order. It fails only when ctx is cancelled before all items ran.
func (b *BatchProcessor) ProcessItems(ctx context.Context, items []*model.LineItem) ([]*ItemResult, error) {
	if len(items) == 0 {
		return []*ItemResult{}, nil
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, item := range items {
		pool.Submit(&ItemJob{Item: item, Evaluator: b.evaluator})
	}

	results := pool.Wait()

	out := make([]*ItemResult, len(results))
	for i, result := range results {
		if result == nil {
			return nil, ctx.Err()
		}
		out[i] = result.(*ItemResult)
	}

	return out, ctx.Err()
}
