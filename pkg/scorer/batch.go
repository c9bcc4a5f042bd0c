package scorer

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/skillvet/skillvet/pkg/logger"
	"github.com/skillvet/skillvet/pkg/skill"
)

// BatchItem is the outcome for one document in a batch. Exactly one of
// Result and Err is set: a document that could not be scored is reported
// with its error, never silently dropped or zero-scored.
type BatchItem struct {
	Document skill.Document
	Result   *Result
	Err      error
}

// ScoreAll evaluates documents concurrently, with at most maxConcurrent
// outstanding external calls. One document failing never aborts the batch.
// If ctx is cancelled mid-batch, results already obtained are returned and
// the remaining documents are marked with the cancellation error.
func (s *Scorer) ScoreAll(ctx context.Context, docs []skill.Document, maxConcurrent int) []BatchItem {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	items := make([]BatchItem, len(docs))
	sem := semaphore.NewWeighted(int64(maxConcurrent))
	var wg sync.WaitGroup

	for i, doc := range docs {
		items[i].Document = doc

		if err := sem.Acquire(ctx, 1); err != nil {
			items[i].Err = errors.Wrapf(ErrScoringUnavailable, "batch cancelled: %v", err)
			continue
		}

		wg.Add(1)
		go func(i int, doc skill.Document) {
			defer wg.Done()
			defer sem.Release(1)

			result, err := s.Score(ctx, doc)
			if err != nil {
				logger.G(ctx).WithError(err).WithField("skill", doc.Key).Warn("document scoring failed")
				items[i].Err = err
				return
			}
			items[i].Result = result
		}(i, doc)
	}

	wg.Wait()
	return items
}
