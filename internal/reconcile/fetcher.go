package reconcile

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// FetchResult pairs an identifier with its successfully fetched record.
type FetchResult[T any] struct {
	ID    uint64
	Value T
}

// FetchAll resolves every id concurrently and settles the whole batch: a
// failed fetch is logged and excluded without cancelling its siblings. The
// output preserves the input order and contains one entry per id that
// resolved, so len(out) <= len(ids).
func FetchAll[T any](ctx context.Context, log *zap.Logger, kind string, ids []uint64, fetch func(ctx context.Context, id uint64) (T, error)) []FetchResult[T] {
	if len(ids) == 0 {
		return nil
	}

	type slot struct {
		value T
		err   error
	}
	slots := make([]slot, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint64) {
			defer wg.Done()
			slots[i].value, slots[i].err = fetch(ctx, id)
		}(i, id)
	}
	wg.Wait()

	out := make([]FetchResult[T], 0, len(ids))
	for i, id := range ids {
		if err := slots[i].err; err != nil {
			log.Warn("record fetch failed, excluding from view",
				zap.String("kind", kind),
				zap.Uint64("id", id),
				zap.Error(err),
			)
			continue
		}
		out = append(out, FetchResult[T]{ID: id, Value: slots[i].value})
	}
	return out
}
