package pipeline

import (
	"context"
	"sync"
)

// ForEach runs fn for every ID with at most limit workers in flight.
// Per-item errors are collected and returned keyed by ID; they never stop
// the other items. Cancellation stops launching new work and returns the
// context error after in-flight items finish.
func ForEach(ctx context.Context, ids []string, limit int, fn func(ctx context.Context, id string) error) (map[string]error, error) {
	if limit < 1 {
		limit = 1
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = make(map[string]error)
		sem  = make(chan struct{}, limit)
	)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fn(ctx, id); err != nil {
				mu.Lock()
				errs[id] = err
				mu.Unlock()
			}
		}(id)
	}

	wg.Wait()
	return errs, ctx.Err()
}
