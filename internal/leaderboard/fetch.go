package leaderboard

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxParallelFetch caps concurrent board queries.
const maxParallelFetch = 4

// FetchAll loads the top entries of several sets concurrently. The first
// failure cancels the rest.
func FetchAll(ctx context.Context, board Board, setIDs []string, limit int) (map[string][]Entry, error) {
	var mu sync.Mutex
	result := make(map[string][]Entry, len(setIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetch)
	for _, id := range setIDs {
		g.Go(func() error {
			entries, err := board.Top(gctx, id, limit)
			if err != nil {
				return err
			}
			mu.Lock()
			result[id] = entries
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
