package feed

import (
	"context"
	"sync"

	"github.com/jonesrussell/godigest/internal/domain"
	"github.com/jonesrussell/godigest/internal/logger"
)

// FetchAll fetches every source concurrently, bounded by concurrency.
// Results come back in source order regardless of completion order, so a
// run's output is deterministic for a given set of fetch outcomes. One
// failing source never fails the run; its error travels in its result.
func FetchAll(ctx context.Context, fetcher *Fetcher, srcs []domain.Source, concurrency int, log logger.Logger) []domain.FetchResult {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]domain.FetchResult, len(srcs))
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func(i int, src domain.Source) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			articles, err := fetcher.Fetch(ctx, src)
			results[i] = domain.FetchResult{
				SourceID: src.ID,
				Articles: articles,
				Err:      err,
			}

			if err != nil {
				log.Warn("source fetch failed",
					logger.String("source", src.ID),
					logger.Error(err))
				return
			}
			log.Info("source fetched",
				logger.String("source", src.ID),
				logger.Int("articles", len(articles)))
		}(i, src)
	}
	wg.Wait()

	return results
}
