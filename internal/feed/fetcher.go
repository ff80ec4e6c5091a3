// Package feed fetches, parses, and normalizes the configured RSS feeds.
package feed

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jonesrussell/godigest/internal/domain"
	"github.com/jonesrussell/godigest/internal/logger"
	"github.com/jonesrussell/godigest/internal/retry"
)

const (
	userAgent = "godigest/1.0 (+https://github.com/jonesrussell/godigest)"
	// maxBodySize caps feed downloads at 10 MiB. A feed larger than this
	// is broken or hostile.
	maxBodySize = 10 << 20
)

// Fetcher downloads and parses one source's feed, with classified
// retries for transient failures.
type Fetcher struct {
	client     *http.Client
	parser     *gofeed.Parser
	normalizer *Normalizer
	policy     retry.Policy
	log        logger.Logger
}

// Config tunes a Fetcher.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg Config, log logger.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		parser:     gofeed.NewParser(),
		normalizer: NewNormalizer(),
		policy: retry.Policy{
			MaxAttempts:  cfg.MaxRetries,
			InitialDelay: cfg.RetryDelay,
			Multiplier:   retry.DefaultMultiplier,
			IsRetryable:  isRetryableFetchError,
		},
		log: log,
	}
}

// Fetch downloads and parses src's feed, returning normalized articles.
// Transient failures are retried with exponential backoff; the returned
// error wraps a *FetchError carrying the classification.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source) ([]domain.Article, error) {
	var articles []domain.Article

	err := retry.Do(ctx, f.policy, func() error {
		fetched, fetchErr := f.fetchOnce(ctx, src)
		if fetchErr != nil {
			f.log.Debug("feed fetch attempt failed",
				logger.String("source", src.ID),
				logger.Error(fetchErr))
			return fetchErr
		}
		articles = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	return articles, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, src domain.Source) ([]domain.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, http.NoBody)
	if err != nil {
		return nil, &FetchError{SourceID: src.ID, Type: FetchErrorTypeNetwork, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, newRequestError(src.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{SourceID: src.ID, Type: FetchErrorTypeHTTP, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, newRequestError(src.ID, err)
	}

	parsed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, &FetchError{SourceID: src.ID, Type: FetchErrorTypeParse, Err: err}
	}

	return f.normalizer.Normalize(parsed), nil
}
