package feed

import (
	"context"

	"github.com/jonesrussell/godigest/internal/domain"
)

// ProbeResult is the outcome of a single-shot source check.
type ProbeResult struct {
	SourceID string `json:"source_id"`
	OK       bool   `json:"ok"`
	Articles int    `json:"articles"`
	Error    string `json:"error,omitempty"`
}

// Probe fetches each source once, without retries, and reports per-source
// reachability. Used by the validate command to check configuration
// without touching the database or the watermark.
func Probe(ctx context.Context, fetcher *Fetcher, srcs []domain.Source) []ProbeResult {
	results := make([]ProbeResult, len(srcs))
	for i, src := range srcs {
		articles, err := fetcher.fetchOnce(ctx, src)
		results[i] = ProbeResult{
			SourceID: src.ID,
			OK:       err == nil,
			Articles: len(articles),
		}
		if err != nil {
			results[i].Error = err.Error()
		}
	}
	return results
}
