package feed

import (
	"time"

	"github.com/jonesrussell/godigest/internal/domain"
)

// FilterByWatermark keeps articles newer than the last run. Articles
// without a parseable timestamp are kept: dropping them would silently
// hide sources with nonstandard feeds, and downstream curation tolerates
// an occasional stale entry. A zero watermark (first run) keeps everything.
func FilterByWatermark(articles []domain.Article, lastRun time.Time) []domain.Article {
	if lastRun.IsZero() {
		return articles
	}

	kept := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if a.PublishedAt == nil || a.PublishedAt.After(lastRun) {
			kept = append(kept, a)
		}
	}
	return kept
}
