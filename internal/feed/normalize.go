package feed

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/jonesrussell/godigest/internal/domain"
)

// maxSummaryRunes caps per-article summaries before they become agent input.
const maxSummaryRunes = 500

// Normalizer turns parsed feed items into clean Articles.
type Normalizer struct {
	sanitizer *bluemonday.Policy
}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Normalize converts a parsed feed into articles. Items without both a
// title and a link carry no useful signal and are dropped.
func (n *Normalizer) Normalize(parsed *gofeed.Feed) []domain.Article {
	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		article := domain.Article{
			Title:   title,
			URL:     link,
			Summary: n.cleanSummary(item.Description),
		}

		// Atom feeds may carry only an updated timestamp.
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published != nil {
			utc := published.UTC()
			article.PublishedAt = &utc
			article.Published = utc.Format(time.RFC3339)
		} else {
			// Keep the raw string so the agent still sees recency hints
			// from feeds with nonstandard timestamps.
			raw := strings.TrimSpace(item.Published)
			if raw == "" {
				raw = strings.TrimSpace(item.Updated)
			}
			article.Published = raw
		}

		articles = append(articles, article)
	}
	return articles
}

// cleanSummary strips markup, unescapes entities, collapses whitespace,
// and truncates to the summary cap.
func (n *Normalizer) cleanSummary(raw string) string {
	text := n.sanitizer.Sanitize(raw)
	text = html.UnescapeString(text)
	text = strings.Join(strings.Fields(text), " ")
	return truncateRunes(text, maxSummaryRunes)
}

// truncateRunes shortens s to at most limit runes, never splitting a
// multi-byte character.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
