package domain

import "time"

// Article is a single feed entry after normalization. Ephemeral: it exists
// for one fetch cycle and is discarded once turned into agent input.
type Article struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	// Published is the raw timestamp string from the feed, or an RFC3339
	// rendering of PublishedAt when the feed provided a parseable time.
	Published string `json:"published,omitempty"`
	// PublishedAt is the canonical UTC instant, nil when the feed's
	// timestamp could not be parsed.
	PublishedAt *time.Time `json:"-"`
	Summary     string     `json:"summary"`
}

// FetchResult is the outcome of fetching one source during a run.
type FetchResult struct {
	SourceID string
	Articles []Article
	Err      error
}

// HealthRecord is one append-only health observation for a source.
type HealthRecord struct {
	SourceID     string    `db:"source_id"`
	Success      bool      `db:"success"`
	ErrorMessage string    `db:"error_message"`
	RecordedAt   time.Time `db:"recorded_at"`
}

// DigestRun is one completed pipeline run. The most recent RunAt is the
// watermark for "new since last run" filtering.
type DigestRun struct {
	ID              int64     `db:"id"`
	RunAt           time.Time `db:"run_at"`
	ArticlesFetched int       `db:"articles_fetched"`
	ArticlesEmailed int       `db:"articles_emailed"`
}

// ShownHeadline is one headline surfaced in a past digest, kept for
// dedup over a rolling window.
type ShownHeadline struct {
	Headline string    `db:"headline"`
	Tier     string    `db:"tier"`
	ShownAt  time.Time `db:"shown_at"`
}
