// Package store persists pipeline state in SQLite: run watermarks,
// shown-headline dedup history, source health, and rendered digests.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/jonesrussell/godigest/internal/domain"
	"github.com/jonesrussell/godigest/internal/logger"
)

// ErrDigestNotFound is returned when no digest exists for a date.
var ErrDigestNotFound = errors.New("digest not found")

// healthLookback bounds how much health history the streak computation
// scans. Streaks older than this are stale enough to ignore.
const healthLookback = 30 * 24 * time.Hour

// Store wraps the SQLite database.
type Store struct {
	db  *sqlx.DB
	log logger.Logger
}

// Open opens (creating if necessary) the SQLite database at path and
// runs migrations.
func Open(path string, log logger.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_loc=UTC", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	s.log.Debug("database ready", logger.String("path", path))
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS digest_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_at TIMESTAMP NOT NULL,
	articles_fetched INTEGER NOT NULL DEFAULT 0,
	articles_emailed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS shown_narratives (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	headline TEXT NOT NULL,
	tier TEXT NOT NULL,
	shown_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_shown_narratives_shown_at ON shown_narratives(shown_at);

CREATE TABLE IF NOT EXISTS source_health (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id TEXT NOT NULL,
	success INTEGER NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	recorded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_source_health_source ON source_health(source_id, recorded_at);

CREATE TABLE IF NOT EXISTS digests (
	date TEXT PRIMARY KEY,
	html TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable and answering queries.
func (s *Store) Ping() error {
	var one int
	if err := s.db.Get(&one, `SELECT 1`); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// LastRunTime returns the most recent run timestamp, or the zero time
// when no run has ever completed.
func (s *Store) LastRunTime() (time.Time, error) {
	var runAt time.Time
	err := s.db.Get(&runAt, `SELECT run_at FROM digest_runs ORDER BY run_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query last run: %w", err)
	}
	return runAt.UTC(), nil
}

// RecordRun records a completed run at the current time. Called only
// after delivery succeeds, so a failed send never advances the watermark.
func (s *Store) RecordRun(articlesFetched, articlesEmailed int) error {
	_, err := s.db.Exec(
		`INSERT INTO digest_runs (run_at, articles_fetched, articles_emailed) VALUES (?, ?, ?)`,
		time.Now().UTC(), articlesFetched, articlesEmailed,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// PreviousHeadlines returns headlines shown within the dedup window,
// newest first.
func (s *Store) PreviousHeadlines(windowDays int) ([]domain.ShownHeadline, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)
	var shown []domain.ShownHeadline
	err := s.db.Select(&shown,
		`SELECT headline, tier, shown_at FROM shown_narratives WHERE shown_at >= ? ORDER BY shown_at DESC, id DESC`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("query shown headlines: %w", err)
	}
	return shown, nil
}

// RecordShownHeadlines records every headline surfaced in a digest,
// in one transaction.
func (s *Store) RecordShownHeadlines(headlines []domain.ShownHeadline) error {
	if len(headlines) == 0 {
		return nil
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, h := range headlines {
		if _, err := tx.Exec(
			`INSERT INTO shown_narratives (headline, tier, shown_at) VALUES (?, ?, ?)`,
			h.Headline, h.Tier, now,
		); err != nil {
			return fmt.Errorf("record shown headline: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit shown headlines: %w", err)
	}
	return nil
}

// RecordHealth appends one health observation for a source.
func (s *Store) RecordHealth(sourceID string, success bool, errorMessage string) error {
	_, err := s.db.Exec(
		`INSERT INTO source_health (source_id, success, error_message, recorded_at) VALUES (?, ?, ?, ?)`,
		sourceID, success, errorMessage, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record health for %s: %w", sourceID, err)
	}
	return nil
}

// FailureStreaks returns, per source, the number of consecutive failures
// ending at the most recent observation. A source whose latest fetch
// succeeded has no entry.
func (s *Store) FailureStreaks() (map[string]int, error) {
	cutoff := time.Now().UTC().Add(-healthLookback)

	rows := []struct {
		SourceID string `db:"source_id"`
		Success  bool   `db:"success"`
	}{}
	err := s.db.Select(&rows,
		`SELECT source_id, success FROM source_health WHERE recorded_at >= ? ORDER BY source_id, recorded_at DESC, id DESC`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("query source health: %w", err)
	}

	streaks := make(map[string]int)
	ended := make(map[string]bool)
	for _, r := range rows {
		if ended[r.SourceID] {
			continue
		}
		if r.Success {
			ended[r.SourceID] = true
			continue
		}
		streaks[r.SourceID]++
	}
	return streaks, nil
}

// SaveDigest stores the rendered HTML for a date, replacing any earlier
// render for the same day.
func (s *Store) SaveDigest(date, html string) error {
	_, err := s.db.Exec(
		`INSERT INTO digests (date, html, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET html = excluded.html, created_at = excluded.created_at`,
		date, html, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save digest for %s: %w", date, err)
	}
	return nil
}

// DigestHTML returns the stored digest for a date, or ErrDigestNotFound.
func (s *Store) DigestHTML(date string) (string, error) {
	var html string
	err := s.db.Get(&html, `SELECT html FROM digests WHERE date = ?`, date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrDigestNotFound, date)
	}
	if err != nil {
		return "", fmt.Errorf("query digest for %s: %w", date, err)
	}
	return html, nil
}

// LatestDigestDate returns the most recent stored digest date, or
// ErrDigestNotFound when no digest exists.
func (s *Store) LatestDigestDate() (string, error) {
	var date string
	err := s.db.Get(&date, `SELECT date FROM digests ORDER BY date DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrDigestNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query latest digest: %w", err)
	}
	return date, nil
}

// RecentDigestDates returns up to limit stored digest dates, newest first.
func (s *Store) RecentDigestDates(limit int) ([]string, error) {
	var dates []string
	err := s.db.Select(&dates, `SELECT date FROM digests ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query digest dates: %w", err)
	}
	return dates, nil
}
