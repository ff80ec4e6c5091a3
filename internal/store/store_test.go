package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/godigest/internal/domain"
	"github.com/jonesrussell/godigest/internal/logger"
	"github.com/jonesrussell/godigest/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "digest.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLastRunTimeZeroOnFreshDatabase(t *testing.T) {
	s := openTestStore(t)

	last, err := s.LastRunTime()

	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

func TestRecordRunAdvancesWatermark(t *testing.T) {
	s := openTestStore(t)
	before := time.Now().UTC().Add(-time.Second)

	require.NoError(t, s.RecordRun(42, 15))

	last, err := s.LastRunTime()
	require.NoError(t, err)
	assert.True(t, last.After(before))
	assert.True(t, last.Before(time.Now().UTC().Add(time.Second)))
}

func TestShownHeadlinesRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordShownHeadlines([]domain.ShownHeadline{
		{Headline: "A big story", Tier: domain.TierMustKnow},
		{Headline: "A smaller story", Tier: domain.TierSignals},
	}))

	shown, err := s.PreviousHeadlines(7)
	require.NoError(t, err)
	require.Len(t, shown, 2)

	headlines := []string{shown[0].Headline, shown[1].Headline}
	assert.Contains(t, headlines, "A big story")
	assert.Contains(t, headlines, "A smaller story")
}

func TestRecordShownHeadlinesEmptyIsNoop(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordShownHeadlines(nil))

	shown, err := s.PreviousHeadlines(7)
	require.NoError(t, err)
	assert.Empty(t, shown)
}

func TestFailureStreaks(t *testing.T) {
	s := openTestStore(t)

	// flaky: fail, succeed, then fail twice -> streak of 2
	require.NoError(t, s.RecordHealth("flaky", false, "HTTP 500"))
	require.NoError(t, s.RecordHealth("flaky", true, ""))
	require.NoError(t, s.RecordHealth("flaky", false, "timeout"))
	require.NoError(t, s.RecordHealth("flaky", false, "timeout"))

	// healthy: latest observation succeeded
	require.NoError(t, s.RecordHealth("healthy", false, "HTTP 500"))
	require.NoError(t, s.RecordHealth("healthy", true, ""))

	streaks, err := s.FailureStreaks()

	require.NoError(t, err)
	assert.Equal(t, 2, streaks["flaky"])
	_, ok := streaks["healthy"]
	assert.False(t, ok, "a recovered source has no streak")
}

func TestDigestRoundTripAndOverwrite(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveDigest("2026-08-24", "<html>v1</html>"))
	require.NoError(t, s.SaveDigest("2026-08-24", "<html>v2</html>"))

	html, err := s.DigestHTML("2026-08-24")
	require.NoError(t, err)
	assert.Equal(t, "<html>v2</html>", html)
}

func TestDigestNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.DigestHTML("1999-01-01")
	assert.ErrorIs(t, err, store.ErrDigestNotFound)

	_, err = s.LatestDigestDate()
	assert.ErrorIs(t, err, store.ErrDigestNotFound)
}

func TestRecentDigestDatesNewestFirst(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveDigest("2026-08-22", "a"))
	require.NoError(t, s.SaveDigest("2026-08-24", "b"))
	require.NoError(t, s.SaveDigest("2026-08-23", "c"))

	dates, err := s.RecentDigestDates(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-24", "2026-08-23"}, dates)

	latest, err := s.LatestDigestDate()
	require.NoError(t, err)
	assert.Equal(t, "2026-08-24", latest)
}
