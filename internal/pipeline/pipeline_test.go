package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/godigest/internal/config"
	"github.com/jonesrussell/godigest/internal/email"
	"github.com/jonesrussell/godigest/internal/logger"
	"github.com/jonesrussell/godigest/internal/store"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>F</title>
<item><title>Fresh story</title><link>https://example.com/fresh</link>
<pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate><description>sum</description></item>
</channel></rss>`

const validSelectionsJSON = `{
  "must_know": [
    {"headline": "Fresh story", "summary": "Sum", "why_it_matters": "W",
     "sources": [{"name": "F", "url": "https://example.com/fresh", "bias": "center"}]}
  ],
  "should_know": [],
  "signals": {"americas": [], "europe": [], "asia_pacific": [], "middle_east_africa": [], "tech": []},
  "regional_summary": {"americas": "Quiet day.", "europe": "", "asia_pacific": "", "middle_east_africa": "", "tech": ""}
}`

type stubSender struct {
	sent []email.Message
	n    int
	err  error
}

func (s *stubSender) Send(_ context.Context, msg email.Message) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.sent = append(s.sent, msg)
	return s.n, nil
}

func newTestPipeline(t *testing.T, feedURL string, sender email.Sender) (*Pipeline, *store.Store, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	sourcesPath := filepath.Join(dir, "sources.json")
	sourcesJSON := fmt.Sprintf(`[{"id": "alpha", "name": "Alpha", "url": %q, "bias": "center", "perspective": "x"}]`, feedURL)
	require.NoError(t, os.WriteFile(sourcesPath, []byte(sourcesJSON), 0o600))

	cfg := &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "digest.db")},
		Data:     config.DataConfig{Dir: dir, SourcesFile: sourcesPath},
		Fetch: config.FetchConfig{
			Timeout: time.Second, Concurrency: 2, MaxRetries: 1,
			RetryDelay: time.Millisecond, FailureThreshold: 3, DedupWindowDays: 7,
		},
		Agent:  config.AgentConfig{Command: "true"},
		Digest: config.DigestConfig{Name: "World Digest"},
	}

	st, err := store.Open(cfg.Database.Path, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	p, err := New(cfg, st, sender, logger.NewNop())
	require.NoError(t, err)
	return p, st, cfg
}

func TestFetchStagePersistsAndPreparesInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feedXML)
	}))
	defer srv.Close()

	p, _, cfg := newTestPipeline(t, srv.URL, &stubSender{n: 1})

	kept, err := p.FetchStage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, kept)
	assert.FileExists(t, filepath.Join(cfg.Data.FetchDir(), "alpha.json"))
	assert.FileExists(t, filepath.Join(cfg.Data.AgentInputDir(), "headlines.csv"))
	assert.FileExists(t, filepath.Join(cfg.Data.AgentInputDir(), "sources.csv"))
	assert.FileExists(t, filepath.Join(cfg.Data.AgentInputDir(), "articles_1.csv"))
}

func TestFetchStageRecordsFailureHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p, st, _ := newTestPipeline(t, srv.URL, &stubSender{n: 1})

	kept, err := p.FetchStage(context.Background())

	require.NoError(t, err, "one failing source does not fail the stage")
	assert.Zero(t, kept)

	streaks, err := st.FailureStreaks()
	require.NoError(t, err)
	assert.Equal(t, 1, streaks["alpha"])
}

func TestRenderStageSavesDigest(t *testing.T) {
	p, st, cfg := newTestPipeline(t, "https://unused.example.com", &stubSender{n: 1})
	require.NoError(t, os.MkdirAll(cfg.Data.AgentInputDir(), 0o750))
	require.NoError(t, os.WriteFile(cfg.Data.SelectionsPath(), []byte(validSelectionsJSON), 0o600))

	sel, html, err := p.RenderStage("2026-08-24")

	require.NoError(t, err)
	require.Len(t, sel.MustKnow, 1)
	assert.Contains(t, html, "Fresh story")

	stored, err := st.DigestHTML("2026-08-24")
	require.NoError(t, err)
	assert.Equal(t, html, stored)
}

func TestRenderStageRejectsInvalidSelections(t *testing.T) {
	p, st, cfg := newTestPipeline(t, "https://unused.example.com", &stubSender{n: 1})
	require.NoError(t, os.MkdirAll(cfg.Data.AgentInputDir(), 0o750))
	require.NoError(t, os.WriteFile(cfg.Data.SelectionsPath(), []byte(`{"must_know": []}`), 0o600))

	_, _, err := p.RenderStage("2026-08-24")

	require.Error(t, err)
	_, err = st.DigestHTML("2026-08-24")
	assert.ErrorIs(t, err, store.ErrDigestNotFound, "invalid selections must never be persisted")
}

func TestSendStageRecordsAfterSuccessfulSend(t *testing.T) {
	sender := &stubSender{n: 2}
	p, st, cfg := newTestPipeline(t, "https://unused.example.com", sender)
	require.NoError(t, os.MkdirAll(cfg.Data.AgentInputDir(), 0o750))
	require.NoError(t, os.WriteFile(cfg.Data.SelectionsPath(), []byte(validSelectionsJSON), 0o600))
	require.NoError(t, st.SaveDigest("2026-08-24", "<html>digest</html>"))

	require.NoError(t, p.SendStage(context.Background(), "2026-08-24"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "World Digest – August 24, 2026", sender.sent[0].Subject)
	assert.Equal(t, "<html>digest</html>", sender.sent[0].HTML)

	last, err := st.LastRunTime()
	require.NoError(t, err)
	assert.False(t, last.IsZero())

	shown, err := st.PreviousHeadlines(7)
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.Equal(t, "Fresh story", shown[0].Headline)
}

func TestSendStageFailedSendRecordsNothing(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp down")}
	p, st, cfg := newTestPipeline(t, "https://unused.example.com", sender)
	require.NoError(t, os.MkdirAll(cfg.Data.AgentInputDir(), 0o750))
	require.NoError(t, os.WriteFile(cfg.Data.SelectionsPath(), []byte(validSelectionsJSON), 0o600))
	require.NoError(t, st.SaveDigest("2026-08-24", "<html>digest</html>"))

	require.Error(t, p.SendStage(context.Background(), "2026-08-24"))

	last, err := st.LastRunTime()
	require.NoError(t, err)
	assert.True(t, last.IsZero(), "a failed send must not advance the watermark")

	shown, err := st.PreviousHeadlines(7)
	require.NoError(t, err)
	assert.Empty(t, shown)
}

func TestSendStageMissingDigest(t *testing.T) {
	p, _, _ := newTestPipeline(t, "https://unused.example.com", &stubSender{n: 1})

	err := p.SendStage(context.Background(), "2026-08-24")

	assert.ErrorIs(t, err, store.ErrDigestNotFound)
}
