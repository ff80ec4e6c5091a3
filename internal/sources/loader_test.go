package sources_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/godigest/internal/domain"
	"github.com/jonesrussell/godigest/internal/sources"
)

func writeSources(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validSources = `[
  {"id": "al_jazeera", "name": "Al Jazeera", "url": "https://www.aljazeera.com/xml/rss/all.xml", "bias": "center", "perspective": "middle_east"},
  {"id": "the_guardian", "name": "The Guardian", "url": "https://www.theguardian.com/international/rss", "bias": "center-left", "perspective": "western"}
]`

func TestLoadValidFile(t *testing.T) {
	got, err := sources.Load(writeSources(t, validSources))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "al_jazeera", got[0].ID)
	assert.Equal(t, domain.BiasCenterLeft, got[1].Bias)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := sources.Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadRejectsEmptyList(t *testing.T) {
	_, err := sources.Load(writeSources(t, `[]`))
	assert.ErrorIs(t, err, sources.ErrNoSources)
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	_, err := sources.Load(writeSources(t, `{not json`))
	assert.Error(t, err)
}

func TestLoadRejectsPathUnsafeID(t *testing.T) {
	_, err := sources.Load(writeSources(t, `[
  {"id": "../evil", "name": "Evil", "url": "https://example.com", "bias": "center", "perspective": "x"}
]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sources[0]")
}

func TestLoadRejectsBadScheme(t *testing.T) {
	_, err := sources.Load(writeSources(t, `[
  {"id": "bad", "name": "Bad", "url": "ftp://example.com", "bias": "center", "perspective": "x"}
]`))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBias(t *testing.T) {
	_, err := sources.Load(writeSources(t, `[
  {"id": "bad", "name": "Bad", "url": "https://example.com", "bias": "fringe", "perspective": "x"}
]`))
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	_, err := sources.Load(writeSources(t, `[
  {"id": "dup", "name": "One", "url": "https://example.com/1", "bias": "center", "perspective": "x"},
  {"id": "dup", "name": "Two", "url": "https://example.com/2", "bias": "center", "perspective": "x"}
]`))
	assert.ErrorIs(t, err, sources.ErrDuplicateID)
}
