package selection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/godigest/internal/selection"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, selection.Tokenize("Hello World"))
	assert.Equal(t, []string{"hello", "world"}, selection.Tokenize("Hello, World!"))
	assert.Empty(t, selection.Tokenize(""))
}

func TestMatcherExactMatch(t *testing.T) {
	m := selection.NewMatcher([]string{"Train crash kills 21 in India"})

	_, score := m.FindMostSimilar("Train crash kills 21 in India")

	assert.Greater(t, score, 0.95)
}

func TestMatcherNearMatch(t *testing.T) {
	m := selection.NewMatcher([]string{"Australia shuts dozens of beaches after shark attacks"})

	_, score := m.FindMostSimilar("Australia closes dozens of beaches after shark attacks")

	assert.Greater(t, score, 0.8)
}

func TestMatcherSameEventDifferentNumbers(t *testing.T) {
	m := selection.NewMatcher([]string{"Train crash kills 21 in India"})

	_, score := m.FindMostSimilar("Train crash kills 40 in India")

	assert.Greater(t, score, 0.7)
}

func TestMatcherDifferentTopic(t *testing.T) {
	m := selection.NewMatcher([]string{"Train crash kills 21 in India"})

	_, score := m.FindMostSimilar("Apple announces new iPhone at event")

	assert.Less(t, score, 0.2)
}

func TestMatcherEmptyCorpus(t *testing.T) {
	m := selection.NewMatcher(nil)

	headline, score := m.FindMostSimilar("Any headline")

	assert.Empty(t, headline)
	assert.Zero(t, score)
}

func TestMatcherEmptyQuery(t *testing.T) {
	m := selection.NewMatcher([]string{"Some headline"})

	_, score := m.FindMostSimilar("")

	assert.Zero(t, score)
}

func TestMatcherFindsBestMatch(t *testing.T) {
	m := selection.NewMatcher([]string{
		"France passes social media ban for minors",
		"Germany announces new energy policy",
		"Japan earthquake kills dozens",
	})

	headline, score := m.FindMostSimilar("France approves social media ban for under-15s")

	require.Equal(t, "France passes social media ban for minors", headline)
	assert.Greater(t, score, 0.5)
}
