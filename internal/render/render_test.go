package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/godigest/internal/domain"
)

func sampleSelections() *domain.Selections {
	return &domain.Selections{
		MustKnow: []domain.Story{
			{
				Headline:     "Ceasefire talks resume",
				Summary:      "Negotiators returned after a pause.",
				WhyItMatters: "First direct contact in weeks.",
				Sources: []domain.StorySource{
					{Name: "Al Jazeera", URL: "https://aljazeera.com/1", Bias: "center"},
					{Name: "Reuters", URL: "https://reuters.com/2", Bias: "center"},
				},
				ReportingVaries: []domain.Framing{
					{Source: "Outlet A", Angle: "frames it as a breakthrough", Bias: "center-left"},
				},
			},
		},
		Signals: map[string][]domain.Signal{
			domain.RegionEurope: {
				{Headline: "EU fines platform", Source: domain.StorySource{Name: "FT", URL: "https://ft.com/3", Bias: "center"}},
			},
		},
		RegionalSummary: map[string]string{
			domain.RegionEurope: "Markets steadied; see [the analysis](https://example.com/a).",
		},
	}
}

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	r, err := New(opts)
	require.NoError(t, err)
	return r
}

func TestRenderFullDigest(t *testing.T) {
	r := newTestRenderer(t, Options{
		Name:          "World Digest",
		FeedbackEmail: "feedback@example.com",
		PublicBaseURL: "https://digest.example.com",
	})

	html, err := r.Render(sampleSelections(), "2026-08-24")

	require.NoError(t, err)
	assert.Contains(t, html, "<h1>World Digest</h1>")
	assert.Contains(t, html, "2026-08-24")
	assert.Contains(t, html, "Must know")
	assert.Contains(t, html, "Ceasefire talks resume")
	assert.Contains(t, html, "Why it matters: First direct contact in weeks.")
	assert.Contains(t, html, `<a href="https://aljazeera.com/1">Al Jazeera</a>`)
	assert.Contains(t, html, "frames it as a breakthrough")
	assert.Contains(t, html, "EU fines platform")
	assert.Contains(t, html, `<a href="https://example.com/a">the analysis</a>`)
	assert.Contains(t, html, `href="https://digest.example.com/2026-08-24"`)
	assert.Contains(t, html, "View in browser")
}

func TestRenderIsDeterministic(t *testing.T) {
	r := newTestRenderer(t, Options{Name: "World Digest"})

	a, err := r.Render(sampleSelections(), "2026-08-24")
	require.NoError(t, err)
	b, err := r.Render(sampleSelections(), "2026-08-24")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRenderElidesEmptyRegions(t *testing.T) {
	r := newTestRenderer(t, Options{Name: "World Digest"})

	html, err := r.Render(sampleSelections(), "2026-08-24")

	require.NoError(t, err)
	assert.Contains(t, html, "Europe")
	assert.NotContains(t, html, "Asia-Pacific")
	assert.NotContains(t, html, "Middle East &amp; Africa")
}

func TestRenderRegionOrderIsFixed(t *testing.T) {
	sel := &domain.Selections{
		RegionalSummary: map[string]string{
			domain.RegionTech:     "Tech moved.",
			domain.RegionAmericas: "Markets moved.",
		},
	}
	r := newTestRenderer(t, Options{Name: "World Digest"})

	html, err := r.Render(sel, "2026-08-24")

	require.NoError(t, err)
	assert.Less(t, strings.Index(html, "Markets moved."), strings.Index(html, "Tech moved."))
}

func TestRenderEscapesAgentText(t *testing.T) {
	sel := &domain.Selections{
		MustKnow: []domain.Story{
			{
				Headline: `<script>alert("x")</script>`,
				Summary:  "safe",
				Sources:  []domain.StorySource{{Name: "S", URL: "https://example.com"}},
			},
		},
	}
	r := newTestRenderer(t, Options{Name: "World Digest"})

	html, err := r.Render(sel, "2026-08-24")

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderUnsafeSourceURLFallsBackToPlainText(t *testing.T) {
	sel := &domain.Selections{
		MustKnow: []domain.Story{
			{
				Headline: "Story",
				Summary:  "Sum",
				Sources:  []domain.StorySource{{Name: "Shady", URL: "javascript:alert(1)"}},
			},
		},
	}
	r := newTestRenderer(t, Options{Name: "World Digest"})

	html, err := r.Render(sel, "2026-08-24")

	require.NoError(t, err)
	assert.Contains(t, html, "Shady")
	assert.NotContains(t, html, "javascript:alert")
}

func TestRenderOmitsFooterLinksWhenUnconfigured(t *testing.T) {
	r := newTestRenderer(t, Options{Name: "World Digest"})

	html, err := r.Render(sampleSelections(), "2026-08-24")

	require.NoError(t, err)
	assert.NotContains(t, html, "View in browser")
	assert.NotContains(t, html, "mailto:")
}

func TestInlineMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"safe link",
			"see [analysis](https://example.com/a) today",
			`see <a href="https://example.com/a">analysis</a> today`,
		},
		{
			"unsafe link reduced to text",
			"click [here](javascript:evil)",
			"click here",
		},
		{
			"plain text escaped",
			"a < b & c",
			"a &lt; b &amp; c",
		},
		{
			"multiple links",
			"[a](https://x.com/1) and [b](https://x.com/2)",
			`<a href="https://x.com/1">a</a> and <a href="https://x.com/2">b</a>`,
		},
		{
			"no links",
			"nothing here",
			"nothing here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(inlineMarkdown(tt.in)))
		})
	}
}

func TestFeedbackHTMLMailtoLinks(t *testing.T) {
	got := string(feedbackHTML("test@example.com"))

	assert.Contains(t, got, `href="mailto:test@example.com?subject=Feedback: Love it"`)
	assert.Contains(t, got, `href="mailto:test@example.com?subject=Feedback: Good"`)
	assert.Contains(t, got, `href="mailto:test@example.com?subject=Feedback: So so"`)
}

func TestFeedbackHTMLEscapesAddress(t *testing.T) {
	got := string(feedbackHTML("<script>@evil.com"))

	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "&lt;script&gt;")
}

func TestFeedbackHTMLEmptyAddress(t *testing.T) {
	assert.Empty(t, string(feedbackHTML("")))
}
