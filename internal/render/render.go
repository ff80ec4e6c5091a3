// Package render turns validated selections into the digest HTML.
// Rendering is pure: the same selections, date, and options always
// produce the same document.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/jonesrussell/godigest/internal/domain"
)

// Options carries branding and footer configuration.
type Options struct {
	// Name is the digest display name in the header.
	Name string
	// FeedbackEmail enables the feedback footer when set.
	FeedbackEmail string
	// PublicBaseURL enables the "view in browser" link when set.
	PublicBaseURL string
}

// Renderer renders digests with a parsed template.
type Renderer struct {
	tmpl *template.Template
	opts Options
}

// New creates a Renderer.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.New("digest").Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

// Render produces the digest HTML for one day. date is YYYY-MM-DD.
func (r *Renderer) Render(sel *domain.Selections, date string) (string, error) {
	view := r.buildView(sel, date)
	var b strings.Builder
	if err := r.tmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return b.String(), nil
}

type digestView struct {
	Name       string
	Date       string
	MustKnow   []storyView
	ShouldKnow []storyView
	Regions    []regionView
	Feedback   template.HTML
	BrowserURL string
}

type storyView struct {
	Headline        string
	Summary         string
	WhyItMatters    string
	Sources         []sourceView
	ReportingVaries []domain.Framing
}

type sourceView struct {
	Name string
	URL  string
	Bias string
	// Linked is false when the URL failed the safe-scheme check; the
	// source then renders as plain text.
	Linked bool
}

type regionView struct {
	Title   string
	Summary template.HTML
	Signals []signalView
}

type signalView struct {
	Headline string
	Source   sourceView
}

func (r *Renderer) buildView(sel *domain.Selections, date string) digestView {
	view := digestView{
		Name:       r.opts.Name,
		Date:       date,
		MustKnow:   buildStories(sel.MustKnow),
		ShouldKnow: buildStories(sel.ShouldKnow),
		Feedback:   feedbackHTML(r.opts.FeedbackEmail),
	}
	if r.opts.PublicBaseURL != "" {
		view.BrowserURL = r.opts.PublicBaseURL + "/" + date
	}

	// Fixed region order; a region with nothing to say disappears.
	for _, region := range domain.Regions() {
		summary := strings.TrimSpace(sel.RegionalSummary[region])
		signals := sel.Signals[region]
		if summary == "" && len(signals) == 0 {
			continue
		}
		rv := regionView{
			Title:   domain.RegionTitle(region),
			Summary: inlineMarkdown(summary),
		}
		for _, sig := range signals {
			rv.Signals = append(rv.Signals, signalView{
				Headline: sig.Headline,
				Source:   buildSource(sig.Source),
			})
		}
		view.Regions = append(view.Regions, rv)
	}
	return view
}

func buildStories(stories []domain.Story) []storyView {
	views := make([]storyView, 0, len(stories))
	for _, s := range stories {
		sv := storyView{
			Headline:        s.Headline,
			Summary:         s.Summary,
			WhyItMatters:    s.WhyItMatters,
			ReportingVaries: s.ReportingVaries,
		}
		for _, src := range s.Sources {
			sv.Sources = append(sv.Sources, buildSource(src))
		}
		views = append(views, sv)
	}
	return views
}

func buildSource(src domain.StorySource) sourceView {
	return sourceView{
		Name:   src.Name,
		URL:    src.URL,
		Bias:   src.Bias,
		Linked: domain.IsSafeURL(src.URL),
	}
}
