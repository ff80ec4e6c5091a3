package render

import (
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/jonesrussell/godigest/internal/domain"
)

// inlineLinkPattern matches markdown inline links [text](url).
var inlineLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)

// inlineMarkdown converts markdown inline links in agent prose into
// anchors. Everything is HTML-escaped; a link whose URL fails the
// safe-scheme check is reduced to its plain text.
func inlineMarkdown(text string) template.HTML {
	var b strings.Builder
	last := 0
	for _, m := range inlineLinkPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:m[0]]))

		linkText := text[m[2]:m[3]]
		url := text[m[4]:m[5]]
		if domain.IsSafeURL(url) {
			b.WriteString(`<a href="`)
			b.WriteString(html.EscapeString(url))
			b.WriteString(`">`)
			b.WriteString(html.EscapeString(linkText))
			b.WriteString(`</a>`)
		} else {
			b.WriteString(html.EscapeString(linkText))
		}
		last = m[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return template.HTML(b.String())
}

// feedbackHTML builds the one-tap feedback footer. The address is
// escaped so a hostile configured value cannot inject markup.
func feedbackHTML(email string) template.HTML {
	if email == "" {
		return ""
	}
	escaped := html.EscapeString(email)
	var b strings.Builder
	b.WriteString(`<p class="feedback">How was today's digest? `)
	for i, label := range []string{"Love it", "Good", "So so"} {
		if i > 0 {
			b.WriteString(" &middot; ")
		}
		b.WriteString(`<a href="mailto:` + escaped + `?subject=Feedback: ` + label + `">` + label + `</a>`)
	}
	b.WriteString(`</p>`)
	return template.HTML(b.String())
}
