// Package selection repairs, validates, and decodes the curation agent's
// JSON output. The agent's output drifts in recurring, mechanical ways;
// repair fixes only those known shapes and validation rejects everything
// else.
package selection

import (
	"github.com/jonesrussell/godigest/internal/domain"
)

// Repair normalizes known agent output drift in place and returns the
// repaired document. Every rule is idempotent: repairing already-repaired
// output changes nothing. Unknown structure passes through untouched for
// validation to reject.
func Repair(doc map[string]any) map[string]any {
	for _, tier := range []string{domain.TierMustKnow, domain.TierShouldKnow} {
		if stories, ok := doc[tier].([]any); ok {
			for _, raw := range stories {
				if story, ok := raw.(map[string]any); ok {
					repairStory(story)
				}
			}
		}
	}

	if signals, ok := doc["signals"].(map[string]any); ok {
		for region, raw := range signals {
			if items, ok := raw.([]any); ok {
				signals[region] = repairSignals(items)
			}
		}
	}

	// A single narrative string instead of a per-region mapping: assign
	// the whole text to the default region and leave the rest empty.
	if text, ok := doc["regional_summary"].(string); ok {
		summary := make(map[string]any, len(domain.Regions()))
		for _, region := range domain.Regions() {
			summary[region] = ""
		}
		summary[domain.DefaultRegion] = text
		doc["regional_summary"] = summary
	}

	return doc
}

// repairStory fixes one must-know or should-know entry.
func repairStory(story map[string]any) {
	// "title" instead of "headline".
	if title, ok := story["title"]; ok {
		if _, has := story["headline"]; !has {
			story["headline"] = title
		}
		delete(story, "title")
	}

	// URLs in a parallel "links" array instead of on each source.
	if links, ok := story["links"].([]any); ok {
		if sources, ok := story["sources"].([]any); ok {
			for i, raw := range links {
				if i >= len(sources) {
					break
				}
				url, ok := raw.(string)
				if !ok {
					continue
				}
				if src, ok := sources[i].(map[string]any); ok {
					if _, has := src["url"]; !has {
						src["url"] = url
					}
				}
			}
		}
		delete(story, "links")
	}

	if _, ok := story["why_it_matters"]; !ok {
		story["why_it_matters"] = ""
	}
}

// repairSignals fixes one region's signal list.
func repairSignals(items []any) []any {
	repaired := make([]any, 0, len(items))
	for _, raw := range items {
		switch v := raw.(type) {
		case string:
			// Bare one-liner string instead of a signal object.
			repaired = append(repaired, map[string]any{
				"headline": v,
				"source":   fallbackSource(""),
			})
		case map[string]any:
			if oneLiner, ok := v["one_liner"]; ok {
				if _, has := v["headline"]; !has {
					v["headline"] = oneLiner
				}
				delete(v, "one_liner")
			}
			if link, ok := v["link"]; ok {
				if _, has := v["source"]; !has {
					url, _ := link.(string)
					v["source"] = fallbackSource(url)
				}
				delete(v, "link")
			}
			repaired = append(repaired, v)
		default:
			repaired = append(repaired, raw)
		}
	}
	return repaired
}

// fallbackSource is the attribution used when the agent gave a bare
// string or a lone link with no source object.
func fallbackSource(url string) map[string]any {
	return map[string]any{
		"name": "Unknown",
		"url":  url,
		"bias": string(domain.BiasCenter),
	}
}
