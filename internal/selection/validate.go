package selection

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/godigest/internal/domain"
)

// maxReportedErrors caps the rendered validation report. The full error
// count still appears in the trailer.
const maxReportedErrors = 10

// minMustKnow is the expected floor for the top tier. Falling short is
// a warning, not an error: a thin news day is not a broken document.
const minMustKnow = 3

// Validate checks a repaired document against the selections contract
// and returns every violation as a "path: problem" string. An empty
// slice means the document is valid.
func Validate(doc map[string]any) []string {
	var errs []string

	for _, tier := range []string{domain.TierMustKnow, domain.TierShouldKnow} {
		raw, ok := doc[tier]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: required field missing", tier))
			continue
		}
		stories, ok := raw.([]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: expected array, got %s", tier, typeName(raw)))
			continue
		}
		for i, item := range stories {
			errs = append(errs, validateStory(fmt.Sprintf("%s[%d]", tier, i), item)...)
		}
	}

	errs = append(errs, validateSignals(doc)...)
	errs = append(errs, validateRegionalSummary(doc)...)

	return errs
}

func validateStory(path string, raw any) []string {
	story, ok := raw.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("%s: expected object, got %s", path, typeName(raw))}
	}

	var errs []string
	errs = append(errs, requireString(path, story, "headline")...)
	errs = append(errs, requireString(path, story, "summary")...)

	if _, ok := story["why_it_matters"].(string); !ok {
		errs = append(errs, fmt.Sprintf("%s.why_it_matters: expected string, got %s", path, typeName(story["why_it_matters"])))
	}

	sources, ok := story["sources"].([]any)
	if !ok {
		errs = append(errs, fmt.Sprintf("%s.sources: expected array, got %s", path, typeName(story["sources"])))
		return errs
	}
	if len(sources) == 0 {
		errs = append(errs, fmt.Sprintf("%s.sources: must have at least 1 source", path))
	}
	for i, rawSrc := range sources {
		errs = append(errs, validateSource(fmt.Sprintf("%s.sources[%d]", path, i), rawSrc)...)
	}
	return errs
}

func validateSource(path string, raw any) []string {
	src, ok := raw.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("%s: expected object, got %s", path, typeName(raw))}
	}

	var errs []string
	errs = append(errs, requireString(path, src, "name")...)

	url, ok := src["url"].(string)
	switch {
	case !ok:
		errs = append(errs, fmt.Sprintf("%s.url: expected string, got %s", path, typeName(src["url"])))
	case url != "" && !domain.IsSafeURL(url):
		errs = append(errs, fmt.Sprintf("%s.url: unsafe URL scheme %q", path, url))
	}

	if bias, ok := src["bias"].(string); ok && bias != "" && !domain.Bias(bias).Valid() {
		errs = append(errs, fmt.Sprintf("%s.bias: unknown bias %q", path, bias))
	}
	return errs
}

func validateSignals(doc map[string]any) []string {
	raw, ok := doc["signals"]
	if !ok {
		return []string{"signals: required field missing"}
	}
	signals, ok := raw.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("signals: expected object, got %s", typeName(raw))}
	}

	var errs []string
	for _, region := range domain.Regions() {
		rawItems, ok := signals[region]
		if !ok {
			errs = append(errs, fmt.Sprintf("signals.%s: required field missing", region))
			continue
		}
		items, ok := rawItems.([]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("signals.%s: expected array, got %s", region, typeName(rawItems)))
			continue
		}
		for i, item := range items {
			path := fmt.Sprintf("signals.%s[%d]", region, i)
			sig, ok := item.(map[string]any)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s: expected object, got %s", path, typeName(item)))
				continue
			}
			errs = append(errs, requireString(path, sig, "headline")...)
			if _, ok := sig["source"].(map[string]any); !ok {
				errs = append(errs, fmt.Sprintf("%s.source: expected object, got %s", path, typeName(sig["source"])))
			}
		}
	}
	for region := range signals {
		if !knownRegion(region) {
			errs = append(errs, fmt.Sprintf("signals.%s: unknown region", region))
		}
	}
	return errs
}

func validateRegionalSummary(doc map[string]any) []string {
	raw, ok := doc["regional_summary"]
	if !ok {
		return []string{"regional_summary: required field missing"}
	}
	summary, ok := raw.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("regional_summary: expected object, got %s", typeName(raw))}
	}

	var errs []string
	for _, region := range domain.Regions() {
		rawText, ok := summary[region]
		if !ok {
			errs = append(errs, fmt.Sprintf("regional_summary.%s: required field missing", region))
			continue
		}
		if _, ok := rawText.(string); !ok {
			errs = append(errs, fmt.Sprintf("regional_summary.%s: expected string, got %s", region, typeName(rawText)))
		}
	}
	for region := range summary {
		if !knownRegion(region) {
			errs = append(errs, fmt.Sprintf("regional_summary.%s: unknown region", region))
		}
	}
	return errs
}

// Warnings returns soft-check findings that do not block the run.
func Warnings(doc map[string]any) []string {
	var warnings []string
	if stories, ok := doc[domain.TierMustKnow].([]any); ok && len(stories) < minMustKnow {
		warnings = append(warnings, fmt.Sprintf("must_know has %d stories, expected at least %d", len(stories), minMustKnow))
	}
	return warnings
}

// FormatErrors renders a validation report capped at maxReportedErrors,
// with a trailer showing how many were suppressed.
func FormatErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	shown := errs
	if len(shown) > maxReportedErrors {
		shown = shown[:maxReportedErrors]
	}
	var b strings.Builder
	b.WriteString("selections validation failed:\n")
	for _, e := range shown {
		b.WriteString("  - ")
		b.WriteString(e)
		b.WriteString("\n")
	}
	if extra := len(errs) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "  ... and %d more errors\n", extra)
	}
	return strings.TrimRight(b.String(), "\n")
}

func requireString(path string, obj map[string]any, field string) []string {
	raw, ok := obj[field]
	if !ok {
		return []string{fmt.Sprintf("%s.%s: required field missing", path, field)}
	}
	s, ok := raw.(string)
	if !ok {
		return []string{fmt.Sprintf("%s.%s: expected string, got %s", path, field, typeName(raw))}
	}
	if strings.TrimSpace(s) == "" {
		return []string{fmt.Sprintf("%s.%s: must not be empty", path, field)}
	}
	return nil
}

func knownRegion(region string) bool {
	for _, r := range domain.Regions() {
		if r == region {
			return true
		}
	}
	return false
}

// typeName names a decoded JSON value's type for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
