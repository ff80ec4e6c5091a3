// Package domain defines the core types shared across the digest pipeline.
package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Bias is the editorial-lean classification of a news source.
type Bias string

// The closed set of bias values.
const (
	BiasLeft        Bias = "left"
	BiasCenterLeft  Bias = "center-left"
	BiasCenter      Bias = "center"
	BiasCenterRight Bias = "center-right"
	BiasRight       Bias = "right"
)

// Valid reports whether b is one of the known bias values.
func (b Bias) Valid() bool {
	switch b {
	case BiasLeft, BiasCenterLeft, BiasCenter, BiasCenterRight, BiasRight:
		return true
	default:
		return false
	}
}

// sourceIDPattern is the allowed shape for source IDs. IDs are used as
// file-path components, so anything outside lowercase alphanumerics and
// underscores (including path separators and dots) is rejected.
var sourceIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Source is one configured RSS feed. Loaded at startup, immutable during a run.
type Source struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Bias        Bias   `json:"bias"`
	Perspective string `json:"perspective"`
}

// Validate checks the source configuration fields.
func (s *Source) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("source id is required")
	}
	if !sourceIDPattern.MatchString(s.ID) {
		return fmt.Errorf("source id %q must be lowercase alphanumeric/underscore", s.ID)
	}
	if s.Name == "" {
		return fmt.Errorf("source %s: name is required", s.ID)
	}
	if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
		return fmt.Errorf("source %s: invalid URL %q", s.ID, s.URL)
	}
	if !s.Bias.Valid() {
		return fmt.Errorf("source %s: invalid bias %q", s.ID, s.Bias)
	}
	return nil
}
