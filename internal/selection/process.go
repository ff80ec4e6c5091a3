package selection

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonesrussell/godigest/internal/domain"
)

// ErrInvalid is returned when the agent's output fails validation after
// repair. The wrapped message carries the capped error report.
var ErrInvalid = errors.New("invalid selections")

// Result is the outcome of processing the agent's raw output.
type Result struct {
	Selections *domain.Selections
	// Warnings are soft-check findings, safe to log and continue.
	Warnings []string
}

// Process parses, repairs, validates, and decodes the agent's raw JSON
// output. On validation failure the document must not be rendered,
// persisted, or delivered.
func Process(raw []byte) (*Result, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse selections: %w", err)
	}

	doc = Repair(doc)

	if errs := Validate(doc); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, FormatErrors(errs))
	}

	selections, err := decode(doc)
	if err != nil {
		return nil, err
	}

	return &Result{
		Selections: selections,
		Warnings:   Warnings(doc),
	}, nil
}

// decode converts a validated document into the typed domain form.
func decode(doc map[string]any) (*domain.Selections, error) {
	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode selections: %w", err)
	}
	var selections domain.Selections
	if err := json.Unmarshal(buf, &selections); err != nil {
		return nil, fmt.Errorf("decode selections: %w", err)
	}
	return &selections, nil
}
