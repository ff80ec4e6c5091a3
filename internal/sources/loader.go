// Package sources loads and validates the RSS source configuration.
package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonesrussell/godigest/internal/domain"
)

var (
	// ErrNoSources indicates the configuration file contained no sources.
	ErrNoSources = errors.New("no sources found in configuration")
	// ErrDuplicateID indicates two sources share an id.
	ErrDuplicateID = errors.New("duplicate source id")
)

// Load reads the sources file and validates every entry. Any invalid
// id, URL, or bias is a fatal configuration error: the pipeline never
// runs with a partially valid source list.
func Load(path string) ([]domain.Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var sources []domain.Source
	if unmarshalErr := json.Unmarshal(raw, &sources); unmarshalErr != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, unmarshalErr)
	}

	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	seen := make(map[string]struct{}, len(sources))
	for i := range sources {
		if validateErr := sources[i].Validate(); validateErr != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, validateErr)
		}
		if _, dup := seen[sources[i].ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, sources[i].ID)
		}
		seen[sources[i].ID] = struct{}{}
	}

	return sources, nil
}
