// Package validate implements the source configuration checker.
package validate

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/godigest/internal/config"
	"github.com/jonesrussell/godigest/internal/feed"
	"github.com/jonesrussell/godigest/internal/logger"
	"github.com/jonesrussell/godigest/internal/sources"
)

// Command returns the validate command.
func Command() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the source roster and probe each feed",
		Long:  `Loads sources.json, validates every entry, and fetches each feed once to verify it is reachable and parseable. Writes nothing to the database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log, err := logger.New(cfg.Logger)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer log.Sync()

			srcs, err := sources.Load(cfg.Data.SourcesFile)
			if err != nil {
				return err
			}

			fetcher := feed.NewFetcher(feed.Config{Timeout: cfg.Fetch.Timeout}, log)
			results := feed.Probe(cmd.Context(), fetcher, srcs)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			failures := 0
			for _, r := range results {
				if r.OK {
					fmt.Fprintf(cmd.OutOrStdout(), "ok   %-20s %d articles\n", r.SourceID, r.Articles)
					continue
				}
				failures++
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %-20s %s\n", r.SourceID, r.Error)
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d sources failed", failures, len(results))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "all %d sources ok\n", len(results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit probe results as JSON")
	return cmd
}
