// Package fetch implements the fetch-only command.
package fetch

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/godigest/cmd/common"
	"github.com/jonesrussell/godigest/internal/logger"
)

// Command returns the fetch command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch feeds and prepare agent input",
		Long:  `Fetches and filters every configured feed, persists the articles, and writes the agent input directory. Does not run the agent or send anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			p, err := deps.Pipeline()
			if err != nil {
				return err
			}

			kept, err := p.FetchStage(cmd.Context())
			if err != nil {
				return err
			}
			deps.Logger.Info("fetch complete", logger.Int("articles", kept))
			return nil
		},
	}
}
