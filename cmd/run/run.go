// Package run implements the full-pipeline command.
package run

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/godigest/cmd/common"
)

// Command returns the run command.
func Command() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full digest pipeline",
		Long:  `Fetches feeds, runs the curation agent, renders the digest, and delivers it by email.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			if !dryRun {
				if err := deps.Config.ValidateDelivery(); err != nil {
					return err
				}
			}

			p, err := deps.Pipeline()
			if err != nil {
				return err
			}
			if err := p.Run(cmd.Context(), dryRun); err != nil {
				return fmt.Errorf("pipeline failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render the digest without sending or recording")
	return cmd
}
