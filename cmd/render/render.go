// Package render implements the render-only command.
package render

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/godigest/cmd/common"
	"github.com/jonesrussell/godigest/internal/logger"
)

// Command returns the render command.
func Command() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render and archive the digest from existing agent output",
		Long:  `Reads selections.json, repairs and validates it, renders the digest HTML, and saves it to the archive. Nothing is sent.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if date == "" {
				date = time.Now().UTC().Format("2006-01-02")
			}
			if _, err := time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
			}

			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			p, err := deps.Pipeline()
			if err != nil {
				return err
			}

			if _, _, err := p.RenderStage(date); err != nil {
				return err
			}
			deps.Logger.Info("digest archived", logger.String("date", date))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "digest date (YYYY-MM-DD, default today)")
	return cmd
}
