// Package send implements delivery of an archived digest.
package send

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/godigest/cmd/common"
)

// Command returns the send command.
func Command() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Deliver a previously rendered digest",
		Long:  `Sends an archived digest by email and records the run. Defaults to today's digest.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			if err := deps.Config.ValidateDelivery(); err != nil {
				return err
			}

			p, err := deps.Pipeline()
			if err != nil {
				return err
			}
			return p.SendStage(cmd.Context(), date)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "digest date (YYYY-MM-DD, default today)")
	return cmd
}
