// Package schedule implements the in-process cron runner.
package schedule

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/godigest/cmd/common"
	"github.com/jonesrussell/godigest/internal/logger"
)

// defaultSpec runs the pipeline every morning at 07:00.
const defaultSpec = "0 7 * * *"

// Command returns the schedule command.
func Command() *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule",
		Long:  `Runs the full digest pipeline on a cron schedule until interrupted. An alternative to an external crontab for long-lived hosts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c := cron.New()
			if _, err := c.AddFunc(spec, func() {
				deps.Logger.Info("scheduled run starting", logger.String("cron", spec))
				if err := p.Run(ctx, false); err != nil {
					deps.Logger.Error("scheduled run failed", logger.Error(err))
				}
			}); err != nil {
				return fmt.Errorf("invalid cron expression %q: %w", spec, err)
			}

			c.Start()
			deps.Logger.Info("scheduler started", logger.String("cron", spec))

			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", defaultSpec, "cron expression for pipeline runs")
	return cmd
}
