// Package testemail implements the delivery configuration probe.
package testemail

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/godigest/cmd/common"
	"github.com/jonesrussell/godigest/internal/email"
	"github.com/jonesrussell/godigest/internal/logger"
)

// Command returns the test-email command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "test-email",
		Short: "Send a test email to verify delivery configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := deps.Config.ValidateDelivery(); err != nil {
				return err
			}

			sender := email.NewSender(deps.Config, deps.Logger)
			msg := email.TestMessage(deps.Config.Digest.Name)

			sent, err := sender.Send(cmd.Context(), msg)
			if err != nil {
				return fmt.Errorf("test email failed: %w", err)
			}
			deps.Logger.Info("test email sent", logger.Int("recipients", sent))
			return nil
		},
	}
}
