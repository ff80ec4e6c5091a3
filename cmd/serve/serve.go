// Package serve implements the digest web server command.
package serve

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/godigest/cmd/common"
	"github.com/jonesrussell/godigest/internal/email"
	"github.com/jonesrussell/godigest/internal/webserver"
)

// Command returns the serve command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the digest archive over HTTP",
		Long:  `Serves the digest archive, the subscription form, and the health and metrics endpoints until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			var resend *email.ResendClient
			if deps.Config.Resend.Enabled() {
				resend = email.NewResendClient(email.ResendClientConfig{
					APIKey: deps.Config.Resend.APIKey,
				}, deps.Logger)
			}

			srv := webserver.New(deps.Config, deps.Store, resend, deps.Logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}
}
