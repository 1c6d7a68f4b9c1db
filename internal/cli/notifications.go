package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/vitemonmedoc/medoc/internal/notification"
)

func notificationsCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Appointment notifications",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Print appointment notifications published by other terminals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := r.app
			broker, err := app.Broker(cmd.Context())
			if err != nil {
				return err
			}
			err = notification.Watch(cmd.Context(), broker, app.Config.Notification.RedisChannel,
				notification.NewLocalSender(app.out), app.Log)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	})
	return cmd
}
