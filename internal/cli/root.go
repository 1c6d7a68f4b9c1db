package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/vitemonmedoc/medoc/config"
)

type root struct {
	streams    Streams
	cfg        *config.Config
	configPath string
	app        *App
}

type Option func(*root)

// WithConfig skips config file discovery.
func WithConfig(cfg *config.Config) Option {
	return func(r *root) { r.cfg = cfg }
}

// Execute runs the command line args and releases whatever the command opened.
func Execute(ctx context.Context, streams Streams, args []string, opts ...Option) error {
	r := &root{streams: streams}
	for _, opt := range opts {
		opt(r)
	}
	cmd := r.command()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if r.app != nil {
		err = errors.Join(err, r.app.Close())
	}
	return err
}

func (r *root) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "medoc",
		Short:         "Vite Mon Medoc clinic client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := r.loadConfig()
			if err != nil {
				return err
			}
			app, err := NewApp(cmd.Context(), cfg, r.streams)
			if err != nil {
				return err
			}
			r.app = app
			return nil
		},
	}
	cmd.SetIn(r.streams.In)
	cmd.SetOut(r.streams.Out)
	cmd.SetErr(r.streams.Err)
	cmd.PersistentFlags().StringVar(&r.configPath, "config", "", "path to medoc.yaml")

	cmd.AddCommand(loginCmd(r), logoutCmd(r), whoamiCmd(r))
	cmd.AddCommand(patientsCmd(r))
	cmd.AddCommand(usersCmd(r))
	cmd.AddCommand(notificationsCmd(r))
	return cmd
}

func (r *root) loadConfig() (*config.Config, error) {
	if r.cfg != nil {
		return r.cfg, nil
	}
	if r.configPath != "" {
		return config.LoadConfigFile(r.configPath)
	}
	return config.LoadConfig()
}
