package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/screen"
)

func loginCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and show the home screen for your account type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := r.app
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" {
				username = app.prompt("Nom d'utilisateur")
			}
			if password == "" {
				password = app.prompt("Mot de passe")
			}

			next, a := screen.Login(cmd.Context(), app.Sessions, model.Credentials{Username: username, Password: password})
			if a != nil {
				return failed(a.Message, nil)
			}
			sess := app.Sessions.Current()
			fmt.Fprintf(app.out, "Connecté en tant que %s (%s) -> %s\n", sess.User.Username, sess.User.Type.Label(), next)
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "username")
	cmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	return cmd
}

func logoutCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.app.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(r.app.out, "Déconnecté.")
			return nil
		},
	}
}

func whoamiCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			sess := r.app.Sessions.Current()
			if sess == nil {
				fmt.Fprintln(r.app.out, "Non connecté.")
				return nil
			}
			home, _ := screen.RouteFor(sess.User.Type)
			fmt.Fprintf(r.app.out, "%s (%s) -> %s\n", sess.User.Username, sess.User.Type.Label(), home)
			return nil
		},
	}
}
