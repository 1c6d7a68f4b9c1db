package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitemonmedoc/medoc/internal/alert"
	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/screen"
)

var userHeader = []string{"ID", "UTILISATEUR", "TYPE", "CRÉÉ LE"}

func usersCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Staff accounts (admin only)",
	}
	cmd.AddCommand(
		usersListCmd(r),
		usersGetCmd(r),
		usersAddCmd(r),
		usersEditCmd(r),
		usersDeleteCmd(r),
	)
	return cmd
}

func usersListCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := r.app
			if _, err := app.mount(model.RoleAdmin); err != nil {
				return err
			}
			var role model.Role
			if raw, _ := cmd.Flags().GetString("role"); raw != "" {
				var err error
				if role, err = model.ParseRole(raw); err != nil {
					return err
				}
			}

			admin := screen.NewAdminUsers(app.Client, app.Log)
			if err := admin.Load(cmd.Context()); err != nil {
				return failed(admin.State().Error.Message, err)
			}
			users := admin.State().Users
			if role != "" {
				filtered := users[:0]
				for _, u := range users {
					if u.Type == role {
						filtered = append(filtered, u)
					}
				}
				users = filtered
			}
			return table(app.out, userHeader, userRows(users))
		},
	}
	cmd.Flags().String("role", "", "only show rh, medecin or admin accounts")
	return cmd
}

func usersGetCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := r.app
			if _, err := app.mount(model.RoleAdmin); err != nil {
				return err
			}
			u, err := app.getUser(cmd, args[0])
			if err != nil {
				return err
			}
			return table(app.out, userHeader, userRows([]model.User{*u}))
		},
	}
}

func usersAddCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := r.app
			if _, err := app.mount(model.RoleAdmin); err != nil {
				return err
			}
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			typ, _ := cmd.Flags().GetString("type")

			admin := screen.NewAdminUsers(app.Client, app.Log)
			a, err := admin.Add(cmd.Context(), model.CreateUserRequest{
				Username: username,
				Password: password,
				Type:     model.Role(typ),
			})
			if err != nil {
				return failed(a.Message, err)
			}
			fmt.Fprintln(app.out, a.Message)
			return nil
		},
	}
	cmd.Flags().String("username", "", "login name")
	cmd.Flags().String("password", "", "initial password")
	cmd.Flags().String("type", "", "rh, medecin or admin")
	return cmd
}

func usersEditCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename an account or change its type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := r.app
			if _, err := app.mount(model.RoleAdmin); err != nil {
				return err
			}
			u, err := app.getUser(cmd, args[0])
			if err != nil {
				return err
			}
			req := model.UpdateUserRequest{Username: u.Username, Type: u.Type}
			if cmd.Flags().Changed("username") {
				req.Username, _ = cmd.Flags().GetString("username")
			}
			if cmd.Flags().Changed("type") {
				typ, _ := cmd.Flags().GetString("type")
				req.Type = model.Role(typ)
			}

			admin := screen.NewAdminUsers(app.Client, app.Log)
			a, err := admin.Edit(cmd.Context(), u.ID, req)
			if err != nil {
				return failed(a.Message, err)
			}
			fmt.Fprintln(app.out, a.Message)
			return nil
		},
	}
	cmd.Flags().String("username", "", "new login name")
	cmd.Flags().String("type", "", "rh, medecin or admin")
	return cmd
}

func usersDeleteCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := r.app
			if _, err := app.mount(model.RoleAdmin); err != nil {
				return err
			}
			u, err := app.getUser(cmd, args[0])
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")
			if !app.confirm(screen.DeleteConfirmation(u.Username), yes) {
				fmt.Fprintln(app.out, "Suppression annulée.")
				return nil
			}

			admin := screen.NewAdminUsers(app.Client, app.Log)
			a, err := admin.Delete(cmd.Context(), *u)
			if err != nil {
				return failed(a.Message, err)
			}
			fmt.Fprintln(app.out, a.Message)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *App) getUser(cmd *cobra.Command, rawID string) (*model.User, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	u, err := a.Client.GetUser(cmd.Context(), id)
	if err != nil {
		return nil, failed(alert.Failure(alert.LoadUsers, err).Message, err)
	}
	return u, nil
}
