package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amberleaf/teactl/internal/adminapi"
	"github.com/amberleaf/teactl/internal/render"
	"github.com/amberleaf/teactl/internal/session"
)

func newLoginCommand() *cobra.Command {
	var email string
	var password string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for an access token and store the session",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			if email == "" || password == "" {
				return errors.New("login.missing_credentials: --email and --password are required")
			}

			current, loginErr := app.client.Login(command.Context(), email, password)
			if loginErr != nil {
				if errors.Is(loginErr, adminapi.ErrAccountDeactivated) {
					command.PrintErrln("your account has been deactivated; contact an administrator")
				}
				return loginErr
			}

			command.Println(render.Summary("signed in as", fmt.Sprintf("%s <%s>", current.User.Name, current.User.Email)))
			command.Println(render.Summary("role", current.User.Role))
			return nil
		},
	}

	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password")
	return loginCmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the refresh token and clear the stored session",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			// The local session clears even when the API call fails,
			// matching the panel's logout behavior.
			if logoutErr := app.client.Logout(command.Context()); logoutErr != nil {
				command.PrintErrln("logout call failed; local session cleared anyway")
			}
			command.Println("logged out")
			return nil
		},
	}
}

// menuEntries mirror the panel sidebar; whoami renders only the entries
// the session's permission set allows, and admin sees all of them.
var menuEntries = []struct {
	title string
	area  string
}{
	{"Dashboard", areaDashboard},
	{"Order Management", areaOrders},
	{"Customers", areaCustomers},
	{"Tea Management", areaTeas},
	{"Manage Ingredients", areaIngredients},
	{"Discount", areaDiscounts},
	{"Reviews", areaReviews},
	{"Settings", areaSettings},
	{"Manage Users", areaManageUsers},
}

func newWhoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session, token expiry, and reachable menu areas",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			current, sessionErr := app.store.Load(ctx)
			if sessionErr != nil {
				if errors.Is(sessionErr, session.ErrNoSession) {
					command.PrintErrln("not logged in; run 'teactl login'")
					return errNotLoggedIn
				}
				return sessionErr
			}

			command.Println(render.Summary("user", fmt.Sprintf("%s <%s>", current.User.Name, current.User.Email)))
			command.Println(render.Summary("role", current.User.Role))

			if description, describeErr := session.DescribeToken(current.AccessToken); describeErr == nil && !description.ExpiresAt.IsZero() {
				command.Println(render.Summary("token expires", description.ExpiresAt.Local().String()))
			}

			if initErr := app.registry.Initialize(ctx); initErr != nil {
				return initErr
			}
			command.Println()
			command.Println(render.Summary("menu", ""))
			for _, entry := range menuEntries {
				if app.registry.HasPermission(entry.area) {
					command.Println("  " + entry.title)
				}
			}
			return nil
		},
	}
}

func newChangePasswordCommand() *cobra.Command {
	var oldPassword string
	var newPassword string

	changeCmd := &cobra.Command{
		Use:   "change-password",
		Short: "Rotate the current user's password",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaSettings); guardErr != nil {
				return guardErr
			}
			if len(newPassword) < 5 || len(newPassword) > 12 {
				return errors.New("change_password.invalid_length: new password must be between 5 and 12 characters")
			}
			if changeErr := app.client.ChangePassword(ctx, oldPassword, newPassword); changeErr != nil {
				return changeErr
			}
			command.Println("password changed")
			return nil
		},
	}

	changeCmd.Flags().StringVar(&oldPassword, "old", "", "Current password")
	changeCmd.Flags().StringVar(&newPassword, "new", "", "New password")
	return changeCmd
}
