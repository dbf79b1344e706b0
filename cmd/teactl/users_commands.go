package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amberleaf/teactl/internal/adminapi"
	"github.com/amberleaf/teactl/internal/render"
	"github.com/amberleaf/teactl/internal/session"
)

func newUsersCommand() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Panel user and permission management",
	}
	usersCmd.AddCommand(
		newUsersListCommand(),
		newUsersPermissionsCommand(),
		newUsersAddCommand(),
		newUsersEditCommand(),
		newUsersDeleteCommand(),
		newUsersToggleCommand(),
	)
	return usersCmd
}

func newUsersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List panel users",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaManageUsers); guardErr != nil {
				return guardErr
			}

			users, listErr := app.client.ListUsers(ctx)
			if listErr != nil {
				return listErr
			}

			rows := make([][]string, 0, len(users))
			for _, user := range users {
				state := "inactive"
				if user.IsActive {
					state = "active"
				}
				rows = append(rows, []string{
					strconv.FormatInt(user.ID, 10),
					user.Name,
					user.Email,
					user.Role,
					state,
					strings.Join(user.Permissions, ","),
				})
			}
			command.Print(render.Table([]string{"ID", "NAME", "EMAIL", "ROLE", "STATE", "PERMISSIONS"}, rows))
			return nil
		},
	}
}

func newUsersPermissionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "permissions",
		Short: "Show the permission catalog",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaManageUsers); guardErr != nil {
				return guardErr
			}

			catalog, catalogErr := app.client.ListPermissionCatalog(ctx)
			if catalogErr != nil {
				return catalogErr
			}
			rows := make([][]string, 0, len(catalog))
			for _, entry := range catalog {
				rows = append(rows, []string{entry.Key, entry.Label})
			}
			command.Print(render.Table([]string{"KEY", "LABEL"}, rows))
			return nil
		},
	}
}

// resolvePermissions returns the permission set to save for a user. An
// administrator always carries the full catalog, regardless of what was
// ticked on the form.
func resolvePermissions(app *appContext, command *cobra.Command, role string, requested []string) ([]string, error) {
	if !strings.EqualFold(role, session.RoleAdmin) {
		return requested, nil
	}
	catalog, catalogErr := app.client.ListPermissionCatalog(command.Context())
	if catalogErr != nil {
		return nil, catalogErr
	}
	keys := make([]string, 0, len(catalog))
	for _, entry := range catalog {
		keys = append(keys, entry.Key)
	}
	return keys, nil
}

func newUsersAddCommand() *cobra.Command {
	var request adminapi.SaveUserRequest
	var permissions []string

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a panel user",
		RunE: func(command *cobra.Command, arguments []string) error {
			if request.Name == "" || request.Email == "" || request.Role == "" {
				return fmt.Errorf("users.add: --name, --email and --role are required")
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaManageUsers); guardErr != nil {
				return guardErr
			}

			resolved, resolveErr := resolvePermissions(app, command, request.Role, permissions)
			if resolveErr != nil {
				return resolveErr
			}
			request.Permissions = resolved
			request.IsActive = true

			if createErr := app.client.CreateUser(ctx, request); createErr != nil {
				return createErr
			}
			command.Println("user created; the generated password was mailed to them")
			return nil
		},
	}

	addCmd.Flags().StringVar(&request.Name, "name", "", "Display name")
	addCmd.Flags().StringVar(&request.Email, "email", "", "Login email")
	addCmd.Flags().StringVar(&request.Role, "role", "", "Role: admin, subadmin, manager or support")
	addCmd.Flags().StringSliceVar(&permissions, "permission", nil, "Permission key to grant, repeatable")
	return addCmd
}

func newUsersEditCommand() *cobra.Command {
	var request adminapi.SaveUserRequest
	var permissions []string
	var active bool

	editCmd := &cobra.Command{
		Use:   "edit <user-id>",
		Short: "Replace a panel user's profile and permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			userID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}
			if request.Name == "" || request.Email == "" || request.Role == "" {
				return fmt.Errorf("users.edit: --name, --email and --role are required")
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaManageUsers); guardErr != nil {
				return guardErr
			}

			resolved, resolveErr := resolvePermissions(app, command, request.Role, permissions)
			if resolveErr != nil {
				return resolveErr
			}
			request.Permissions = resolved
			request.IsActive = active

			if updateErr := app.client.UpdateUser(ctx, userID, request); updateErr != nil {
				return updateErr
			}
			command.Println("user updated")
			return nil
		},
	}

	editCmd.Flags().StringVar(&request.Name, "name", "", "Display name")
	editCmd.Flags().StringVar(&request.Email, "email", "", "Login email")
	editCmd.Flags().StringVar(&request.Role, "role", "", "Role: admin, subadmin, manager or support")
	editCmd.Flags().StringSliceVar(&permissions, "permission", nil, "Permission key to grant, repeatable")
	editCmd.Flags().BoolVar(&active, "active", true, "Whether the account stays active")
	return editCmd
}

func newUsersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a panel user",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			userID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaManageUsers); guardErr != nil {
				return guardErr
			}
			if deleteErr := app.client.DeleteUser(ctx, userID); deleteErr != nil {
				return deleteErr
			}
			command.Println("user deleted")
			return nil
		},
	}
}

func newUsersToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <user-id>",
		Short: "Flip a user between active and inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			userID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaManageUsers); guardErr != nil {
				return guardErr
			}

			isActive, toggleErr := app.client.ToggleUserActive(ctx, userID)
			if toggleErr != nil {
				return toggleErr
			}
			if isActive {
				command.Println("user is now active")
			} else {
				command.Println("user is now inactive")
			}
			return nil
		},
	}
}
