package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	page     int
	pageSize int
	admin    bool
	yes      bool
)

// usersCmd groups the organization administration commands
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage the users of your organization",
	Long: `Manage the users of your organization.

Available subcommands:
  list           - List users page by page
  add            - Add a user; the server generates the password
  get            - Show one user
  reset-password - Generate a new password for a user
  set-admin      - Grant or revoke the admin flag
  delete         - Remove a user

All but list and get require an admin session.`,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users of the organization",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Add a user and print the generated password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersAdd,
}

var usersGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersGet,
}

var usersResetPasswordCmd = &cobra.Command{
	Use:   "reset-password ID",
	Short: "Generate a new password for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersResetPassword,
}

var usersSetAdminCmd = &cobra.Command{
	Use:   "set-admin ID true|false",
	Short: "Grant or revoke the admin flag",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsersSetAdmin,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a user from the organization",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	usersListCmd.Flags().IntVar(&page, "page", 0, "page number, starting at 0")
	usersListCmd.Flags().IntVar(&pageSize, "size", 20, "users per page")
	usersAddCmd.Flags().BoolVar(&admin, "admin", false, "make the new user an admin")
	usersDeleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersGetCmd)
	usersCmd.AddCommand(usersResetPasswordCmd, usersSetAdminCmd, usersDeleteCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	if err := checkPage(); err != nil {
		return err
	}
	users, err := client.FetchUsers(cmd.Context(), page, pageSize)
	if err != nil {
		return err
	}
	return printJSON(users)
}

func checkPage() error {
	if page < 0 || pageSize < 1 {
		return fmt.Errorf("page must be 0 or more and size at least 1")
	}
	return nil
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	created, err := client.AddUser(cmd.Context(), args[0], admin)
	if err != nil {
		return err
	}
	success(fmt.Sprintf("user %s added, share the password below with them", args[0]))
	return printJSON(created)
}

func runUsersGet(cmd *cobra.Command, args []string) error {
	user, err := client.GetUser(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(user)
}

func runUsersResetPassword(cmd *cobra.Command, args []string) error {
	reset, err := client.ResetUserPassword(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	success("password reset")
	return printJSON(reset)
}

func runUsersSetAdmin(cmd *cobra.Command, args []string) error {
	flag, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("admin flag must be true or false, got %q", args[1])
	}
	if _, err := client.ChangeUserAdmin(cmd.Context(), args[0], flag); err != nil {
		return err
	}
	success(fmt.Sprintf("admin flag of %s set to %t", args[0], flag))
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	if !yes {
		ok, err := askConfirm(fmt.Sprintf("Delete user %s?", args[0]))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	if _, err := client.DeleteUser(cmd.Context(), args[0]); err != nil {
		return err
	}
	success(fmt.Sprintf("user %s deleted", args[0]))
	return nil
}
