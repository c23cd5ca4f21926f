package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"silicate/internal/apiclient"
	"silicate/internal/models"
)

var (
	username         string
	organizationName string
	password         string
)

// signupCmd creates an organization and its first user
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an organization and its first (admin) user",
	Args:  cobra.NoArgs,
	RunE:  runSignUp,
}

// loginCmd stores a session token
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

// whoamiCmd shows the current user and organization
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user and organization",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

// passwdCmd changes the current user's password
var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the password of the current user",
	Args:  cobra.NoArgs,
	RunE:  runPasswd,
}

// orgCmd shows the current organization
var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Show the organization of the current user",
	Args:  cobra.NoArgs,
	RunE:  runOrg,
}

func init() {
	for _, cmd := range []*cobra.Command{signupCmd, loginCmd} {
		cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
		cmd.Flags().StringVarP(&organizationName, "organization", "o", "", "organization name (prompted when empty)")
		cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	}
}

func credentials() (models.Credentials, error) {
	var creds models.Credentials
	var err error
	if creds.OrganizationName, err = valueOr(organizationName, askInput, "Organization:"); err != nil {
		return creds, err
	}
	if creds.Username, err = valueOr(username, askInput, "Username:"); err != nil {
		return creds, err
	}
	if creds.Password, err = valueOr(password, askPassword, "Password:"); err != nil {
		return creds, err
	}
	return creds, nil
}

func runSignUp(cmd *cobra.Command, args []string) error {
	creds, err := credentials()
	if err != nil {
		return err
	}
	result, err := client.SignUp(cmd.Context(), creds)
	if err != nil {
		return err
	}
	success(fmt.Sprintf("organization %s created, log in with \"silicate login\"", creds.OrganizationName))
	return printJSON(result)
}

func runLogin(cmd *cobra.Command, args []string) error {
	creds, err := credentials()
	if err != nil {
		return err
	}
	if _, err := client.Login(cmd.Context(), creds); err != nil {
		return err
	}
	success(fmt.Sprintf("logged in as %s@%s", creds.Username, creds.OrganizationName))
	return nil
}

type whoami struct {
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization"`
}

// runWhoami issues both requests at once; either may finish first.
func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var (
		mu   sync.Mutex
		out  whoami
		errs []error
	)
	onError := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}
	userCall := apiclient.Go(ctx, client.GetCurrentUser, func(u *models.User) {
		mu.Lock()
		defer mu.Unlock()
		out.User = u
	}, onError)
	orgCall := apiclient.Go(ctx, client.GetOrganization, func(o *models.Organization) {
		mu.Lock()
		defer mu.Unlock()
		out.Organization = o
	}, onError)
	userCall.Wait()
	orgCall.Wait()

	if len(errs) > 0 {
		return errs[0]
	}
	return printJSON(out)
}

func runPasswd(cmd *cobra.Command, args []string) error {
	newPass, err := newPassword()
	if err != nil {
		return err
	}
	if _, err := client.ChangeCurrentUserPassword(cmd.Context(), newPass); err != nil {
		return err
	}
	success("password changed")
	return nil
}

func runOrg(cmd *cobra.Command, args []string) error {
	org, err := client.GetOrganization(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(org)
}
