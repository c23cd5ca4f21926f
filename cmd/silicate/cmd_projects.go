package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var permissions []string

// projectsCmd groups the project and project access commands
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects and who can access them",
	Long: `Manage projects and who can access them.

Available subcommands:
  list        - List the projects you can access, page by page
  create      - Create a project (admin only)
  get         - Show one project
  rename      - Rename a project
  delete      - Delete a project
  members     - List the members of a project and their permissions
  grant       - Add permissions for a user
  revoke      - Remove permissions from a user
  remove-user - Drop every permission a user has on a project

The creator of a project holds the "all" permission; only holders of "all"
can rename, delete or change access.`,
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the projects you can access",
	Args:  cobra.NoArgs,
	RunE:  runProjectsList,
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsCreate,
}

var projectsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsGet,
}

var projectsRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectsRename,
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDelete,
}

var projectsMembersCmd = &cobra.Command{
	Use:   "members ID",
	Short: "List project members",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsMembers,
}

var projectsGrantCmd = &cobra.Command{
	Use:   "grant ID USER_ID",
	Short: "Add permissions for a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectsGrant,
}

var projectsRevokeCmd = &cobra.Command{
	Use:   "revoke ID USER_ID",
	Short: "Remove permissions from a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectsRevoke,
}

var projectsRemoveUserCmd = &cobra.Command{
	Use:   "remove-user ID USER_ID",
	Short: "Remove a user from a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectsRemoveUser,
}

func init() {
	for _, cmd := range []*cobra.Command{projectsListCmd, projectsMembersCmd} {
		cmd.Flags().IntVar(&page, "page", 0, "page number, starting at 0")
		cmd.Flags().IntVar(&pageSize, "size", 20, "entries per page")
	}
	for _, cmd := range []*cobra.Command{projectsGrantCmd, projectsRevokeCmd} {
		cmd.Flags().StringSliceVarP(&permissions, "permission", "p", nil, "permission name, repeatable")
		cmd.MarkFlagRequired("permission")
	}
	projectsDeleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	projectsCmd.AddCommand(projectsListCmd, projectsCreateCmd, projectsGetCmd, projectsRenameCmd, projectsDeleteCmd)
	projectsCmd.AddCommand(projectsMembersCmd, projectsGrantCmd, projectsRevokeCmd, projectsRemoveUserCmd)
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	if err := checkPage(); err != nil {
		return err
	}
	projects, err := client.FetchProjects(cmd.Context(), page, pageSize)
	if err != nil {
		return err
	}
	return printJSON(projects)
}

func runProjectsCreate(cmd *cobra.Command, args []string) error {
	ref, err := client.CreateProject(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	success(fmt.Sprintf("project %s created", args[0]))
	return printJSON(ref)
}

func runProjectsGet(cmd *cobra.Command, args []string) error {
	project, err := client.GetProject(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(project)
}

func runProjectsRename(cmd *cobra.Command, args []string) error {
	if _, err := client.RenameProject(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	success(fmt.Sprintf("project %s renamed to %s", args[0], args[1]))
	return nil
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	if !yes {
		ok, err := askConfirm(fmt.Sprintf("Delete project %s?", args[0]))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	if _, err := client.DeleteProject(cmd.Context(), args[0]); err != nil {
		return err
	}
	success(fmt.Sprintf("project %s deleted", args[0]))
	return nil
}

func runProjectsMembers(cmd *cobra.Command, args []string) error {
	if err := checkPage(); err != nil {
		return err
	}
	members, err := client.FetchProjectUsers(cmd.Context(), args[0], page, pageSize)
	if err != nil {
		return err
	}
	return printJSON(members)
}

func runProjectsGrant(cmd *cobra.Command, args []string) error {
	if len(permissions) == 0 {
		return fmt.Errorf("at least one --permission is required")
	}
	grant, err := client.GrantProjectAccess(cmd.Context(), args[0], args[1], permissions)
	if err != nil {
		return err
	}
	success(fmt.Sprintf("access granted to %s on project %s", args[1], args[0]))
	return printJSON(grant)
}

func runProjectsRevoke(cmd *cobra.Command, args []string) error {
	if len(permissions) == 0 {
		return fmt.Errorf("at least one --permission is required")
	}
	if _, err := client.RevokeProjectAccess(cmd.Context(), args[0], args[1], permissions); err != nil {
		return err
	}
	success(fmt.Sprintf("permissions of %s on project %s revoked", args[1], args[0]))
	return nil
}

func runProjectsRemoveUser(cmd *cobra.Command, args []string) error {
	if _, err := client.RemoveProjectUser(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	success(fmt.Sprintf("user %s removed from project %s", args[1], args[0]))
	return nil
}
