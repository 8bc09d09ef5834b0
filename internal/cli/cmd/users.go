package cmd

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"syspilot/pkg/sdk"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage backend users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users and their permissions",
	Run: func(cmd *cobra.Command, args []string) {
		withSession(handleUsersList)
	},
}

var createUsername, createPassword, createPerms string

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func() {
			handleUsersCreate(createUsername, createPassword, createPerms)
		})
	},
}

var updatePerms string

var usersUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace a user's permissions",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseUserID(args[0])
		withSession(func() {
			handleUsersUpdate(id, updatePerms)
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseUserID(args[0])
		withSession(func() {
			handleUsersDelete(id)
		})
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&createUsername, "name", "", "Username")
	usersCreateCmd.Flags().StringVar(&createPassword, "pass", "", "Password")
	usersCreateCmd.Flags().StringVar(&createPerms, "perms", "", "Comma-separated permission keys to grant")
	usersCreateCmd.MarkFlagRequired("name")
	usersCreateCmd.MarkFlagRequired("pass")

	usersUpdateCmd.Flags().StringVar(&updatePerms, "perms", "", "Comma-separated permission keys to grant (all others revoked)")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd)
	RootCmd.AddCommand(usersCmd)
}

func handleUsersList() {
	list, err := Container.Users.List()
	if err != nil {
		fatalf("Error listing users: %v", err)
	}
	printUsers(list)
}

func handleUsersCreate(name, pass, perms string) {
	list, err := Container.Users.Create(name, pass, parsePerms(perms))
	if err != nil {
		fatalf("Error creating user: %v", err)
	}
	fmt.Printf("User %s created.\n", name)
	printUsers(list)
}

func handleUsersUpdate(id int, perms string) {
	list, err := Container.Users.UpdatePermissions(id, parsePerms(perms))
	if err != nil {
		fatalf("Error updating permissions: %v", err)
	}
	fmt.Println("Permissions updated.")
	printUsers(list)
}

func handleUsersDelete(id int) {
	list, err := Container.Users.Delete(id)
	if err != nil {
		fatalf("Error deleting user: %v", err)
	}
	fmt.Println("User deleted.")
	printUsers(list)
}

func printUsers(list []sdk.User) {
	fmt.Println("\n--- USERS ---")
	for _, u := range list {
		var granted []string
		for _, key := range sdk.PermissionKeys {
			if u.Permissions[key] {
				granted = append(granted, key)
			}
		}
		fmt.Printf("- [%d] %s: %s\n", u.ID, u.Username, strings.Join(granted, ", "))
	}
}

func parsePerms(raw string) sdk.PermissionSet {
	perms := sdk.PermissionSet{}
	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		perms[key] = true
	}
	return perms
}

func parseUserID(raw string) int {
	id, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Error: user id must be a number, got %q", raw)
	}
	return id
}
