package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"syspilot/internal/commands"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Customize the host's action commands (Linux backends only)",
}

var commandsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the custom command mapping",
	Run: func(cmd *cobra.Command, args []string) {
		withSession(handleCommandsList)
	},
}

var commandsSetCmd = &cobra.Command{
	Use:   "set [key=value ...]",
	Short: "Set custom commands, e.g. shutdown_cmd='systemctl poweroff'",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func() {
			handleCommandsSet(args)
		})
	},
}

var commandsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the backend's default commands",
	Run: func(cmd *cobra.Command, args []string) {
		withSession(handleCommandsReset)
	},
}

func init() {
	commandsCmd.AddCommand(commandsListCmd, commandsSetCmd, commandsResetCmd)
	RootCmd.AddCommand(commandsCmd)
}

func handleCommandsList() {
	cmds, err := Container.Commands.List()
	if err != nil {
		fatalf("Error listing commands: %v", err)
	}
	printCommands(cmds)
}

func handleCommandsSet(pairs []string) {
	current, err := Container.Commands.List()
	if err != nil {
		fatalf("Error listing commands: %v", err)
	}

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			fatalf("Error: expected key=value, got %q", pair)
		}
		current[key] = value
	}

	cmds, err := Container.Commands.Save(current)
	if err != nil {
		fatalf("Error saving commands: %v", err)
	}
	fmt.Println("Commands saved.")
	printCommands(cmds)
}

func handleCommandsReset() {
	cmds, err := Container.Commands.Reset()
	if err != nil {
		fatalf("Error resetting commands: %v", err)
	}
	fmt.Println("Commands reset to defaults.")
	printCommands(cmds)
}

func printCommands(cmds map[string]string) {
	fmt.Println("\n--- CUSTOM COMMANDS ---")
	if len(cmds) == 0 {
		fmt.Println("(backend defaults)")
		return
	}
	for _, key := range commands.Catalogue {
		if value, ok := cmds[key]; ok {
			fmt.Printf("%-20s %s\n", key, value)
		}
	}
}
