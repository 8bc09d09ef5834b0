package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"syspilot/internal/dispatch"
	"syspilot/internal/notify"
)

var skipConfirm bool

var actionCmd = &cobra.Command{
	Use:   "action [name]",
	Short: "Run a one-shot host action (shutdown, restart, lock, media keys)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func() {
			handleAction(args[0])
		})
	},
}

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List available actions",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("\n--- AVAILABLE ACTIONS ---")
		for _, name := range dispatch.ActionNames {
			action, _ := dispatch.Lookup(name)
			marker := ""
			if action.Confirm {
				marker = " (asks for confirmation)"
			}
			fmt.Printf("- %-16s %s%s\n", name, action.Label, marker)
		}
	},
}

func init() {
	actionCmd.Flags().BoolVar(&skipConfirm, "yes", false, "Skip the confirmation prompt")
	RootCmd.AddCommand(actionCmd, actionsCmd)
}

// handleAction routes through the same dispatcher the TUI uses, so gating,
// confirmation and permission-change handling behave identically; the
// resulting notification is printed instead of rendered.
func handleAction(name string) {
	action, ok := dispatch.Lookup(name)
	if !ok {
		fatalf("Error: unknown action %q (see 'syspilot actions')", name)
	}

	d := Container.Dispatcher
	d.Dispatch(name)

	if _, token, pending := d.Confirmer().Pending(); pending {
		confirmed := skipConfirm
		if !skipConfirm {
			fmt.Printf("Really %s? [y/N]: ", action.Label)
			reader := bufio.NewReader(os.Stdin)
			line, _ := reader.ReadString('\n')
			confirmed = strings.EqualFold(strings.TrimSpace(line), "y")
		}
		d.Confirmer().Resolve(token, confirmed)
		if !confirmed {
			fmt.Println("Cancelled.")
			return
		}
	}

	if n := Container.Notifier.Current(); n != nil {
		if n.Severity == notify.Error {
			fatalf("%s", n.Message)
		}
		fmt.Println(n.Message)
	}
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
