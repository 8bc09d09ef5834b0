package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"syspilot/internal/app"
	"syspilot/internal/config"
	"syspilot/internal/session"
)

var (
	Container *app.Container
	baseURL   string
	username  string
	password  string
)

var RootCmd = &cobra.Command{
	Use:   "syspilot",
	Short: "Remote control client for a SysPilot host",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configDir())
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		if baseURL != "" {
			cfg.ServerURL = baseURL
		}
		Container = app.NewContainer(cfg)
	},
	Run: func(cmd *cobra.Command, args []string) {
		RunApp()
	},
}

func Execute() {
	RootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "URL of the SysPilot backend (overrides config)")
	RootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Username for one-shot commands")
	RootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Password for one-shot commands")

	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".syspilot"
	}
	return filepath.Join(base, "syspilot")
}

// withSession logs in with the --username/--password flags (falling back to
// SYSPILOT_USERNAME/SYSPILOT_PASSWORD), refreshes once so the permission gate
// holds authoritative state, runs fn, then logs out.
func withSession(fn func()) {
	if username == "" {
		username = os.Getenv("SYSPILOT_USERNAME")
	}
	if password == "" {
		password = os.Getenv("SYSPILOT_PASSWORD")
	}
	if username == "" || password == "" {
		log.Fatal("Error: --username and --password (or SYSPILOT_USERNAME/SYSPILOT_PASSWORD) are required for this command")
	}
	if err := Container.Session.Authenticate(username, password); err != nil {
		log.Fatalf("Error logging in: %v", err)
	}
	if err := Container.Session.Refresh(); err != nil {
		fatalf("Error fetching session state: %v", err)
	}
	fn()
	Container.Session.Logout()
}

// fatalf ends a live one-shot session before exiting, so a failed command
// does not leave the backend session alive.
func fatalf(format string, args ...interface{}) {
	if Container != nil && Container.Session.State() == session.Authenticated {
		Container.Session.Logout()
	}
	log.Fatalf(format, args...)
}
