package cmd

import (
	"log"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the backend's web dashboard in a browser",
	Run: func(cmd *cobra.Command, args []string) {
		if err := browser.OpenURL(Container.Client.BaseURL()); err != nil {
			log.Fatalf("Error opening browser: %v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(openCmd)
}
