package cmd

import (
	"syspilot/internal/cli/ui"
)

func RunApp() {
	defer Container.Close()
	ui.Run(Container)
}
