package main

import (
	"syspilot/internal/cli/cmd"
)

func main() {
	cmd.Execute()
}
