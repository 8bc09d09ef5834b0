package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"syspilot/pkg/sdk"
)

var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Read or change the host volume",
}

var volumeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current volume level and mute state",
	Run: func(cmd *cobra.Command, args []string) {
		withSession(handleVolumeGet)
	},
}

var volumeSetCmd = &cobra.Command{
	Use:   "set [level]",
	Short: "Set the volume level (0-100)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		level, err := strconv.Atoi(args[0])
		if err != nil {
			log.Fatalf("Error: level must be a number, got %q", args[0])
		}
		withSession(func() {
			handleVolumeSet(level)
		})
	},
}

var volumeMuteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Toggle mute",
	Run: func(cmd *cobra.Command, args []string) {
		withSession(handleVolumeMute)
	},
}

func init() {
	volumeCmd.AddCommand(volumeGetCmd, volumeSetCmd, volumeMuteCmd)
	RootCmd.AddCommand(volumeCmd)
}

func handleVolumeGet() {
	resp, err := Container.Client.Volume()
	if err != nil {
		fatalf("Error reading volume: %v", err)
	}
	if !resp.Success {
		fatalf("Volume request failed: %s", resp.Message)
	}
	printVolume(resp)
}

func handleVolumeSet(level int) {
	if !Container.Gate.Has(sdk.PermVolume) {
		fatalf("Error: you don't have permission to change the volume")
	}
	if level < 0 || level > 100 {
		fatalf("Error: level must be between 0 and 100, got %d", level)
	}

	resp, err := Container.Client.SetVolume(level)
	if err != nil {
		fatalf("Error setting volume: %v", err)
	}
	if resp.PermissionChange {
		fmt.Println("Your permissions were updated by an administrator; the volume was not changed.")
		return
	}
	if !resp.Success {
		fatalf("Couldn't set the volume: %s", resp.Message)
	}
	handleVolumeGet()
}

func handleVolumeMute() {
	if !Container.Gate.Has(sdk.PermVolumeMute) {
		fatalf("Error: you don't have permission to toggle mute")
	}

	resp, err := Container.Client.Action("volume_mute")
	if err != nil {
		fatalf("Error toggling mute: %v", err)
	}
	if resp.PermissionChange {
		fmt.Println("Your permissions were updated by an administrator; mute was not toggled.")
		return
	}
	if !resp.Success {
		fatalf("Couldn't toggle mute: %s", resp.Message)
	}
	fmt.Println(messageOr(resp.Message, "Mute toggled."))
}

func printVolume(resp *sdk.VolumeResponse) {
	fmt.Println("\n--- VOLUME ---")
	if resp.Level != nil {
		fmt.Printf("Level: %d%%\n", *resp.Level)
	} else {
		fmt.Println("Level: unknown")
	}
	if resp.IsMuted != nil {
		fmt.Printf("Muted: %t\n", *resp.IsMuted)
	}
}
