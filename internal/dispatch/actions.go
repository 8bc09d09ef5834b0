package dispatch

import "syspilot/pkg/sdk"

// Action is one row of the static dispatch table: which permission gates it,
// which backend action name it posts to, and how it is dispatched.
type Action struct {
	Key           string
	Endpoint      string
	Label         string
	Confirm       bool
	RequeryVolume bool
}

// table maps backend action names to their dispatch rules. Destructive
// actions (shutdown, restart, lock) require explicit acknowledgement before
// any network call.
var table = map[string]Action{
	"shutdown": {
		Key:      sdk.PermShutdown,
		Endpoint: "shutdown",
		Label:    "shut down the machine",
		Confirm:  true,
	},
	"restart": {
		Key:      sdk.PermRestart,
		Endpoint: "restart",
		Label:    "restart the machine",
		Confirm:  true,
	},
	"lock": {
		Key:      sdk.PermLock,
		Endpoint: "lock",
		Label:    "lock the session",
		Confirm:  true,
	},
	"play_pause": {
		Key:      sdk.PermPlayPause,
		Endpoint: "play_pause",
		Label:    "toggle playback",
	},
	"media_next": {
		Key:      sdk.PermMediaNext,
		Endpoint: "media_next",
		Label:    "skip to the next track",
	},
	"media_previous": {
		Key:      sdk.PermMediaPrevious,
		Endpoint: "media_previous",
		Label:    "skip to the previous track",
	},
	"volume_mute": {
		Key:           sdk.PermVolumeMute,
		Endpoint:      "volume_mute",
		Label:         "toggle mute",
		RequeryVolume: true,
	},
}

// Lookup returns the dispatch rules for a backend action name.
func Lookup(name string) (Action, bool) {
	a, ok := table[name]
	return a, ok
}

// ActionNames lists the one-shot action names in display order.
var ActionNames = []string{
	"shutdown", "restart", "lock",
	"play_pause", "media_next", "media_previous",
	"volume_mute",
}
