package sdk

import (
	"encoding/json"
	"strings"
)

// Permission keys as declared by the backend. Unknown keys are treated as
// denied everywhere in the client.
const (
	PermShutdown       = "shutdown"
	PermRestart        = "restart"
	PermLock           = "lock"
	PermPlayPause      = "play_pause"
	PermMediaNext      = "media_next"
	PermMediaPrevious  = "media_previous"
	PermVolume         = "volume"
	PermVolumeMute     = "volume_mute"
	PermSystemMetrics  = "system_metrics"
	PermModifyCommands = "modify_commands"
	PermManageUsers    = "manage_users"
)

// PermissionKeys lists every permission key in stable display order.
var PermissionKeys = []string{
	PermShutdown,
	PermRestart,
	PermLock,
	PermPlayPause,
	PermMediaNext,
	PermMediaPrevious,
	PermVolume,
	PermVolumeMute,
	PermSystemMetrics,
	PermModifyCommands,
	PermManageUsers,
}

// PermissionSet maps permission keys to grants for one user.
type PermissionSet map[string]bool

// Clone returns an independent copy so callers can replace sets wholesale
// without sharing storage with the decoder.
func (p PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Metric is a telemetry value the backend reports either as a bare number or
// as a preformatted string like "12%".
type Metric string

func (m *Metric) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = Metric(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = Metric(n.String())
	return nil
}

func (m Metric) String() string {
	s := string(m)
	if s == "" {
		return "-"
	}
	if !strings.HasSuffix(s, "%") {
		return s + "%"
	}
	return s
}

// DashboardData is the telemetry snapshot plus the caller's authoritative
// permission set, replaced wholesale on every poll.
type DashboardData struct {
	CPUUsage    Metric        `json:"cpu_usage"`
	RAMUsage    Metric        `json:"ram_usage"`
	Uptime      string        `json:"uptime"`
	User        string        `json:"user"`
	OSType      string        `json:"os_type"`
	Permissions PermissionSet `json:"permissions"`
}

// User is the admin view of an account.
type User struct {
	ID          int           `json:"id"`
	Username    string        `json:"username"`
	Permissions PermissionSet `json:"permissions"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username    string        `json:"username"`
	Password    string        `json:"password"`
	Permissions PermissionSet `json:"permissions"`
}

// ActionResponse is the generic backend envelope. permission_change may ride
// on any success response and signals that the session's authority was
// rewritten out of band.
type ActionResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	PermissionChange bool   `json:"permission_change"`
}

type DashboardResponse struct {
	Success          bool          `json:"success"`
	Data             DashboardData `json:"data"`
	Message          string        `json:"message"`
	PermissionChange bool          `json:"permission_change"`
}

type VolumeResponse struct {
	Success          bool   `json:"success"`
	Level            *int   `json:"level,omitempty"`
	IsMuted          *bool  `json:"is_muted,omitempty"`
	Message          string `json:"message"`
	PermissionChange bool   `json:"permission_change"`
}

type UsersResponse struct {
	Success          bool   `json:"success"`
	Users            []User `json:"users"`
	Message          string `json:"message"`
	PermissionChange bool   `json:"permission_change"`
}

type CommandsResponse struct {
	Success          bool              `json:"success"`
	Commands         map[string]string `json:"commands"`
	Message          string            `json:"message"`
	PermissionChange bool              `json:"permission_change"`
}
