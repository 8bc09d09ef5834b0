package commands

import (
	"errors"
	"fmt"
	"strings"

	"syspilot/internal/notify"
	"syspilot/internal/permission"
	"syspilot/internal/session"
	"syspilot/pkg/sdk"
)

// ErrPermissionChanged mirrors the user panel's signal: the session was
// resynchronized mid-call and the operation's outcome must not be trusted.
var ErrPermissionChanged = errors.New("permissions changed, session resynchronized")

// Catalogue is the fixed set of customizable command keys, matching the
// backend's default command table.
var Catalogue = []string{
	"shutdown_cmd",
	"restart_cmd",
	"lock_cmd",
	"play_pause_cmd",
	"media_next_cmd",
	"media_previous_cmd",
	"set_volume_cmd",
	"volume_mute_cmd",
}

// Labels maps catalogue keys to display names.
var Labels = map[string]string{
	"shutdown_cmd":       "Shutdown",
	"restart_cmd":        "Restart",
	"lock_cmd":           "Lock session",
	"play_pause_cmd":     "Play / pause",
	"media_next_cmd":     "Next track",
	"media_previous_cmd": "Previous track",
	"set_volume_cmd":     "Set volume",
	"volume_mute_cmd":    "Toggle mute",
}

// Panel edits the backend's command-string mapping. Only meaningful on a
// Linux backend with modify_commands granted; the composite gate is checked
// before every call.
type Panel struct {
	client   *sdk.Client
	gate     *permission.Gate
	notifier *notify.Notifier
	session  *session.Manager
}

func NewPanel(client *sdk.Client, gate *permission.Gate, notifier *notify.Notifier, mgr *session.Manager) *Panel {
	return &Panel{client: client, gate: gate, notifier: notifier, session: mgr}
}

// List fetches the custom command map. An empty map means the backend runs
// on its defaults; callers render that as a placeholder, not an empty table.
func (p *Panel) List() (map[string]string, error) {
	if !p.gate.CommandPanelVisible() {
		return nil, p.denied()
	}

	resp, err := p.client.Commands()
	if err != nil {
		return nil, p.handleCallError(err)
	}
	if resp.PermissionChange {
		return nil, p.resync(resp.Message)
	}
	if !resp.Success {
		return nil, fmt.Errorf("list commands: %s", orDefault(resp.Message, "request rejected"))
	}
	if resp.Commands == nil {
		return map[string]string{}, nil
	}
	return resp.Commands, nil
}

// Save replaces the whole map. Values are trimmed; empty values pass
// through, validation of the command strings themselves is the backend's
// contract. Keys outside the catalogue are dropped for consistent labeling.
func (p *Panel) Save(cmds map[string]string) (map[string]string, error) {
	if !p.gate.CommandPanelVisible() {
		return nil, p.denied()
	}

	payload := make(map[string]string, len(cmds))
	for _, key := range Catalogue {
		if value, ok := cmds[key]; ok {
			payload[key] = strings.TrimSpace(value)
		}
	}

	resp, err := p.client.UpdateCommands(payload)
	if err != nil {
		return nil, p.handleCallError(err)
	}
	if resp.PermissionChange {
		return nil, p.resync(resp.Message)
	}
	if !resp.Success {
		p.notifier.Errorf(orDefault(resp.Message, "Couldn't save the commands."))
		return nil, fmt.Errorf("save commands: %s", resp.Message)
	}

	p.notifier.Successf(orDefault(resp.Message, "Commands saved."))
	return p.List()
}

// Reset restores the backend defaults and reloads the list. Confirmation is
// the caller's responsibility.
func (p *Panel) Reset() (map[string]string, error) {
	if !p.gate.CommandPanelVisible() {
		return nil, p.denied()
	}

	resp, err := p.client.ResetCommands()
	if err != nil {
		return nil, p.handleCallError(err)
	}
	if resp.PermissionChange {
		return nil, p.resync(resp.Message)
	}
	if !resp.Success {
		p.notifier.Errorf(orDefault(resp.Message, "Couldn't reset the commands."))
		return nil, fmt.Errorf("reset commands: %s", resp.Message)
	}

	p.notifier.Successf(orDefault(resp.Message, "Commands reset to defaults."))
	return p.List()
}

func (p *Panel) denied() error {
	p.notifier.Errorf("Command customization isn't available for this session.")
	return errors.New("command customization not available")
}

func (p *Panel) resync(message string) error {
	p.notifier.Infof(orDefault(message, "Your permissions were updated."))
	p.session.Resync()
	return ErrPermissionChanged
}

func (p *Panel) handleCallError(err error) error {
	var statusErr *sdk.StatusError
	switch {
	case errors.Is(err, sdk.ErrUnauthorized):
		p.session.Invalidate("Session expired. Please log in again.")
	case errors.Is(err, sdk.ErrForbidden):
		msg := "The server denied this request."
		if errors.As(err, &statusErr) && statusErr.Message != "" {
			msg = statusErr.Message
		}
		p.notifier.Errorf(msg)
	case errors.As(err, &statusErr):
		p.notifier.Errorf(orDefault(statusErr.Message, "The server rejected the request."))
	default:
		p.notifier.Errorf("Network error. The request was not completed.")
	}
	return err
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
