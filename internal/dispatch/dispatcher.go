package dispatch

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"syspilot/internal/notify"
	"syspilot/internal/permission"
	"syspilot/internal/session"
	"syspilot/pkg/sdk"
)

// Dispatcher executes privileged actions: local gate check, optional
// confirmation, network call, outcome notification. A permission-change
// signal in any response short-circuits the outcome and forces a session
// resync instead; exactly one of {resync, outcome notification} happens per
// dispatch.
type Dispatcher struct {
	client   *sdk.Client
	gate     *permission.Gate
	notifier *notify.Notifier
	session  *session.Manager
	confirm  *Confirmer
	debounce *Debouncer

	mu          sync.Mutex
	volume      int
	muted       bool
	volumeKnown bool
}

func NewDispatcher(client *sdk.Client, gate *permission.Gate, notifier *notify.Notifier, mgr *session.Manager, debounceDelay time.Duration) *Dispatcher {
	d := &Dispatcher{
		client:   client,
		gate:     gate,
		notifier: notifier,
		session:  mgr,
		confirm:  NewConfirmer(),
	}
	d.debounce = NewDebouncer(debounceDelay, d.pushVolume)
	return d
}

// Confirmer exposes the pending-confirmation controller to the UI.
func (d *Dispatcher) Confirmer() *Confirmer {
	return d.confirm
}

// Dispatch runs the pipeline for the named one-shot action. Callers run it
// off the UI loop; it blocks only its own goroutine.
func (d *Dispatcher) Dispatch(name string) {
	action, ok := Lookup(name)
	if !ok {
		d.notifier.Errorf(fmt.Sprintf("Unknown action: %s", name))
		return
	}

	// Local gate first: a denied key never reaches the network.
	if !d.gate.Has(action.Key) {
		d.notifier.Errorf(fmt.Sprintf("You don't have permission to %s.", action.Label))
		return
	}

	if action.Confirm {
		d.confirm.Request(
			fmt.Sprintf("Really %s?", action.Label),
			func(confirmed bool) {
				if !confirmed {
					return
				}
				d.execute(action)
			},
		)
		return
	}

	d.execute(action)
}

func (d *Dispatcher) execute(action Action) {
	resp, err := d.client.Action(action.Endpoint)
	if err != nil {
		d.handleCallError(err)
		return
	}

	if resp.PermissionChange {
		d.notifyPermissionChange(resp.Message)
		d.session.Resync()
		return
	}

	if !resp.Success {
		d.notifier.Errorf(orDefault(resp.Message, "Action failed."))
		return
	}

	d.notifier.Successf(orDefault(resp.Message, "Done."))
	if action.RequeryVolume {
		d.refreshVolume()
	}
}

// SetVolume is the continuous control: the displayed level updates
// immediately and the network call is deferred until input goes quiet.
func (d *Dispatcher) SetVolume(level int) {
	if !d.gate.Has(sdk.PermVolume) {
		d.notifier.Errorf("You don't have permission to change the volume.")
		return
	}
	level = clampLevel(level)

	// Optimistic echo: the slider shows the requested value right away and
	// is reconciled after the debounced call resolves.
	d.mu.Lock()
	d.volume = level
	d.volumeKnown = true
	d.mu.Unlock()

	d.debounce.Trigger(level)
}

// AdjustVolume nudges the current level by delta through the same debounced
// path.
func (d *Dispatcher) AdjustVolume(delta int) {
	d.mu.Lock()
	level := d.volume + delta
	d.mu.Unlock()
	d.SetVolume(level)
}

// pushVolume is the debounce fire handler: one network call per quiescent
// period, always carrying the last slider value.
func (d *Dispatcher) pushVolume(level int) {
	resp, err := d.client.SetVolume(level)
	if err != nil {
		d.handleCallError(err)
		return
	}

	if resp.PermissionChange {
		d.notifyPermissionChange(resp.Message)
		d.session.Resync()
		return
	}

	if !resp.Success {
		d.notifier.Errorf(orDefault(resp.Message, "Couldn't set the volume."))
		return
	}

	// The backend may have clamped the request; its value wins.
	d.refreshVolume()
}

// RefreshVolume re-queries the authoritative level and mute state.
func (d *Dispatcher) RefreshVolume() {
	d.refreshVolume()
}

func (d *Dispatcher) refreshVolume() {
	resp, err := d.client.Volume()
	if err != nil {
		if errors.Is(err, sdk.ErrUnauthorized) {
			d.session.Invalidate("Session expired. Please log in again.")
			return
		}
		log.Printf("volume re-query failed: %v", err)
		return
	}

	if resp.Success {
		d.mu.Lock()
		if resp.Level != nil {
			d.volume = clampLevel(*resp.Level)
			d.volumeKnown = true
		}
		if resp.IsMuted != nil {
			d.muted = *resp.IsMuted
		}
		d.mu.Unlock()
	}

	if resp.PermissionChange {
		d.notifyPermissionChange(resp.Message)
		d.session.Resync()
	}
}

// Volume returns the last known (possibly optimistic) level and mute state.
func (d *Dispatcher) Volume() (level int, muted bool, known bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume, d.muted, d.volumeKnown
}

// Stop cancels the debounce timer and any pending confirmation. Called on
// logout and on navigation away from the dashboard.
func (d *Dispatcher) Stop() {
	d.debounce.Stop()
	d.confirm.Clear()
}

func (d *Dispatcher) handleCallError(err error) {
	var statusErr *sdk.StatusError
	switch {
	case errors.Is(err, sdk.ErrUnauthorized):
		d.session.Invalidate("Session expired. Please log in again.")
	case errors.Is(err, sdk.ErrForbidden):
		msg := "The server denied this action."
		if errors.As(err, &statusErr) && statusErr.Message != "" {
			msg = statusErr.Message
		}
		d.notifier.Errorf(msg)
	case errors.As(err, &statusErr):
		d.notifier.Errorf(orDefault(statusErr.Message, "The server rejected the request."))
	default:
		d.notifier.Errorf("Network error. The action was not completed.")
	}
}

func (d *Dispatcher) notifyPermissionChange(message string) {
	d.notifier.Infof(orDefault(message, "Your permissions were updated."))
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
