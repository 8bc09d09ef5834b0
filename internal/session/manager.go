package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"syspilot/internal/notify"
	"syspilot/internal/permission"
	"syspilot/pkg/sdk"
)

// State is the authentication lifecycle. Re-authentication always restarts
// from Anonymous; there are no other states.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

// ErrRefreshInFlight is returned when a refresh is skipped because another
// one has not resolved yet. Poll ticks treat it as "skip, don't queue".
var ErrRefreshInFlight = errors.New("refresh already in flight")

// AuthError is a rejected login: recoverable, shown inline on the login
// form.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

type EventKind int

const (
	// EventRefreshed carries a fresh telemetry snapshot and permission set.
	EventRefreshed EventKind = iota
	// EventEnded means the session is gone and the UI must return to login.
	EventEnded
)

type Event struct {
	Kind   EventKind
	Data   sdk.DashboardData
	Reason string
}

const (
	resyncRetries  = 20
	resyncInterval = 50 * time.Millisecond
)

// Manager owns the session lifecycle and the periodic telemetry/permission
// poll. It is the single writer of the PermissionGate and the telemetry
// snapshot; everything else only reads.
type Manager struct {
	client   *sdk.Client
	gate     *permission.Gate
	notifier *notify.Notifier

	mu        sync.Mutex
	state     State
	username  string
	telemetry sdk.DashboardData
	inFlight  bool
	pollStop  chan struct{}

	events chan Event
}

func NewManager(client *sdk.Client, gate *permission.Gate, notifier *notify.Notifier) *Manager {
	return &Manager{
		client:   client,
		gate:     gate,
		notifier: notifier,
		events:   make(chan Event, 16),
	}
}

// Events delivers refresh results and session-ended signals to the UI.
func (m *Manager) Events() <-chan Event {
	return m.events
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Username() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.username
}

// Telemetry returns the last applied snapshot.
func (m *Manager) Telemetry() sdk.DashboardData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.telemetry
}

// Authenticate posts credentials and establishes the session. A rejected
// login returns *AuthError with the backend's message; a transport failure
// returns a plain error so callers can show a generic can't-connect message.
func (m *Manager) Authenticate(username, password string) error {
	m.mu.Lock()
	m.state = Authenticating
	m.mu.Unlock()

	resp, err := m.client.Login(username, password)
	if err != nil {
		m.setState(Anonymous)
		var statusErr *sdk.StatusError
		if errors.As(err, &statusErr) {
			msg := statusErr.Message
			if msg == "" {
				msg = "Login failed"
			}
			return &AuthError{Message: msg}
		}
		return fmt.Errorf("can't connect to server: %w", err)
	}
	if !resp.Success {
		m.setState(Anonymous)
		msg := resp.Message
		if msg == "" {
			msg = "Login failed"
		}
		return &AuthError{Message: msg}
	}

	m.mu.Lock()
	m.state = Authenticated
	m.username = username
	m.mu.Unlock()
	return nil
}

// Refresh performs one telemetry/permission poll. At most one refresh runs
// at a time; a caller arriving while one is outstanding gets
// ErrRefreshInFlight and nothing is queued.
//
// Any non-2xx status or logical failure is terminal for the session. A
// transport failure is not: the session stays up and an error notification
// is shown.
func (m *Manager) Refresh() error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrRefreshInFlight
	}
	m.inFlight = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
	}()

	resp, err := m.client.DashboardData()
	if err != nil {
		var statusErr *sdk.StatusError
		if errors.As(err, &statusErr) {
			m.endSession("Session expired. Please log in again.")
			return err
		}
		m.notifier.Errorf("Can't reach the server. Retrying...")
		return err
	}
	if !resp.Success {
		reason := resp.Message
		if reason == "" {
			reason = "Session rejected by server."
		}
		m.endSession(reason)
		return fmt.Errorf("refresh rejected: %s", reason)
	}

	// permission_change on the poll itself is not an error: the body is
	// already the authoritative replacement state.
	m.apply(resp.Data)
	return nil
}

// Resync re-fetches authoritative state after a permission-change signal.
// If a poll is already in flight it briefly waits and retries so the caller
// never trusts state captured before the signal.
func (m *Manager) Resync() {
	for i := 0; i < resyncRetries; i++ {
		err := m.Refresh()
		if !errors.Is(err, ErrRefreshInFlight) {
			return
		}
		time.Sleep(resyncInterval)
	}
}

func (m *Manager) apply(data sdk.DashboardData) {
	m.gate.Update(data.Permissions)
	m.gate.UpdatePlatform(data.OSType)

	m.mu.Lock()
	m.telemetry = data
	m.mu.Unlock()

	m.emit(Event{Kind: EventRefreshed, Data: data})
}

// StartPolling arms the poll timer. Re-arming cancels any prior timer, so
// there is never more than one.
func (m *Manager) StartPolling(interval time.Duration) {
	m.mu.Lock()
	if m.pollStop != nil {
		close(m.pollStop)
	}
	stop := make(chan struct{})
	m.pollStop = stop
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// Skip-if-busy: Refresh refuses to overlap itself.
				_ = m.Refresh()
			}
		}
	}()
}

func (m *Manager) StopPolling() {
	m.mu.Lock()
	if m.pollStop != nil {
		close(m.pollStop)
		m.pollStop = nil
	}
	m.mu.Unlock()
}

// Logout notifies the backend best-effort, then unconditionally tears the
// local session down.
func (m *Manager) Logout() {
	if err := m.client.Logout(); err != nil {
		log.Printf("logout request failed (continuing locally): %v", err)
	}
	m.endSession("Logged out.")
}

// Invalidate ends the session immediately. Used when another call sees a
// 401: the session is gone no matter what the poll thinks.
func (m *Manager) Invalidate(reason string) {
	m.endSession(reason)
}

func (m *Manager) endSession(reason string) {
	m.StopPolling()
	m.client.ClearSession()
	m.gate.Clear()

	m.mu.Lock()
	m.state = Anonymous
	m.username = ""
	m.telemetry = sdk.DashboardData{}
	m.mu.Unlock()

	m.emit(Event{Kind: EventEnded, Reason: reason})
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) emit(ev Event) {
	for {
		select {
		case m.events <- ev:
			return
		default:
		}
		// Slow consumer: drop the oldest event. Newer state supersedes it.
		select {
		case <-m.events:
		default:
		}
	}
}
