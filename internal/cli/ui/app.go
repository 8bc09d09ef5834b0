package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"syspilot/internal/app"
	"syspilot/internal/session"
)

type navTarget int

const (
	navQuit navTarget = iota
	navLogout
	navEnded
	navUsers
	navCommands
)

type errMsg error

type tickMsg time.Time

type sessionEventMsg session.Event

// Run drives the screen loop: login, dashboard, and the admin panels. Each
// screen is its own program, one page at a time.
func Run(c *app.Container) {
	for {
		if c.Session.State() != session.Authenticated {
			if !RunLogin(c) {
				return
			}
			c.Session.StartPolling(c.Config.PollInterval())
		}

		switch RunDashboard(c) {
		case navUsers:
			RunUsers(c)
		case navCommands:
			RunCommands(c)
		case navLogout:
			c.Dispatcher.Stop()
			c.Session.Logout()
			drainEvents(c)
		case navEnded:
			drainEvents(c)
		case navQuit:
			if c.Session.State() == session.Authenticated {
				c.Dispatcher.Stop()
				c.Session.Logout()
			}
			return
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForSession blocks on the session event channel and hands the next event
// to the running program.
func waitForSession(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		return sessionEventMsg(<-events)
	}
}

// drainEvents discards stale session events so the next screen does not see a
// session-ended signal from a session that is already gone.
func drainEvents(c *app.Container) {
	for {
		select {
		case <-c.Session.Events():
		default:
			return
		}
	}
}
