package app

import (
	"syspilot/internal/commands"
	"syspilot/internal/config"
	"syspilot/internal/dispatch"
	"syspilot/internal/notify"
	"syspilot/internal/permission"
	"syspilot/internal/session"
	"syspilot/internal/users"
	"syspilot/pkg/sdk"
)

type Container struct {
	Config     *config.Config
	Client     *sdk.Client
	Gate       *permission.Gate
	Notifier   *notify.Notifier
	Session    *session.Manager
	Dispatcher *dispatch.Dispatcher
	Users      *users.Panel
	Commands   *commands.Panel
}

func NewContainer(cfg *config.Config) *Container {
	client := sdk.NewClient(cfg.ServerURL)
	gate := permission.NewGate()
	notifier := notify.New(cfg.NotificationTTL())
	mgr := session.NewManager(client, gate, notifier)

	return &Container{
		Config:     cfg,
		Client:     client,
		Gate:       gate,
		Notifier:   notifier,
		Session:    mgr,
		Dispatcher: dispatch.NewDispatcher(client, gate, notifier, mgr, cfg.DebounceDelay()),
		Users:      users.NewPanel(client, gate, notifier, mgr),
		Commands:   commands.NewPanel(client, gate, notifier, mgr),
	}
}

// Close tears down background work: polling, pending debounce timers and
// confirmations. The session itself is left to Logout.
func (c *Container) Close() {
	c.Session.StopPolling()
	c.Dispatcher.Stop()
}
