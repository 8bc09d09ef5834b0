package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"syspilot/internal/app"
	"syspilot/internal/dispatch"
	"syspilot/internal/session"
	"syspilot/pkg/sdk"
)

type dashboardModel struct {
	container *app.Container
	volumeBar progress.Model
	nav       navTarget
	width     int
	height    int
}

// refreshMsg forces a re-render after a dispatched action resolves.
type refreshMsg struct{}

// hotkeys maps dashboard keys to one-shot action names.
var hotkeys = map[string]string{
	"s": "shutdown",
	"r": "restart",
	"l": "lock",
	"p": "play_pause",
	"n": "media_next",
	"b": "media_previous",
	"m": "volume_mute",
}

var hotkeyHelp = []struct {
	key    string
	action string
	label  string
}{
	{"s", "shutdown", "shutdown"},
	{"r", "restart", "restart"},
	{"l", "lock", "lock"},
	{"p", "play_pause", "play/pause"},
	{"n", "media_next", "next"},
	{"b", "media_previous", "prev"},
	{"m", "volume_mute", "mute"},
}

// RunDashboard shows the live dashboard until the user navigates away or the
// session ends.
func RunDashboard(c *app.Container) navTarget {
	m := dashboardModel{
		container: c,
		volumeBar: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		nav:       navQuit,
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	finalModel, err := program.Run()
	if err != nil {
		fmt.Printf("Error running dashboard: %v", err)
		os.Exit(1)
	}

	if m, ok := finalModel.(dashboardModel); ok {
		return m.nav
	}
	return navQuit
}

func (m dashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForSession(m.container.Session.Events()),
		tickCmd(),
	}
	if m.container.Gate.Has(sdk.PermVolume) || m.container.Gate.Has(sdk.PermVolumeMute) {
		cmds = append(cmds, refreshVolumeCmd(m.container.Dispatcher))
	}
	return tea.Batch(cmds...)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.volumeBar.Width = 30
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case refreshMsg:
		return m, nil

	case sessionEventMsg:
		if msg.Kind == session.EventEnded {
			if msg.Reason != "" {
				// Carried to the login screen, which shows it inline.
				m.container.Notifier.Infof(msg.Reason)
			}
			m.nav = navEnded
			return m, tea.Quit
		}
		return m, waitForSession(m.container.Session.Events())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.container.Dispatcher

	// A pending confirmation captures y/n; everything else keeps working.
	if _, token, ok := d.Confirmer().Pending(); ok {
		switch msg.String() {
		case "y", "Y":
			return m, resolveCmd(d, token, true)
		case "n", "N", "esc":
			return m, resolveCmd(d, token, false)
		}
	}

	switch key := msg.String(); key {
	case "q", "ctrl+c":
		m.nav = navQuit
		return m, tea.Quit
	case "esc":
		// Dismiss the live notification ahead of its auto-clear.
		m.container.Notifier.Dismiss()
		return m, nil
	case "o":
		m.nav = navLogout
		return m, tea.Quit
	case "u":
		if m.container.Gate.UserAdminVisible() {
			m.nav = navUsers
			return m, tea.Quit
		}
	case "c":
		if m.container.Gate.CommandPanelVisible() {
			m.nav = navCommands
			return m, tea.Quit
		}
	case "+", "=", "right":
		d.AdjustVolume(5)
		return m, nil
	case "-", "left":
		d.AdjustVolume(-5)
		return m, nil
	default:
		if name, ok := hotkeys[key]; ok {
			return m, dispatchCmd(d, name)
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	c := m.container
	data := c.Session.Telemetry()

	title := headerStyle.Render("SYSPILOT")
	clock := descStyle.Render(time.Now().Format("Mon Jan 2 15:04:05"))
	hostInfo := fmt.Sprintf("%s@%s  |  %s", c.Session.Username(), c.Client.BaseURL(), data.OSType)

	headerBox := baseStyle.
		Width(m.width - 4).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, clock, hostInfo))

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.metricsView(data),
		"",
		m.volumeView(),
		"",
		m.actionsView(),
	)

	if message, _, ok := c.Dispatcher.Confirmer().Pending(); ok {
		body = lipgloss.JoinVertical(lipgloss.Center,
			body,
			"",
			modalStyle.Render(fmt.Sprintf("%s\n\n(y/n)", message)),
		)
	}

	mainBox := baseStyle.
		Width(m.width - 4).
		Height(m.height - 12).
		Render(body)

	statusLine := "u: users • c: commands • +/-: volume • esc: dismiss • o: logout • q: quit"
	footer := footerStyle.Width(m.width - 4).Render(statusLine)

	notifLine := renderNotification(c.Notifier.Current())

	return lipgloss.JoinVertical(lipgloss.Center, headerBox, mainBox, notifLine, footer)
}

func (m dashboardModel) metricsView(data sdk.DashboardData) string {
	if !m.container.Gate.Has(sdk.PermSystemMetrics) {
		return descStyle.Render("System metrics are not available for this account.")
	}

	rows := []string{
		fmt.Sprintf("%s %s", keyStyle.Render("CPU:   "), data.CPUUsage.String()),
		fmt.Sprintf("%s %s", keyStyle.Render("RAM:   "), data.RAMUsage.String()),
	}
	if data.Uptime != "" {
		rows = append(rows, fmt.Sprintf("%s %s", keyStyle.Render("Uptime:"), data.Uptime))
	}
	if data.User != "" {
		rows = append(rows, fmt.Sprintf("%s %s", keyStyle.Render("User:  "), data.User))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m dashboardModel) volumeView() string {
	if !m.container.Gate.Has(sdk.PermVolume) && !m.container.Gate.Has(sdk.PermVolumeMute) {
		return ""
	}

	level, muted, known := m.container.Dispatcher.Volume()
	if !known {
		return fmt.Sprintf("%s %s", keyStyle.Render("Volume:"), descStyle.Render("..."))
	}

	bar := m.volumeBar.ViewAs(float64(level) / 100)
	state := fmt.Sprintf("%3d%%", level)
	if muted {
		state = errorStyle.Render("muted")
	}
	return fmt.Sprintf("%s %s %s", keyStyle.Render("Volume:"), bar, state)
}

func (m dashboardModel) actionsView() string {
	parts := make([]string, 0, len(hotkeyHelp))
	for _, h := range hotkeyHelp {
		action, _ := dispatch.Lookup(h.action)
		entry := fmt.Sprintf("%s %s", keyStyle.Render(h.key), h.label)
		if !m.container.Gate.Has(action.Key) {
			entry = disabledStyle.Render(fmt.Sprintf("%s %s", h.key, h.label))
		}
		parts = append(parts, entry)
	}
	return descStyle.Render("Actions:") + "  " + lipgloss.JoinHorizontal(lipgloss.Top, joinDotted(parts))
}

func joinDotted(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += descStyle.Render(" • ")
		}
		out += p
	}
	return out
}

func dispatchCmd(d *dispatch.Dispatcher, name string) tea.Cmd {
	return func() tea.Msg {
		d.Dispatch(name)
		return refreshMsg{}
	}
}

func resolveCmd(d *dispatch.Dispatcher, token uuid.UUID, confirmed bool) tea.Cmd {
	return func() tea.Msg {
		d.Confirmer().Resolve(token, confirmed)
		return refreshMsg{}
	}
}

func refreshVolumeCmd(d *dispatch.Dispatcher) tea.Cmd {
	return func() tea.Msg {
		d.RefreshVolume()
		return refreshMsg{}
	}
}
