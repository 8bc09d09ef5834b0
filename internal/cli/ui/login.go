package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"syspilot/internal/app"
	"syspilot/internal/session"
)

type loginModel struct {
	container  *app.Container
	username   textinput.Model
	password   textinput.Model
	focusIndex int
	submitting bool
	errText    string
	infoText   string
	done       bool
	quit       bool
	width      int
	height     int
}

type loginOKMsg struct{}

// RunLogin shows the login form until a session is established. Returns false
// when the user quits instead.
func RunLogin(c *app.Container) bool {
	user := textinput.New()
	user.Placeholder = "username"
	user.Focus()
	user.CharLimit = 64
	user.Width = 30

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'
	pass.CharLimit = 64
	pass.Width = 30

	m := loginModel{container: c, username: user, password: pass}
	if n := c.Notifier.Current(); n != nil {
		m.infoText = n.Message
		c.Notifier.Dismiss()
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	finalModel, err := program.Run()
	if err != nil {
		fmt.Printf("Error running login: %v", err)
		os.Exit(1)
	}

	if m, ok := finalModel.(loginModel); ok {
		return m.done && !m.quit
	}
	return false
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loginOKMsg:
		m.done = true
		return m, tea.Quit

	case errMsg:
		m.submitting = false
		m.errText = msg.Error()
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		case "tab", "shift+tab", "up", "down":
			m.focusIndex = (m.focusIndex + 1) % 2
			if m.focusIndex == 0 {
				m.username.Focus()
				m.password.Blur()
			} else {
				m.password.Focus()
				m.username.Blur()
			}
			return m, textinput.Blink
		case "enter":
			if m.focusIndex == 0 {
				m.focusIndex = 1
				m.username.Blur()
				m.password.Focus()
				return m, textinput.Blink
			}
			if m.username.Value() == "" || m.password.Value() == "" {
				m.errText = "Enter a username and password"
				return m, nil
			}
			m.submitting = true
			m.errText = ""
			return m, loginCmd(m.container, m.username.Value(), m.password.Value())
		}
	}

	if m.focusIndex == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := headerStyle.Render("SYSPILOT")
	target := descStyle.Render(fmt.Sprintf("Backend: %s", m.container.Client.BaseURL()))

	status := ""
	if m.submitting {
		status = infoStyle.Render("Signing in...")
	} else if m.errText != "" {
		status = errorStyle.Render(m.errText)
	} else if m.infoText != "" {
		status = infoStyle.Render(m.infoText)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		m.username.View(),
		m.password.View(),
	)

	box := baseStyle.
		Width(44).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, target, " ", form, " ", status))

	footer := footerStyle.Width(44).Render("tab: switch field • enter: sign in • esc: quit")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, box, footer))
}

func loginCmd(c *app.Container, username, password string) tea.Cmd {
	return func() tea.Msg {
		if err := c.Session.Authenticate(username, password); err != nil {
			var authErr *session.AuthError
			if errors.As(err, &authErr) {
				return errMsg(errors.New(authErr.Message))
			}
			return errMsg(errors.New("Can't connect to the server"))
		}
		if err := c.Session.Refresh(); err != nil {
			return errMsg(errors.New("Signed in, but the first refresh failed"))
		}
		return loginOKMsg{}
	}
}
