package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"syspilot/internal/app"
	"syspilot/internal/commands"
)

type commandsModel struct {
	container    *app.Container
	inputs       []textinput.Model
	focus        int
	loading      bool
	confirmReset bool
	width        int
	height       int
}

type commandsLoadedMsg map[string]string

// RunCommands shows the command customization panel until the user leaves it.
func RunCommands(c *app.Container) {
	inputs := make([]textinput.Model, len(commands.Catalogue))
	for i := range commands.Catalogue {
		ti := textinput.New()
		ti.Placeholder = "(backend default)"
		ti.CharLimit = 256
		ti.Width = 50
		inputs[i] = ti
	}
	inputs[0].Focus()

	m := commandsModel{container: c, inputs: inputs, loading: true}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running command panel: %v", err)
		os.Exit(1)
	}
}

func (m commandsModel) Init() tea.Cmd {
	return tea.Batch(loadCommandsCmd(m.container), tickCmd(), textinput.Blink)
}

func (m commandsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case panelClosedMsg:
		return m, tea.Quit

	case refreshMsg:
		m.loading = false
		return m, nil

	case commandsLoadedMsg:
		m.loading = false
		for i, key := range commands.Catalogue {
			m.inputs[i].SetValue(msg[key])
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirmReset {
			switch msg.String() {
			case "y", "Y":
				m.confirmReset = false
				m.loading = true
				return m, resetCommandsCmd(m.container)
			case "n", "N", "esc":
				m.confirmReset = false
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			// esc dismisses a showing notification before it leaves the panel.
			if m.container.Notifier.Current() != nil {
				m.container.Notifier.Dismiss()
				return m, nil
			}
			return m, tea.Quit
		case "up", "shift+tab":
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, textinput.Blink
		case "down", "tab", "enter":
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, textinput.Blink
		case "ctrl+s":
			m.loading = true
			return m, saveCommandsCmd(m.container, m.collect())
		case "ctrl+r":
			m.confirmReset = true
			return m, nil
		}
	}

	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *commandsModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m commandsModel) collect() map[string]string {
	out := make(map[string]string, len(commands.Catalogue))
	for i, key := range commands.Catalogue {
		out[key] = m.inputs[i].Value()
	}
	return out
}

func (m commandsModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := headerStyle.Render("COMMAND CUSTOMIZATION")
	hint := descStyle.Render("Empty fields fall back to the backend's defaults.")

	lines := make([]string, 0, len(commands.Catalogue)*2)
	for i, key := range commands.Catalogue {
		label := commands.Labels[key]
		if i == m.focus {
			lines = append(lines, keyStyle.Render(label))
		} else {
			lines = append(lines, descStyle.Render(label))
		}
		lines = append(lines, m.inputs[i].View())
	}
	content := lipgloss.JoinVertical(lipgloss.Left, hint, "", strings.Join(lines, "\n"))

	if m.confirmReset {
		content = lipgloss.JoinVertical(lipgloss.Center,
			content,
			"",
			modalStyle.Render("Reset all commands to the backend defaults?\n\n(y/n)"),
		)
	}

	mainBox := baseStyle.
		Width(m.width - 4).
		Height(m.height - 10).
		Render(content)

	notifLine := renderNotification(m.container.Notifier.Current())
	footer := footerStyle.Width(m.width - 4).
		Render("tab/↑/↓: move • ctrl+s: save • ctrl+r: reset • esc: back")

	return lipgloss.JoinVertical(lipgloss.Center, title, mainBox, notifLine, footer)
}

func loadCommandsCmd(c *app.Container) tea.Cmd {
	return func() tea.Msg {
		cmds, err := c.Commands.List()
		if err != nil {
			return panelClosedMsg{}
		}
		return commandsLoadedMsg(cmds)
	}
}

func saveCommandsCmd(c *app.Container, cmds map[string]string) tea.Cmd {
	return func() tea.Msg {
		saved, err := c.Commands.Save(cmds)
		if err != nil {
			if errors.Is(err, commands.ErrPermissionChanged) {
				return panelClosedMsg{}
			}
			return refreshMsg{}
		}
		return commandsLoadedMsg(saved)
	}
}

func resetCommandsCmd(c *app.Container) tea.Cmd {
	return func() tea.Msg {
		cmds, err := c.Commands.Reset()
		if err != nil {
			if errors.Is(err, commands.ErrPermissionChanged) {
				return panelClosedMsg{}
			}
			return refreshMsg{}
		}
		return commandsLoadedMsg(cmds)
	}
}
