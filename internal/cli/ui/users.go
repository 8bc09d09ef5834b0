package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"syspilot/internal/app"
	"syspilot/internal/users"
	"syspilot/pkg/sdk"
)

type usersMode int

const (
	modeList usersMode = iota
	modeName
	modePassword
	modePerms
	modeEditPerms
	modeConfirmDelete
)

type usersModel struct {
	container *app.Container
	table     table.Model
	users     []sdk.User
	mode      usersMode
	nameInput textinput.Model
	passInput textinput.Model
	permDraft sdk.PermissionSet
	permCur   int
	targetID  int
	errText   string
	loading   bool
	width     int
	height    int
}

type usersLoadedMsg []sdk.User

// panelClosedMsg means the panel can no longer operate (permission revoked or
// the list is unreachable); control returns to the dashboard.
type panelClosedMsg struct{}

// RunUsers shows the user administration panel until the user leaves it.
func RunUsers(c *app.Container) {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Username", Width: 20},
		{Title: "Permissions", Width: 40},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	name := textinput.New()
	name.Placeholder = "username"
	name.CharLimit = 64
	name.Width = 30

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'
	pass.CharLimit = 64
	pass.Width = 30

	m := usersModel{
		container: c,
		table:     t,
		nameInput: name,
		passInput: pass,
		loading:   true,
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running user panel: %v", err)
		os.Exit(1)
	}
}

func (m usersModel) Init() tea.Cmd {
	return tea.Batch(loadUsersCmd(m.container), tickCmd())
}

func (m usersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(msg.Height - 14)
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case panelClosedMsg:
		return m, tea.Quit

	case refreshMsg:
		m.loading = false
		m.mode = modeList
		return m, nil

	case errMsg:
		m.loading = false
		m.errText = msg.Error()
		return m, nil

	case usersLoadedMsg:
		m.loading = false
		m.users = msg
		m.mode = modeList
		m.errText = ""
		m.updateTable()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m usersModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.mode {
	case modeList:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			// esc dismisses a showing notification before it leaves the panel.
			if m.container.Notifier.Current() != nil {
				m.container.Notifier.Dismiss()
				return m, nil
			}
			return m, tea.Quit
		case "n":
			m.mode = modeName
			m.errText = ""
			m.nameInput.SetValue("")
			m.passInput.SetValue("")
			m.nameInput.Focus()
			return m, textinput.Blink
		case "e":
			if u, ok := m.selectedUser(); ok {
				m.mode = modeEditPerms
				m.targetID = u.ID
				m.permDraft = u.Permissions.Clone()
				m.permCur = 0
			}
			return m, nil
		case "d":
			if u, ok := m.selectedUser(); ok {
				m.mode = modeConfirmDelete
				m.targetID = u.ID
			}
			return m, nil
		}
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case modeName:
		switch msg.String() {
		case "esc":
			m.mode = modeList
			return m, nil
		case "enter":
			m.mode = modePassword
			m.nameInput.Blur()
			m.passInput.Focus()
			return m, textinput.Blink
		}
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd

	case modePassword:
		switch msg.String() {
		case "esc":
			m.mode = modeName
			m.passInput.Blur()
			m.nameInput.Focus()
			return m, textinput.Blink
		case "enter":
			m.mode = modePerms
			m.passInput.Blur()
			m.permDraft = sdk.PermissionSet{}
			m.permCur = 0
			return m, nil
		}
		m.passInput, cmd = m.passInput.Update(msg)
		return m, cmd

	case modePerms, modeEditPerms:
		switch msg.String() {
		case "esc":
			m.mode = modeList
			return m, nil
		case "up", "k":
			if m.permCur > 0 {
				m.permCur--
			}
			return m, nil
		case "down", "j":
			if m.permCur < len(sdk.PermissionKeys)-1 {
				m.permCur++
			}
			return m, nil
		case " ":
			key := sdk.PermissionKeys[m.permCur]
			m.permDraft[key] = !m.permDraft[key]
			return m, nil
		case "enter":
			m.loading = true
			if m.mode == modePerms {
				return m, createUserCmd(m.container, m.nameInput.Value(), m.passInput.Value(), m.permDraft)
			}
			return m, updatePermsCmd(m.container, m.targetID, m.permDraft)
		}
		return m, nil

	case modeConfirmDelete:
		switch msg.String() {
		case "y", "Y":
			m.loading = true
			return m, deleteUserCmd(m.container, m.targetID)
		case "n", "N", "esc":
			m.mode = modeList
			return m, nil
		}
		return m, nil
	}

	return m, nil
}

func (m usersModel) selectedUser() (sdk.User, bool) {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return sdk.User{}, false
	}
	for _, u := range m.users {
		if fmt.Sprintf("%d", u.ID) == row[0] {
			return u, true
		}
	}
	return sdk.User{}, false
}

func (m *usersModel) updateTable() {
	rows := []table.Row{}
	for _, u := range m.users {
		var granted []string
		for _, key := range sdk.PermissionKeys {
			if u.Permissions[key] {
				granted = append(granted, key)
			}
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", u.ID),
			u.Username,
			strings.Join(granted, ","),
		})
	}
	m.table.SetRows(rows)
}

func (m usersModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := headerStyle.Render("USER ADMINISTRATION")

	var content string
	var statusLine string

	switch m.mode {
	case modeName:
		content = titleStyle.Render("New user") + "\n\n" + m.nameInput.View()
		statusLine = "enter: next • esc: cancel"
	case modePassword:
		content = titleStyle.Render(fmt.Sprintf("Password for %s", m.nameInput.Value())) + "\n\n" + m.passInput.View()
		statusLine = "enter: next • esc: back"
	case modePerms, modeEditPerms:
		header := "Permissions"
		if m.mode == modePerms {
			header = fmt.Sprintf("Permissions for %s", m.nameInput.Value())
		}
		content = titleStyle.Render(header) + "\n\n" + m.permChecklist()
		statusLine = "space: toggle • enter: save • esc: cancel"
	case modeConfirmDelete:
		name := ""
		if u, ok := m.selectedUser(); ok {
			name = u.Username
		}
		content = m.table.View() + "\n\n" +
			modalStyle.Render(fmt.Sprintf("Delete user %s? This can't be undone.\n\n(y/n)", name))
		statusLine = "y: delete • n: cancel"
	default:
		content = m.table.View()
		statusLine = "n: new • e: edit perms • d: delete • esc: back"
	}

	if m.errText != "" {
		content += "\n\n" + errorStyle.Render(m.errText)
	}

	mainBox := baseStyle.
		Width(m.width - 4).
		Height(m.height - 10).
		Render(content)

	notifLine := renderNotification(m.container.Notifier.Current())
	footer := footerStyle.Width(m.width - 4).Render(statusLine)

	return lipgloss.JoinVertical(lipgloss.Center, title, mainBox, notifLine, footer)
}

func (m usersModel) permChecklist() string {
	lines := make([]string, 0, len(sdk.PermissionKeys))
	for i, key := range sdk.PermissionKeys {
		cursor := "  "
		if i == m.permCur {
			cursor = keyStyle.Render("> ")
		}
		box := "[ ]"
		if m.permDraft[key] {
			box = "[x]"
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", cursor, box, key))
	}
	return strings.Join(lines, "\n")
}

func loadUsersCmd(c *app.Container) tea.Cmd {
	return func() tea.Msg {
		list, err := c.Users.List()
		if err != nil {
			return panelClosedMsg{}
		}
		return usersLoadedMsg(list)
	}
}

func createUserCmd(c *app.Container, name, pass string, perms sdk.PermissionSet) tea.Cmd {
	return func() tea.Msg {
		list, err := c.Users.Create(name, pass, perms)
		return mutationResult(list, err)
	}
}

func updatePermsCmd(c *app.Container, id int, perms sdk.PermissionSet) tea.Cmd {
	return func() tea.Msg {
		list, err := c.Users.UpdatePermissions(id, perms)
		return mutationResult(list, err)
	}
}

func deleteUserCmd(c *app.Container, id int) tea.Cmd {
	return func() tea.Msg {
		list, err := c.Users.Delete(id)
		return mutationResult(list, err)
	}
}

func mutationResult(list []sdk.User, err error) tea.Msg {
	if err == nil {
		return usersLoadedMsg(list)
	}
	if errors.Is(err, users.ErrPermissionChanged) {
		return panelClosedMsg{}
	}
	var validationErr *users.ValidationError
	if errors.As(err, &validationErr) {
		return errMsg(validationErr)
	}
	// The panel already posted a notification; just re-render.
	return refreshMsg{}
}
