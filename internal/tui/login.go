package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribedesk/scribe/pkg/client"
)

type loginResultMsg struct {
	resp *client.Response
}

type loginModel struct {
	client   *client.Client
	email    textinput.Model
	password textinput.Model
	focus    int // 0 email, 1 password
	busy     bool
	err      string
}

func newLoginModel(c *client.Client) loginModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "email    "
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Prompt = "password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256

	return loginModel{client: c, email: email, password: password}
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.err = "email and password are required"
		return m, nil
	}
	m.busy = true
	m.err = ""
	c := m.client
	return m, func() tea.Msg {
		return loginResultMsg{resp: c.Login(context.Background(), email, password)}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.busy = false
		if !msg.resp.OK {
			m.err = msg.resp.Msg
		} else if msg.resp.AccessToken == "" {
			m.err = "login succeeded but no access token was returned"
		}
		m.password.SetValue("")
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			return m.toggleFocus()
		case "enter":
			if m.focus == 0 {
				return m.toggleFocus()
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) toggleFocus() (loginModel, tea.Cmd) {
	if m.focus == 0 {
		m.focus = 1
		m.email.Blur()
		return m, m.password.Focus()
	}
	m.focus = 0
	m.password.Blur()
	return m, m.email.Focus()
}

func (m loginModel) View(spinner string) string {
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render("Log in") + "\n\n")
	b.WriteString(" " + m.email.View() + "\n")
	b.WriteString(" " + m.password.View() + "\n\n")
	switch {
	case m.busy:
		b.WriteString(" " + spinner + dimStyle.Render(" logging in..."))
	case m.err != "":
		b.WriteString(" " + errStyle.Render(m.err))
	default:
		b.WriteString(" " + dimStyle.Render("enter to continue"))
	}
	return b.String()
}
