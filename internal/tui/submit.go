package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribedesk/scribe/pkg/client"
	"github.com/scribedesk/scribe/pkg/domain"
)

type submitField int

const (
	fieldPath submitField = iota
	fieldModel
	fieldLanguage
	numFields
)

type jobSubmittedMsg struct {
	resp *client.Response
}

type submitModel struct {
	client   *client.Client
	path     textinput.Model
	model    int // index into domain.Models
	language int // index into domain.Languages
	focus    submitField
	busy     bool
	err      string
}

func newSubmitModel(c *client.Client) submitModel {
	path := textinput.New()
	path.Placeholder = "~/recordings/meeting.m4a"
	path.Prompt = ""
	path.Focus()
	return submitModel{client: c, path: path}
}

// editing reports whether keystrokes go to the path input.
func (m submitModel) editing() bool {
	return m.focus == fieldPath
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func (m submitModel) submit() (submitModel, tea.Cmd) {
	path := expandHome(strings.TrimSpace(m.path.Value()))
	if path == "" {
		m.err = "file path is required"
		return m, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	if info.IsDir() {
		m.err = path + " is a directory"
		return m, nil
	}

	m.busy = true
	m.err = ""
	c := m.client
	model := domain.Models[m.model]
	language := domain.Languages[m.language]
	return m, func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return jobSubmittedMsg{resp: &client.Response{Msg: err.Error()}}
		}
		defer f.Close() //nolint:errcheck
		return jobSubmittedMsg{resp: c.SubmitJob(context.Background(), client.SubmitRequest{
			FileName: filepath.Base(path),
			Content:  f,
			Model:    model,
			Language: language,
		})}
	}
}

func (m submitModel) Update(msg tea.Msg) (submitModel, tea.Cmd) {
	switch msg := msg.(type) {
	case jobSubmittedMsg:
		m.busy = false
		if !msg.resp.OK {
			m.err = msg.resp.Msg
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+s":
			return m.submit()
		case "tab", "down":
			return m.setFocus((m.focus + 1) % numFields)
		case "shift+tab", "up":
			return m.setFocus((m.focus - 1 + numFields) % numFields)
		case "enter":
			if m.focus == fieldLanguage {
				return m.submit()
			}
			return m.setFocus(m.focus + 1)
		case "h", "left", "l", "right":
			if m.focus == fieldPath {
				break
			}
			step := 1
			if k := msg.String(); k == "h" || k == "left" {
				step = -1
			}
			if m.focus == fieldModel {
				m.model = (m.model + step + len(domain.Models)) % len(domain.Models)
			} else {
				m.language = (m.language + step + len(domain.Languages)) % len(domain.Languages)
			}
			return m, nil
		}
	}

	if m.focus != fieldPath {
		return m, nil
	}
	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m submitModel) setFocus(f submitField) (submitModel, tea.Cmd) {
	m.focus = f
	if f == fieldPath {
		return m, m.path.Focus()
	}
	m.path.Blur()
	return m, nil
}

func (m submitModel) View(spinner string) string {
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render("New transcription") + "\n\n")

	labels := [numFields]string{"file", "model", "language"}
	values := [numFields]string{
		m.path.View(),
		domain.Models[m.model] + dimStyle.Render("  (h/l)"),
		domain.Languages[m.language] + dimStyle.Render("  (h/l)"),
	}
	for i := submitField(0); i < numFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = accentStyle.Render(">")
			style = selectedStyle
		}
		fmt.Fprintf(&b, " %s %s %s\n", cursor, style.Render(fmt.Sprintf("%-9s", labels[i])), values[i])
	}

	b.WriteString("\n ")
	switch {
	case m.busy:
		b.WriteString(spinner + dimStyle.Render(" uploading..."))
	case m.err != "":
		b.WriteString(errStyle.Render(m.err))
	default:
		b.WriteString(dimStyle.Render("ctrl+s to upload"))
	}
	return b.String()
}
