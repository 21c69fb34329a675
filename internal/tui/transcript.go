package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribedesk/scribe/internal/routing"
	"github.com/scribedesk/scribe/pkg/client"
)

// jobIDParam names the job shown on the transcript route.
const jobIDParam = "jobId"

type transcriptLoadedMsg struct {
	jobID int
	resp  *client.Response
}

type copyResultMsg struct {
	err error
}

type transcriptModel struct {
	client   *client.Client
	jobID    int
	text     string
	loading  bool
	err      string
	viewport viewport.Model
	width    int
	height   int
}

func newTranscriptModel(c *client.Client) transcriptModel {
	return transcriptModel{client: c, jobID: -1, viewport: viewport.New(80, 20)}
}

// enter loads the transcript named by the route query.
func (m transcriptModel) enter(q *routing.Query) (transcriptModel, tea.Cmd) {
	raw, _ := q.Get(jobIDParam)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		m.jobID = -1
		m.text = ""
		m.loading = false
		m.err = fmt.Sprintf("invalid job id %q", raw)
		return m, nil
	}
	if id == m.jobID && m.text != "" {
		return m, nil
	}
	m.jobID = id
	m.text = ""
	m.err = ""
	m.loading = true
	m.viewport.SetContent("")
	c := m.client
	return m, func() tea.Msg {
		return transcriptLoadedMsg{jobID: id, resp: c.Transcript(context.Background(), id)}
	}
}

func (m transcriptModel) Update(msg tea.Msg, router *routing.Manager) (transcriptModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = max(msg.Height-3, 1)
		return m, nil

	case transcriptLoadedMsg:
		if msg.jobID != m.jobID {
			return m, nil
		}
		m.loading = false
		if !msg.resp.OK {
			m.err = msg.resp.Msg
			return m, nil
		}
		m.text = msg.resp.Transcript
		m.viewport.SetContent(m.text)
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			router.Set(routing.Intent{
				Destination:  routing.RootRoute,
				RemoveParams: []string{jobIDParam},
			})
			return m, nil
		case "c":
			if m.text == "" {
				return m, nil
			}
			text := m.text
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(text)}
			}
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m transcriptModel) View(spinner string) string {
	var b strings.Builder
	fmt.Fprintf(&b, " %s %s\n\n", dimStyle.Render("transcript ·"), accentStyle.Render("job "+strconv.Itoa(m.jobID)))
	switch {
	case m.loading:
		b.WriteString(" " + spinner + dimStyle.Render(" loading transcript...") + "\n")
	case m.err != "":
		b.WriteString(" " + errStyle.Render(m.err) + "\n")
	case m.text == "":
		b.WriteString(" " + dimStyle.Render("empty transcript") + "\n")
	default:
		b.WriteString(m.viewport.View())
	}
	return b.String()
}
