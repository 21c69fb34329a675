package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribedesk/scribe/internal/routing"
	"github.com/scribedesk/scribe/pkg/client"
	"github.com/scribedesk/scribe/pkg/domain"
)

// stepParam is the query parameter the jobs list filters on.
const stepParam = "step"

// -- messages --

type jobsLoadedMsg struct {
	resp *client.Response
}

type jobAbortedMsg struct {
	jobID int
	resp  *client.Response
}

// -- model --

type jobsModel struct {
	client   *client.Client
	jobs     []domain.Job
	filter   domain.JobStep
	cursor   int
	loading  bool
	err      string
	aborting map[int]bool
	width    int
	height   int
}

func newJobsModel(c *client.Client) jobsModel {
	return jobsModel{client: c, aborting: map[int]bool{}}
}

// enter resets the list for the given route query and starts loading.
func (m jobsModel) enter(q *routing.Query) (jobsModel, tea.Cmd) {
	step, _ := q.Get(stepParam)
	m.filter = domain.JobStep(step)
	m.loading = true
	return m, m.load()
}

func (m jobsModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return jobsLoadedMsg{resp: c.ListJobs(context.Background())}
	}
}

func (m jobsModel) abort(id int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return jobAbortedMsg{jobID: id, resp: c.AbortJob(context.Background(), id)}
	}
}

// visible returns the jobs passing the step filter.
func (m jobsModel) visible() []domain.Job {
	if m.filter == "" {
		return m.jobs
	}
	out := make([]domain.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if j.Step() == m.filter {
			out = append(out, j)
		}
	}
	return out
}

func (m jobsModel) selected() (domain.Job, bool) {
	v := m.visible()
	if m.cursor < 0 || m.cursor >= len(v) {
		return domain.Job{}, false
	}
	return v[m.cursor], true
}

// nextFilter returns the step after the current one in the filter cycle.
func (m jobsModel) nextFilter() domain.JobStep {
	for i, s := range domain.FilterSteps {
		if s == m.filter {
			return domain.FilterSteps[(i+1)%len(domain.FilterSteps)]
		}
	}
	return domain.FilterSteps[0]
}

func (m jobsModel) Update(msg tea.Msg, router *routing.Manager) (jobsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case jobsLoadedMsg:
		m.loading = false
		if !msg.resp.OK {
			m.err = msg.resp.Msg
			return m, nil
		}
		m.err = ""
		m.jobs = msg.resp.Jobs
		for id := range m.aborting {
			delete(m.aborting, id)
		}
		if m.cursor >= len(m.visible()) {
			m.cursor = 0
		}

	case jobAbortedMsg:
		delete(m.aborting, msg.jobID)
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKey(msg, router)
	}
	return m, nil
}

func (m jobsModel) handleKey(msg tea.KeyMsg, router *routing.Manager) (jobsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		m.loading = true
		return m, m.load()
	case "f":
		next := m.nextFilter()
		m.cursor = 0
		if next == "" {
			router.Set(routing.Intent{RemoveParams: []string{stepParam}})
		} else {
			router.Set(routing.Intent{Params: map[string]string{stepParam: string(next)}})
		}
	case "x":
		m.cursor = 0
		router.Set(routing.Intent{RemoveParams: []string{stepParam}})
	case "a":
		job, ok := m.selected()
		if !ok || job.JobID == nil || job.Step().Finished() || m.aborting[job.ID()] {
			return m, nil
		}
		m.aborting[job.ID()] = true
		return m, m.abort(job.ID())
	case "enter":
		job, ok := m.selected()
		if !ok || job.JobID == nil {
			return m, nil
		}
		router.Set(routing.Intent{
			Destination:     routing.TranscriptRoute,
			Params:          map[string]string{"jobId": strconv.Itoa(job.ID())},
			OverwriteParams: true,
			History:         true,
		})
	}
	return m, nil
}

func (m jobsModel) View(spinner string) string {
	var b strings.Builder

	filter := "all"
	if m.filter != "" {
		filter = string(m.filter)
	}
	fmt.Fprintf(&b, " %s %s\n\n", dimStyle.Render("jobs ·"), accentStyle.Render(filter))

	if m.loading && len(m.jobs) == 0 {
		b.WriteString(" " + spinner + dimStyle.Render(" loading jobs...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + errStyle.Render(m.err) + "\n")
		return b.String()
	}

	jobs := m.visible()
	if len(jobs) == 0 {
		b.WriteString(" " + dimStyle.Render("no jobs yet · press 2 to submit one") + "\n")
		return b.String()
	}

	nameWidth := m.width - 40
	if nameWidth < 16 {
		nameWidth = 16
	}
	for i, j := range jobs {
		step := j.Step()
		if m.aborting[j.ID()] {
			step = domain.StepAborting
		}
		row := fmt.Sprintf(" %-5s %-*s %-18s %-8s %s",
			strconv.Itoa(j.ID()),
			nameWidth, truncStr(j.FileName, nameWidth),
			StepStyle(step).Render(fmt.Sprintf("%-18s", step)),
			metaStyle.Render(j.Model),
			formatProgress(j),
		)
		if i == m.cursor {
			row = selectedRowBg.Render(selectedStyle.Render(">") + row)
		} else {
			row = " " + normalStyle.Render(row)
		}
		b.WriteString(row + "\n")
		if i == m.cursor && j.ErrorMsg != "" {
			b.WriteString("        " + errStyle.Render(truncStr(j.ErrorMsg, nameWidth+20)) + "\n")
		}
	}
	return b.String()
}
