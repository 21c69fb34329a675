// Package tui is the interactive terminal client. The current route decides
// which view is shown.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scribedesk/scribe/internal/browser"
	"github.com/scribedesk/scribe/internal/routing"
	"github.com/scribedesk/scribe/internal/state"
	"github.com/scribedesk/scribe/pkg/client"
	"github.com/scribedesk/scribe/pkg/domain"
)

type view int

const (
	viewJobs view = iota
	viewAuth
	viewSubmit
	viewTranscript
)

// viewFor maps a fragment location to the view that renders it. Unknown
// locations fall back to the jobs list.
func viewFor(location string) view {
	switch location {
	case routing.AuthRoute:
		return viewAuth
	case routing.SubmitRoute:
		return viewSubmit
	case routing.TranscriptRoute:
		return viewTranscript
	}
	return viewJobs
}

// routeChangedMsg asks the app to re-read the router. Sent once at start.
type routeChangedMsg struct{}

// userLoadedMsg carries the result of UserInfo.
type userLoadedMsg struct {
	resp *client.Response
}

type browserOpenedMsg struct {
	err error
}

// App is the root Bubbletea model. The router's current location decides
// which view is shown; views navigate by calling router.Set.
type App struct {
	client *client.Client
	state  *state.State
	router *routing.Manager
	webURL string
	log    *slog.Logger

	view       view
	route      string // route the current view was entered for
	jobs       jobsModel
	login      loginModel
	submit     submitModel
	transcript transcriptModel
	toasts     toastTray
	spinner    spinner.Model
	helpOpen   bool
	email      string
	width      int
	height     int
	frame      int // logo shimmer animation frame
	now        func() time.Time
}

// NewApp creates the TUI application.
func NewApp(c *client.Client, st *state.State, router *routing.Manager, webURL string) App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = accentStyle
	return App{
		client:     c,
		state:      st,
		router:     router,
		webURL:     webURL,
		log:        slog.Default(),
		route:      "\x00", // forces the first sync to enter a view
		jobs:       newJobsModel(c),
		login:      newLoginModel(c),
		submit:     newSubmitModel(c),
		transcript: newTranscriptModel(c),
		spinner:    sp,
		now:        time.Now,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.spinner.Tick, func() tea.Msg { return routeChangedMsg{} })
}

// Update handles msg, then reconciles the view with the router and pulls
// new alerts.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a, cmd := a.update(msg)
	a, syncCmd := a.sync()
	return a, tea.Batch(cmd, syncCmd)
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	alerts := a.state.Alerts

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + toasts(maxToasts) + help(1)
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4 - maxToasts}
		a.jobs, _ = a.jobs.Update(bodyMsg, a.router)
		a.transcript, _ = a.transcript.Update(bodyMsg, a.router)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		a.toasts.expire(a.now())
		return a, shimmerTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case routeChangedMsg:
		return a, nil

	case loginResultMsg:
		a.login, _ = a.login.Update(msg)
		if !msg.resp.OK || msg.resp.AccessToken == "" {
			return a, nil
		}
		if err := a.state.Auth.SetToken(msg.resp.AccessToken); err != nil {
			alerts.Add("Could not store login: "+err.Error(), domain.SeverityRed)
			return a, nil
		}
		alerts.Add("Logged in", domain.SeverityGreen)
		if err := a.router.LoginForward(); err != nil {
			a.log.Warn("login forward", "err", err)
		}
		return a, nil

	case userLoadedMsg:
		if msg.resp.OK {
			a.email = msg.resp.Email
		}
		return a, nil

	case jobsLoadedMsg:
		var cmd tea.Cmd
		a.jobs, cmd = a.jobs.Update(msg, a.router)
		return a, cmd

	case jobAbortedMsg:
		switch {
		case msg.resp.OK:
			alerts.Add(fmt.Sprintf("Abort requested for job %d", msg.jobID), domain.SeverityGray)
		case msg.resp.Status != 401:
			alerts.Add(msg.resp.Msg, domain.SeverityRed)
		}
		var cmd tea.Cmd
		a.jobs, cmd = a.jobs.Update(msg, a.router)
		return a, cmd

	case jobSubmittedMsg:
		a.submit, _ = a.submit.Update(msg)
		switch {
		case msg.resp.OK:
			text := "Job submitted"
			if msg.resp.JobID != nil {
				text = fmt.Sprintf("Job %d submitted", *msg.resp.JobID)
			}
			alerts.Add(text, domain.SeverityGreen)
			a.submit = newSubmitModel(a.client)
			a.router.Set(routing.Intent{
				Destination:     routing.RootRoute,
				Params:          map[string]string{},
				OverwriteParams: true,
			})
		case msg.resp.Status != 401:
			alerts.Add(msg.resp.Msg, domain.SeverityRed)
		}
		return a, nil

	case transcriptLoadedMsg:
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg, a.router)
		return a, cmd

	case copyResultMsg:
		if msg.err != nil {
			alerts.Add("Copy failed: "+msg.err.Error(), domain.SeverityRed)
		} else {
			alerts.Add("Transcript copied to clipboard", domain.SeverityGreen)
		}
		return a, nil

	case browserOpenedMsg:
		if msg.err != nil {
			alerts.Add("Could not open browser: "+msg.err.Error(), domain.SeverityOrange)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}

		if msg.String() == "esc" && a.view == viewSubmit {
			a.goTo(routing.RootRoute)
			return a, nil
		}

		// Global keys (only when not editing)
		if !a.isEditing() {
			switch msg.String() {
			case "h", "?":
				a.helpOpen = true
				return a, nil
			case "q":
				return a, tea.Quit
			case "1":
				if a.view != viewJobs {
					a.goTo(routing.RootRoute)
				}
				return a, nil
			case "2":
				if a.view != viewSubmit {
					a.goTo(routing.SubmitRoute)
				}
				return a, nil
			case "b":
				a.router.Back()
				return a, nil
			case "L":
				a.logout()
				return a, nil
			case "o":
				url := browser.RouteURL(a.webURL, a.router.Route())
				return a, func() tea.Msg {
					return browserOpenedMsg{err: browser.Open(url)}
				}
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewJobs:
		if _, ok := msg.(tea.KeyMsg); ok {
			a.jobs, cmd = a.jobs.Update(msg, a.router)
		}
	case viewAuth:
		a.login, cmd = a.login.Update(msg)
	case viewSubmit:
		a.submit, cmd = a.submit.Update(msg)
	case viewTranscript:
		a.transcript, cmd = a.transcript.Update(msg, a.router)
	}
	return a, cmd
}

// goTo pushes a new history entry for route with an empty query.
func (a App) goTo(route string) {
	a.router.Set(routing.Intent{
		Destination:     route,
		Params:          map[string]string{},
		OverwriteParams: true,
		History:         true,
	})
}

func (a *App) logout() {
	if !a.state.Auth.LoggedIn() {
		return
	}
	if err := a.state.Auth.ForgetToken(); err != nil {
		a.state.Alerts.Add("Could not remove stored token: "+err.Error(), domain.SeverityOrange)
	}
	a.email = ""
	a.state.Alerts.Add("Logged out", domain.SeverityGray)
}

// sync applies the routing rules that depend on state rather than on a
// key press, and enters the view for the current route when it changed.
func (a App) sync() (App, tea.Cmd) {
	auth := a.state.Auth

	if a.router.Location() == routing.AuthRoute {
		if tok, ok := a.router.Query().Get(routing.TokenParam); ok && tok != "" {
			if err := auth.SetToken(tok); err != nil {
				a.state.Alerts.Add("Could not store login: "+err.Error(), domain.SeverityRed)
				a.router.Set(routing.Intent{RemoveParams: []string{routing.TokenParam}})
			} else {
				a.state.Alerts.Add("Logged in", domain.SeverityGreen)
				if err := a.router.LoginForward(); err != nil {
					a.log.Warn("login forward", "err", err)
				}
			}
		} else if auth.LoggedIn() {
			if err := a.router.LoginForward(); err != nil {
				a.log.Warn("login forward", "err", err)
			}
		}
	}
	if !auth.LoggedIn() && a.router.Location() != routing.AuthRoute {
		if err := a.router.DestForward(); err != nil {
			a.log.Warn("dest forward", "err", err)
		}
	}

	if fresh := a.state.Alerts.Since(a.toasts.read); len(fresh) > 0 {
		a.toasts.pull(fresh, a.now())
	}

	route := a.router.Route()
	if route == a.route {
		return a, nil
	}
	a.route = route
	a.view = viewFor(a.router.Location())
	return a.enter()
}

func (a App) enter() (App, tea.Cmd) {
	q := a.router.Query()
	var cmds []tea.Cmd
	switch a.view {
	case viewJobs:
		var cmd tea.Cmd
		a.jobs, cmd = a.jobs.enter(q)
		cmds = append(cmds, cmd)
	case viewAuth:
		if !a.login.busy {
			a.login = newLoginModel(a.client)
		}
	case viewTranscript:
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.enter(q)
		cmds = append(cmds, cmd)
	}
	if a.view != viewAuth && a.email == "" && a.state.Auth.LoggedIn() {
		c := a.client
		cmds = append(cmds, func() tea.Msg {
			return userLoadedMsg{resp: c.UserInfo(context.Background())}
		})
	}
	return a, tea.Batch(cmds...)
}

func (a App) isEditing() bool {
	switch a.view {
	case viewAuth:
		return true
	case viewSubmit:
		return a.submit.editing()
	}
	return false
}

// sessionLine describes who is logged in and for how long.
func (a App) sessionLine() string {
	if !a.state.Auth.LoggedIn() {
		return metaStyle.Render("not logged in")
	}
	var parts []string
	claims, ok := a.state.Auth.Claims()
	switch {
	case a.email != "":
		parts = append(parts, a.email)
	case ok && claims.Subject != "":
		parts = append(parts, claims.Subject)
	}
	if ok && !claims.ExpiresAt.IsZero() {
		parts = append(parts, "session "+formatRemaining(claims.ExpiresAt.Sub(a.now())))
	}
	if len(parts) == 0 {
		parts = append(parts, "logged in")
	}
	return metaStyle.Render(strings.Join(parts, " · "))
}

func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (a App) View() string {
	header := center(renderShimmerLogo(a.frame), a.width) + "\n" + center(a.sessionLine(), a.width)

	// Tab bar: 1 Jobs  2 Submit, equal-width columns
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Jobs", viewJobs},
		{"2", "Submit", viewSubmit},
	}
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	spin := a.spinner.View()
	var body, help string
	switch a.view {
	case viewJobs:
		body = a.jobs.View(spin)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "transcript") + "  " + helpEntry("f/x", "filter") + "  " + helpEntry("a", "abort") + "  " + helpEntry("r", "reload") + "  " + helpEntry("o", "web") + "  " + helpEntry("L", "logout") + "  " + helpEntry("q", "quit")
	case viewAuth:
		body = a.login.View(spin)
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("enter", "log in") + "  " + helpEntry("ctrl+c", "quit")
	case viewSubmit:
		body = a.submit.View(spin)
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("h/l", "choose") + "  " + helpEntry("ctrl+s", "upload") + "  " + helpEntry("esc", "cancel")
	case viewTranscript:
		body = a.transcript.View(spin)
		help = " " + helpEntry("j/k", "scroll") + "  " + helpEntry("c", "copy") + "  " + helpEntry("o", "web") + "  " + helpEntry("esc", "back") + "  " + helpEntry("q", "quit")
	}

	if a.helpOpen {
		body = helpView()
		help = " " + helpEntry("esc", "close")
	}

	chrome := 4 + maxToasts
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, a.toasts.View(a.width), help)
}
