package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/scribedesk/scribe/internal/state"
	"github.com/scribedesk/scribe/internal/tui"
	"github.com/scribedesk/scribe/pkg/client"
	"github.com/scribedesk/scribe/pkg/domain"
)

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7aa2f7")).
		Bold(true).
		Render("S C R I B E")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"scribe", "Interactive client (--route '#/submit')"},
		{"scribe login", "Log in (--email E, or --token T)"},
		{"scribe logout", "Forget the stored token"},
		{"scribe whoami", "Show the logged-in account"},
		{"scribe jobs", "List transcription jobs"},
		{"scribe submit FILE", "Upload a file (--model, --language)"},
		{"scribe open", "Open the web app (--route)"},
		{"scribe version", "Show version"},
		{"scribe help", "You are here"},
	}
	flags := []struct{ flag, desc string }{
		{"--api-url URL", "Backend base URL"},
		{"--env-file PATH", "Environment file (default ./.env)"},
		{"--log-file PATH", "Log file (default ~/.scribe/scribe.log)"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  Commands:\n", title)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(w, "\n  Flags:\n")
	for _, f := range flags {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", f.flag)), descStyle.Render(f.desc))
	}
	fmt.Fprintln(w)
}

func renderAlert(a domain.Alert) string {
	return tui.SeverityStyle(a.Severity).Render("●") + " " + a.Message
}

func printUser(w io.Writer, resp *client.Response, auth *state.Auth) {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	fmt.Fprintf(w, "%s %s\n", label.Render("email    "), resp.Email)
	if resp.IsAdmin != nil {
		fmt.Fprintf(w, "%s %t\n", label.Render("admin    "), *resp.IsAdmin)
	}
	if resp.Activated != nil {
		fmt.Fprintf(w, "%s %t\n", label.Render("activated"), *resp.Activated)
	}
	if claims, ok := auth.Claims(); ok && !claims.ExpiresAt.IsZero() {
		expires := claims.ExpiresAt.Local().Format(time.RFC1123)
		if claims.Expired(time.Now()) {
			expires += " (expired)"
		}
		fmt.Fprintf(w, "%s %s\n", label.Render("expires  "), expires)
	}
}

func printJobs(w io.Writer, jobs []domain.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs yet. Submit one with: scribe submit FILE")
		return
	}
	head := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	fmt.Fprintln(w, head.Render(fmt.Sprintf("%-6s %-32s %-18s %-9s %s", "ID", "FILE", "STEP", "MODEL", "PROGRESS")))
	for _, j := range jobs {
		progress := ""
		if j.Status != nil && j.Status.Progress != nil {
			progress = fmt.Sprintf("%.0f%%", *j.Status.Progress*100)
		}
		name := j.FileName
		if r := []rune(name); len(r) > 32 {
			name = string(r[:31]) + "…"
		}
		step := j.Step()
		fmt.Fprintf(w, "%-6s %-32s %s %-9s %s\n",
			strconv.Itoa(j.ID()),
			name,
			tui.StepStyle(step).Render(fmt.Sprintf("%-18s", step)),
			j.Model,
			progress,
		)
		if j.ErrorMsg != "" {
			fmt.Fprintf(w, "       %s\n", lipgloss.NewStyle().Foreground(lipgloss.Color("#e06060")).Render(j.ErrorMsg))
		}
	}
}
