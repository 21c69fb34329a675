package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scribedesk/scribe/pkg/domain"
)

// Shimmer animation for the SCRIBE logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "SCRIBE" as a slow wave of ink blue.
// Deep (#1e2a4a) -> bright (#7aa2f7). Letters are spaced apart.
func renderShimmerLogo(frame int) string {
	const text = "SCRIBE"
	n := len(text)
	t := float64(frame)

	var b strings.Builder
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		phase := t*0.1 - x*3.0
		br := math.Sin(phase)*0.5 + 0.5
		br = br*0.8 + 0.2

		r := clampByte(30 + br*(122-30))
		g := clampByte(42 + br*(162-42))
		bl := clampByte(74 + br*(247-74))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		b.WriteString(s.Render(string(text[i])))
		if i < n-1 {
			b.WriteString("  ")
		}
	}
	return b.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7aa2f7"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	// Alert colors, one per severity.
	severityColors = map[domain.Severity]lipgloss.Color{
		domain.SeverityPrimary: lipgloss.Color("#7aa2f7"),
		domain.SeverityGray:    lipgloss.Color("#8890a0"),
		domain.SeverityRed:     lipgloss.Color("#e06060"),
		domain.SeverityYellow:  lipgloss.Color("#facc15"),
		domain.SeverityGreen:   lipgloss.Color("#4ade80"),
		domain.SeverityOrange:  lipgloss.Color("#f0944a"),
	}

	stepColors = map[domain.JobStep]lipgloss.Color{
		domain.StepFailed:           lipgloss.Color("#e06060"),
		domain.StepAborting:         lipgloss.Color("#f0944a"),
		domain.StepNotQueued:        lipgloss.Color("#8890a0"),
		domain.StepPendingRunner:    lipgloss.Color("#facc15"),
		domain.StepRunnerAssigned:   lipgloss.Color("#facc15"),
		domain.StepRunnerInProgress: lipgloss.Color("#7aa2f7"),
		domain.StepSuccess:          lipgloss.Color("#4ade80"),
		domain.StepDownloaded:       lipgloss.Color("#34d474"),
	}
)

// SeverityStyle returns the style alerts of the given severity render with.
func SeverityStyle(s domain.Severity) lipgloss.Style {
	if c, ok := severityColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(severityColors[domain.SeverityPrimary]).Bold(true)
}

// StepStyle returns the style for a job step label.
func StepStyle(s domain.JobStep) lipgloss.Style {
	if c, ok := stepColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return metaStyle
}

func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpView renders the keyboard and command reference overlay.
func helpView() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7aa2f7")).
		Bold(true).
		Render("S C R I B E")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	keys := []struct{ key, desc string }{
		{"1 / 2", "Jobs / new job"},
		{"enter", "Open transcript"},
		{"f / x", "Cycle / clear step filter"},
		{"a", "Abort selected job"},
		{"c", "Copy transcript"},
		{"b", "Back to the previous page"},
		{"o", "Open this page in the browser"},
		{"L", "Log out"},
	}
	commands := []struct{ cmd, desc string }{
		{"scribe", "Interactive client"},
		{"scribe login", "Log in with email and password"},
		{"scribe logout", "Forget the stored token"},
		{"scribe jobs", "List jobs"},
		{"scribe submit FILE", "Upload a file for transcription"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)
	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", k.key)), descStyle.Render(k.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	return b.String()
}
