package tui

import (
	"strings"
	"time"

	"github.com/scribedesk/scribe/pkg/domain"
)

// toastTTL is how long an alert stays on screen.
const toastTTL = 6 * time.Second

// maxToasts caps how many alerts are shown at once; older ones scroll off.
const maxToasts = 3

type toast struct {
	alert domain.Alert
	until time.Time
}

// toastTray shows alerts read from the shared queue. The queue itself is
// never modified; the tray only remembers how far it has read.
type toastTray struct {
	read   int
	toasts []toast
}

// pull takes alerts appended since the last pull.
func (t *toastTray) pull(alerts []domain.Alert, now time.Time) {
	for _, a := range alerts {
		t.toasts = append(t.toasts, toast{alert: a, until: now.Add(toastTTL)})
	}
	t.read += len(alerts)
	if len(t.toasts) > maxToasts {
		t.toasts = t.toasts[len(t.toasts)-maxToasts:]
	}
}

// expire drops toasts whose time is up.
func (t *toastTray) expire(now time.Time) {
	kept := t.toasts[:0]
	for _, ts := range t.toasts {
		if now.Before(ts.until) {
			kept = append(kept, ts)
		}
	}
	t.toasts = kept
}

func (t toastTray) View(width int) string {
	if len(t.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.toasts))
	for _, ts := range t.toasts {
		marker := SeverityStyle(ts.alert.Severity).Render("●")
		lines = append(lines, " "+marker+" "+normalStyle.Render(truncStr(ts.alert.Message, width-4)))
	}
	return strings.Join(lines, "\n")
}
