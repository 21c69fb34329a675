package state

import (
	"sync"

	"github.com/scribedesk/scribe/pkg/domain"
)

// Alerts is an append-only queue of notifications. Display and expiry are
// up to whoever reads it.
type Alerts struct {
	mu    sync.Mutex
	items []domain.Alert
}

// NewAlerts returns an empty queue.
func NewAlerts() *Alerts {
	return &Alerts{}
}

// Add appends an alert.
func (q *Alerts) Add(message string, severity domain.Severity) {
	q.mu.Lock()
	q.items = append(q.items, domain.Alert{Message: message, Severity: severity})
	q.mu.Unlock()
}

// Len returns the number of alerts added so far.
func (q *Alerts) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// All returns a snapshot of every alert in insertion order.
func (q *Alerts) All() []domain.Alert {
	return q.Since(0)
}

// Since returns the alerts appended after the first n.
func (q *Alerts) Since(n int) []domain.Alert {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n >= len(q.items) {
		return nil
	}
	out := make([]domain.Alert, len(q.items)-n)
	copy(out, q.items[n:])
	return out
}
