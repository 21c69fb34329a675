// Package routing computes and applies navigation for the client: a
// fragment router with query-string merging, a path-based alternative and
// the in-memory history both navigate through.
package routing

import "sync"

// Navigator is the navigation primitive the routers drive. Push adds a
// history entry; Replace overwrites the current one.
type Navigator interface {
	Current() string
	Push(url string)
	Replace(url string)
}

// History is an in-memory Navigator with back navigation.
type History struct {
	mu      sync.Mutex
	entries []string
}

// NewHistory returns a History positioned at start.
func NewHistory(start string) *History {
	return &History{entries: []string{start}}
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

func (h *History) Push(url string) {
	h.mu.Lock()
	h.entries = append(h.entries, url)
	h.mu.Unlock()
}

func (h *History) Replace(url string) {
	h.mu.Lock()
	h.entries[len(h.entries)-1] = url
	h.mu.Unlock()
}

// Back pops the current entry. It reports false when already at the first.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
