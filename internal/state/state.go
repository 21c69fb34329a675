package state

import (
	"log/slog"

	"github.com/scribedesk/scribe/internal/storage"
)

// State bundles the process-wide state handed to the client, router and UI.
type State struct {
	Auth   *Auth
	Alerts *Alerts
	Store  storage.Store
}

// New hydrates the token from store and starts with an empty alert queue.
func New(store storage.Store, log *slog.Logger) *State {
	return &State{
		Auth:   NewAuth(store, log),
		Alerts: NewAlerts(),
		Store:  store,
	}
}
