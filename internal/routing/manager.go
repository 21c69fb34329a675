package routing

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/scribedesk/scribe/internal/storage"
)

// Fragment routes the client knows about.
const (
	RootRoute       = "#/"
	AuthRoute       = "#/auth"
	SubmitRoute     = "#/submit"
	TranscriptRoute = "#/transcript"
)

// TokenParam carries a token handed over through a link; LoginForward strips it.
const TokenParam = "token"

// Intent describes one navigation.
type Intent struct {
	// Destination is the target fragment; "" keeps the current location.
	Destination string
	// Params nil keeps the current query as is. A non-nil map is overlaid
	// onto the current query, or replaces it when OverwriteParams is set.
	Params          map[string]string
	OverwriteParams bool
	// RemoveParams are deleted after Params have been applied.
	RemoveParams []string
	// History pushes a new entry instead of replacing the current one.
	History bool
}

// Manager is the fragment router. Location and Query are recomputed from
// the navigator on every call.
type Manager struct {
	nav   Navigator
	store storage.Store
	log   *slog.Logger
}

// NewManager returns a Manager navigating through nav and remembering the
// pending post-login destination in store.
func NewManager(nav Navigator, store storage.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{nav: nav, store: store, log: log}
}

// fragment returns the part of the current URL from '#' on, or "".
func (m *Manager) fragment() string {
	cur := m.nav.Current()
	i := strings.IndexByte(cur, '#')
	if i < 0 {
		return ""
	}
	return cur[i:]
}

// Location returns the current fragment without its query, e.g. "#/submit".
func (m *Manager) Location() string {
	loc, _, _ := strings.Cut(m.fragment(), "?")
	return loc
}

// Query returns a fresh copy of the current fragment's query.
func (m *Manager) Query() *Query {
	return ParseQuery(m.rawQuery())
}

// rawQuery returns the current fragment's query text as written, without '?'.
func (m *Manager) rawQuery() string {
	_, q, _ := strings.Cut(m.fragment(), "?")
	return q
}

// Route returns the current fragment with its query, e.g. "#/?step=failed".
func (m *Manager) Route() string {
	return m.fragment()
}

// Set resolves in against the current URL and navigates there.
func (m *Manager) Set(in Intent) {
	dest := in.Destination
	if dest == "" {
		dest = m.Location()
	}

	if in.Params == nil && len(in.RemoveParams) == 0 {
		m.navigate(joinQuery(dest, m.rawQuery()), in.History)
		return
	}

	var q *Query
	switch {
	case in.Params == nil:
		q = m.Query()
	case in.OverwriteParams:
		q = QueryFromMap(in.Params)
	default:
		q = m.Query()
		for k, v := range in.Params {
			q.Set(k, v)
		}
		q.Sort()
	}
	for _, k := range in.RemoveParams {
		q.Delete(k)
	}

	m.navigate(joinQuery(dest, q.Encode()), in.History)
}

// Back returns to the previous history entry. It reports false when the
// navigator keeps no history or is already at its first entry.
func (m *Manager) Back() bool {
	b, ok := m.nav.(interface{ Back() bool })
	if !ok || !b.Back() {
		return false
	}
	m.log.Debug("navigate back", "to", m.nav.Current())
	return true
}

func (m *Manager) navigate(target string, push bool) {
	m.log.Debug("navigate", "from", m.nav.Current(), "to", target, "push", push)
	if push {
		m.nav.Push(target)
	} else {
		m.nav.Replace(target)
	}
}

// DestForward remembers the current location and sends the user to the
// auth route with an empty query. The root and the auth route itself are
// never remembered, so a logged-out visit to #/auth cannot become its own
// post-login destination. Navigation happens even if the location
// could not be stored; that error is returned.
func (m *Manager) DestForward() error {
	var err error
	if loc := m.Location(); loc != "" && loc != RootRoute && loc != AuthRoute {
		if serr := m.store.Set(storage.KeyDestination, loc); serr != nil {
			err = fmt.Errorf("routing.DestForward: %w", serr)
		}
	}
	m.Set(Intent{Destination: AuthRoute, Params: map[string]string{}, OverwriteParams: true})
	return err
}

// LoginForward navigates to the remembered destination (root when none)
// and forgets it, stripping the token parameter from the query.
func (m *Manager) LoginForward() error {
	dest := RootRoute
	var err error
	if v, ok, gerr := m.store.Get(storage.KeyDestination); gerr != nil {
		err = fmt.Errorf("routing.LoginForward: %w", gerr)
	} else if ok && v != "" {
		dest = v
	}
	if rerr := m.store.Remove(storage.KeyDestination); rerr != nil && err == nil {
		err = fmt.Errorf("routing.LoginForward: %w", rerr)
	}
	m.Set(Intent{Destination: dest, RemoveParams: []string{TokenParam}})
	return err
}
