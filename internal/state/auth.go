// Package state holds the client's process-wide state: the stored bearer
// token and the queue of user-facing alerts.
package state

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/scribedesk/scribe/internal/storage"
)

// Auth owns the bearer token. Every mutation writes durable storage and the
// in-memory header map before returning.
type Auth struct {
	mu     sync.RWMutex
	store  storage.Store
	token  string
	header map[string]string
	log    *slog.Logger
}

// NewAuth returns an Auth hydrated from store. Storage failures leave the
// store logged out.
func NewAuth(store storage.Store, log *slog.Logger) *Auth {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a := &Auth{store: store, header: map[string]string{}, log: log}
	a.hydrate()
	return a
}

func (a *Auth) hydrate() {
	if a.store == nil {
		return
	}
	tok, ok, err := a.store.Get(storage.KeyAuthToken)
	if err != nil {
		a.log.Debug("token hydration skipped", "error", err)
		return
	}
	if ok {
		a.apply(tok)
	}
}

func (a *Auth) apply(token string) {
	a.token = token
	a.header = map[string]string{"Authorization": "Bearer " + token}
}

func (a *Auth) clear() {
	a.token = ""
	a.header = map[string]string{}
}

// SetToken stores token durably and in memory. Any string is accepted as-is,
// the empty string included, and leaves the store logged in. On a storage
// error the in-memory state is left unchanged.
func (a *Auth) SetToken(token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store != nil {
		if err := a.store.Set(storage.KeyAuthToken, token); err != nil {
			return fmt.Errorf("state.SetToken: %w", err)
		}
	}
	a.apply(token)
	a.log.Info("token stored")
	return nil
}

// ForgetToken clears the token. Memory is always cleared; the storage error,
// if any, is returned.
func (a *Auth) ForgetToken() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clear()
	a.log.Info("token forgotten")
	if a.store == nil {
		return nil
	}
	if err := a.store.Remove(storage.KeyAuthToken); err != nil {
		return fmt.Errorf("state.ForgetToken: %w", err)
	}
	return nil
}

// AuthHeader returns a copy of the header map: empty when logged out,
// {"Authorization": "Bearer <token>"} otherwise.
func (a *Auth) AuthHeader() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]string, len(a.header))
	for k, v := range a.header {
		out[k] = v
	}
	return out
}

// LoggedIn reports whether a token is held.
func (a *Auth) LoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.header) > 0
}

// Token returns the raw token, or "" when logged out. Use LoggedIn to tell
// an empty token from no token.
func (a *Auth) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}
