// Package storage persists small string values across runs, one file per key.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Keys used by the client.
const (
	KeyAuthToken   = "authHeader"
	KeyDestination = "dest"
)

// ErrUnavailable is returned when no storage location could be resolved.
var ErrUnavailable = errors.New("storage unavailable")

// Store is a durable string key/value store. A missing key is not an error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Dir stores each key as a file inside a directory. Values are stored and
// returned byte for byte.
type Dir struct {
	path string
}

// NewDir returns a Dir rooted at path. The directory is created lazily on
// the first Set. An empty path yields a store whose every call fails with
// ErrUnavailable.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// DefaultDir returns ~/.scribe, or "" when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".scribe")
}

// Path returns the directory backing the store.
func (d *Dir) Path() string { return d.path }

func (d *Dir) file(key string) (string, error) {
	if d.path == "" {
		return "", ErrUnavailable
	}
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(d.path, key), nil
}

func (d *Dir) Get(key string) (string, bool, error) {
	path, err := d.file(key)
	if err != nil {
		return "", false, fmt.Errorf("storage.Get: %w", err)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage.Get: %w", err)
	}
	return string(data), true, nil
}

func (d *Dir) Set(key, value string) error {
	path, err := d.file(key)
	if err != nil {
		return fmt.Errorf("storage.Set: %w", err)
	}
	if err := os.MkdirAll(d.path, 0700); err != nil {
		return fmt.Errorf("storage.Set: create %s: %w", d.path, err)
	}
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		return fmt.Errorf("storage.Set: %w", err)
	}
	return nil
}

func (d *Dir) Remove(key string) error {
	path, err := d.file(key)
	if err != nil {
		return fmt.Errorf("storage.Remove: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage.Remove: %w", err)
	}
	return nil
}

// Memory is an in-process Store, used by tests and when persistence is off.
// The zero value is ready to use.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
