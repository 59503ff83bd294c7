// Package prefs stores small per-visitor preferences such as the theme.
package prefs

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when no value is stored
var ErrNotFound = errors.New("preference not found")

// Store persists preference values keyed by owner and key
type Store interface {
	Get(ctx context.Context, owner, key string) (string, error)
	Set(ctx context.Context, owner, key, value string) error
}

const (
	ThemeKey   = "theme"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme returns the stored theme of owner, dark when unset or unreadable
func Theme(ctx context.Context, s Store, owner string) string {
	v, err := s.Get(ctx, owner, ThemeKey)
	if err != nil || (v != ThemeDark && v != ThemeLight) {
		return ThemeDark
	}
	return v
}

// ToggleTheme flips the theme of owner between dark and light and returns
// the new value
func ToggleTheme(ctx context.Context, s Store, owner string) (string, error) {
	next := ThemeLight
	if Theme(ctx, s, owner) == ThemeLight {
		next = ThemeDark
	}
	if err := s.Set(ctx, owner, ThemeKey, next); err != nil {
		return "", err
	}
	return next, nil
}

// MemoryStore keeps preferences for the life of the process
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, owner, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[owner][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, owner, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[owner] == nil {
		m.values[owner] = make(map[string]string)
	}
	m.values[owner][key] = value
	return nil
}
